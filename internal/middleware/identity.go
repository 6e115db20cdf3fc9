package middleware

// identity.go holds the context plumbing shared by the middleware in
// this package: SessionAuth stores the resolved user under a single
// well-known key, and downstream middleware and handlers read it back
// through CurrentUser instead of poking at the context directly.

import (
    "github.com/labstack/echo/v4"

    "github.com/campuslink/campuslink/internal/model"
)

// identityKey is the echo context key the resolved user is stored under.
const identityKey = "identity"

// SetCurrentUser attaches the authenticated user to the request context.
func SetCurrentUser(c echo.Context, u *model.User) {
    c.Set(identityKey, u)
}

// CurrentUser returns the authenticated user attached by SessionAuth,
// or nil when the request is unauthenticated.
func CurrentUser(c echo.Context) *model.User {
    if u, ok := c.Get(identityKey).(*model.User); ok {
        return u
    }
    return nil
}

// currentUserID returns the authenticated user's id for rate-limit
// keying, or "anon" for unauthenticated requests.
func currentUserID(c echo.Context) string {
    if u := CurrentUser(c); u != nil {
        return u.ID
    }
    return "anon"
}
