package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/campuslink/campuslink/internal/model"
)

// RequireRole returns a middleware that enforces that the authenticated
// user holds one of the given roles.  It must be registered after
// SessionAuth: the role check is only meaningful once the identity has
// been resolved against the live user record.  A request that reaches
// this middleware unauthenticated gets 401; an authenticated request
// with the wrong role gets 403.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    allowed := make(map[model.Role]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            u := CurrentUser(c)
            if u == nil {
                return unauthorized(c)
            }
            if !allowed[u.Role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
