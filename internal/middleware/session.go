package middleware

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/campuslink/campuslink/internal/auth"
)

// SessionAuth returns an Echo middleware that guards protected routes.
// It extracts the bearer token from the Authorization header and asks
// the credential service to resolve it into a live user record; the
// record is then attached to the request context for downstream
// handlers and role checks.
//
// Every failure — missing header, malformed token, bad signature,
// expired token, user deleted since issuance — produces the same 401
// response, so the reply never tells a caller which condition tripped.
func SessionAuth(svc *auth.Service) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            header := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(header, "Bearer ") {
                return unauthorized(c)
            }
            raw := strings.TrimPrefix(header, "Bearer ")

            u, err := svc.CurrentIdentity(c.Request().Context(), raw)
            if err != nil {
                if errors.Is(err, auth.ErrNotAuthorized) {
                    return unauthorized(c)
                }
                // Infrastructure failure (store unreachable); not an
                // authorization verdict.
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
            }
            SetCurrentUser(c, u)
            return next(c)
        }
    }
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authorized"})
}
