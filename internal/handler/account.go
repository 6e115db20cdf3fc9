package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/model"
)

type updateProfileReq struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// Me returns the authenticated user's public profile.
func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u.Profile()})
}

// UpdateProfile rewrites the caller's display name and bio.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authorized"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	updated, err := h.Svc.UpdateProfile(c.Request().Context(), u.ID, req.Name, req.Bio)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": updated.Profile()})
}

// AdminListUsers returns every account's public profile.  The route is
// gated by RequireRole(admin) in the router.
func (h *AuthHandler) AdminListUsers(c echo.Context) error {
	users, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	profiles := make([]model.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return c.JSON(http.StatusOK, echo.Map{"users": profiles})
}
