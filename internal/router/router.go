package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/handler"
	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the credential endpoints.  Unauthenticated
// operations live under /v1/auth and carry the rate limiter (login and
// forgot-password are the brute-force surface); protected endpoints
// live under /v1 behind SessionAuth, which resolves the bearer token
// into a live user record before any handler or role check runs.
func RegisterAuth(e *echo.Echo, h *handler.AuthHandler, svc *auth.Service, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/reset-password/:token", h.ResetPassword)
	g.POST("/verify-email/:token", h.VerifyEmail)

	protected := e.Group("/v1")
	protected.Use(middleware.SessionAuth(svc))
	protected.GET("/me", h.Me)
	protected.PUT("/me", h.UpdateProfile)

	// Role checks compose after identity resolution, never before.
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/users", h.AdminListUsers)
}
