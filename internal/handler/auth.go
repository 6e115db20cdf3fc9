package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/utils"
)

// AuthHandler exposes the credential lifecycle over HTTP.  Handlers
// bind and shape-check input, delegate to the credential service, and
// map its errors onto stable status codes and messages.  The security
// decisions themselves (uniform failures, token redemption) live in the
// service.
type AuthHandler struct {
	Svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

// emailRx is a deliberately loose shape check; real validation happens
// through the verification mail.
var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLen = 8

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // student | founder; admin is never accepted
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotPasswordReq struct {
	Email string `json:"email"`
}
type resetPasswordReq struct {
	Password string `json:"password"`
}

type sessionResp struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      model.Profile `json:"user"`
}

// Register creates an account and returns a session immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = auth.NormalizeEmail(req.Email)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if !emailRx.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if len(req.Password) < minPasswordLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too short"})
	}
	var role model.Role
	if req.Role != "" {
		parsed, ok := model.ParseRole(req.Role)
		if !ok || parsed == model.RoleAdmin {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "role not allowed"})
		}
		role = parsed
	}

	sess, err := h.Svc.Register(c.Request().Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		case errors.Is(err, auth.ErrRoleNotAllowed):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "role not allowed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	return c.JSON(http.StatusCreated, sessionResp{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User.Profile(),
	})
}

// Login verifies credentials and returns a fresh session.  Unknown
// email and wrong password produce the same response.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	sess, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, sessionResp{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User.Profile(),
	})
}

// forgotPasswordMsg is returned whether or not the account exists.
const forgotPasswordMsg = "if an account exists, password reset instructions have been sent"

// ForgotPassword starts a password reset.  The response is identical
// for known and unknown emails.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !emailRx.MatchString(auth.NormalizeEmail(req.Email)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if err := h.Svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordMsg})
}

// ResetPassword redeems a reset token from the URL path.  A token that
// fails the shape check gets the same response as one the store never
// issued, so the endpoint is not a format oracle.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	token := c.Param("token")
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Password) < minPasswordLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too short"})
	}
	if !utils.IsOpaqueToken(token) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	if err := h.Svc.ResetPassword(c.Request().Context(), token, req.Password); err != nil {
		if errors.Is(err, auth.ErrResetTokenInvalid) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// VerifyEmail redeems an email-verification token from the URL path.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := c.Param("token")
	if !utils.IsOpaqueToken(token) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
	}
	if err := h.Svc.VerifyEmail(c.Request().Context(), token); err != nil {
		if errors.Is(err, auth.ErrVerifyTokenInvalid) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "email verified"})
}
