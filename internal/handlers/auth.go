package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blog-platform/backend/internal/httpx"
	"github.com/blog-platform/backend/internal/logging"
	"github.com/blog-platform/backend/internal/mykafka"
	"github.com/blog-platform/backend/internal/service"
	"github.com/blog-platform/backend/internal/validate"
)

type AuthHandler struct {
	Svc      *service.AuthService
	Producer *mykafka.Producer
}

type sessionResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         any    `json:"user"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := validate.Register(req.Name, req.Email, req.Password, req.Role); err != nil {
		l.Warn("register_rejected", "reason", validate.Message(err))
		return echo.NewHTTPError(http.StatusBadRequest, validate.Message(err))
	}

	res, err := h.Svc.Register(ctx, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusBadRequest, "Email already exists")
		}
		return err
	}

	c.SetCookie(CreateCookie(CookieAuthToken, res.AccessToken, "/", time.Now().Add(AuthCookieTTL)))
	c.SetCookie(CreateCookie(CookieRefreshToken, res.RefreshToken, "/", res.RefreshExp))

	h.publishUserEvent(ctx, "user_registered", res.User.ID, res.User.Email)

	return httpx.Success(c, http.StatusCreated, "Registration successful", sessionResponse{
		Token:        res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := validate.Login(req.Email, req.Password); err != nil {
		l.Warn("login_rejected", "reason", validate.Message(err))
		return echo.NewHTTPError(http.StatusBadRequest, validate.Message(err))
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid email or password")
		}
		return err
	}

	c.SetCookie(CreateCookie(CookieAuthToken, res.AccessToken, "/", time.Now().Add(AuthCookieTTL)))
	c.SetCookie(CreateCookie(CookieRefreshToken, res.RefreshToken, "/", res.RefreshExp))

	h.publishUserEvent(ctx, "user_logged_in", res.User.ID, res.User.Email)

	return httpx.Success(c, http.StatusOK, "Login Successful", sessionResponse{
		Token:        res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	token := h.refreshTokenFromRequest(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Refresh token required")
	}

	res, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefreshToken):
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
		case errors.Is(err, service.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}

	c.SetCookie(CreateCookie(CookieAuthToken, res.AccessToken, "/", time.Now().Add(AuthCookieTTL)))

	return httpx.Success(c, http.StatusOK, "Token refreshed", sessionResponse{
		Token: res.AccessToken,
		User:  res.User,
	})
}

// Logout always clears both cookies and reports success, even when no
// refresh token was supplied or its ledger row is already gone.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if token := h.refreshTokenFromRequest(c); token != "" {
		if err := h.Svc.Logout(ctx, token); err != nil {
			l.Error("logout_revoke_failed", "error", err)
		}
	}

	c.SetCookie(DeleteCookie(CookieAuthToken, "/"))
	c.SetCookie(DeleteCookie(CookieRefreshToken, "/"))

	return httpx.Success(c, http.StatusOK, "Logged out successfully", echo.Map{"success": true})
}

// refreshTokenFromRequest reads the token from the JSON body first, then the
// cookie. The body is recoverable after bind because logout/refresh accept
// no other fields.
func (h *AuthHandler) refreshTokenFromRequest(c echo.Context) string {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}

	cookie, err := c.Cookie(CookieRefreshToken)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) publishUserEvent(ctx context.Context, eventType string, userID uint, email string) {
	event := map[string]interface{}{
		"type":    eventType,
		"user_id": userID,
		"email":   email,
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(pubCtx, mykafka.TopicUserEvents, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "type", eventType, "error", err)
	}
}
