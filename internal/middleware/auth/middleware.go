package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/blog-platform/backend/internal/logging"
	"github.com/blog-platform/backend/internal/models"
	"github.com/blog-platform/backend/internal/repo"
	"github.com/blog-platform/backend/internal/tokens"
)

// Middleware gates protected routes: Authenticate verifies the access token,
// RequireAuthor and RequireAdmin add role checks on top of it.
type Middleware struct {
	Users  *repo.UserRepo
	Issuer *tokens.Issuer
}

func New(users *repo.UserRepo, issuer *tokens.Issuer) *Middleware {
	return &Middleware{Users: users, Issuer: issuer}
}

func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication token required")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication token required")
		}

		claims, err := m.Issuer.ParseAccessToken(parts[1])
		if err != nil {
			// One message for expired, malformed and forged tokens alike.
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication failed")
		}

		userID, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication failed")
		}

		setIdentity(c, Identity{UserID: userID, Email: claims.Email})
		return next(c)
	}
}

func (m *Middleware) RequireAuthor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.loadUser(c)
		if err != nil {
			return err
		}

		if user.Role != models.RoleAdmin && user.Role != models.RoleAuthor {
			return echo.NewHTTPError(http.StatusForbidden, "Author or admin access required")
		}

		m.attachRole(c, user)
		return next(c)
	}
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.loadUser(c)
		if err != nil {
			return err
		}

		if user.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}

		m.attachRole(c, user)
		return next(c)
	}
}

func (m *Middleware) loadUser(c echo.Context) (*models.User, error) {
	id, ok := IdentityFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication token required")
	}

	user, err := m.Users.ByID(c.Request().Context(), id.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		logging.FromContext(c.Request().Context()).Error("role_gate_failed", "error", err)
		return nil, err
	}
	return user, nil
}

func (m *Middleware) attachRole(c echo.Context, user *models.User) {
	id, _ := IdentityFrom(c)
	id.Role = user.Role
	setIdentity(c, id)
}
