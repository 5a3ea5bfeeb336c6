package auth

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/blog-platform/backend/internal/models"
	"github.com/blog-platform/backend/internal/repo"
	"github.com/blog-platform/backend/internal/tokens"
)

func newTestMiddleware(t *testing.T) (*Middleware, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	issuer := &tokens.Issuer{
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	return New(&repo.UserRepo{DB: db}, issuer), db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := &models.User{Name: "Test User", Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newAuthedContext(t *testing.T, token string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestAuthenticate(t *testing.T) {
	m, db := newTestMiddleware(t)
	user := createUser(t, db, "a@x.com", models.RoleAuthor)

	token, _, err := m.Issuer.IssueAccessToken(user.ID, user.Email)
	require.NoError(t, err)

	var got Identity
	handler := m.Authenticate(func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		require.True(t, ok)
		got = id
		return c.NoContent(http.StatusOK)
	})

	c, rec := newAuthedContext(t, token)
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, user.ID, got.UserID)
	require.Equal(t, "a@x.com", got.Email)
	require.Empty(t, got.Role, "role is resolved only by the role gates")
}

func TestAuthenticate_MissingOrMalformedHeader(t *testing.T) {
	m, _ := newTestMiddleware(t)
	handler := m.Authenticate(okHandler)

	e := echo.New()
	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "just-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		c := e.NewContext(req, httptest.NewRecorder())

		err := handler(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError for header %q", header)
		require.Equal(t, http.StatusUnauthorized, he.Code)
		require.Equal(t, "Authentication token required", he.Message)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	m, db := newTestMiddleware(t)
	user := createUser(t, db, "a@x.com", models.RoleAuthor)
	handler := m.Authenticate(okHandler)

	other := &tokens.Issuer{
		AccessSecret:  []byte("some-other-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	forged, _, err := other.IssueAccessToken(user.ID, user.Email)
	require.NoError(t, err)

	// A refresh token must not pass the access check even though the
	// refresh secret matches.
	refresh, _, err := m.Issuer.IssueRefreshToken(user.ID, user.Email)
	require.NoError(t, err)

	expired := signExpiredAccessToken(t, m.Issuer.AccessSecret, user.ID)

	for _, token := range []string{forged, refresh, expired, "not.a.jwt"} {
		c, _ := newAuthedContext(t, token)
		err := handler(c)

		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError")
		require.Equal(t, http.StatusUnauthorized, he.Code)
		require.Equal(t, "Authentication failed", he.Message)
	}
}

func signExpiredAccessToken(t *testing.T, secret []byte, userID uint) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func TestRequireAuthor(t *testing.T) {
	m, db := newTestMiddleware(t)

	var got Identity
	chain := m.Authenticate(m.RequireAuthor(func(c echo.Context) error {
		got, _ = IdentityFrom(c)
		return c.NoContent(http.StatusOK)
	}))

	for _, role := range []string{models.RoleAuthor, models.RoleAdmin} {
		user := createUser(t, db, role+"@x.com", role)
		token, _, err := m.Issuer.IssueAccessToken(user.ID, user.Email)
		require.NoError(t, err)

		c, rec := newAuthedContext(t, token)
		require.NoError(t, chain(c))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, role, got.Role)
	}
}

func TestRequireAdmin(t *testing.T) {
	m, db := newTestMiddleware(t)
	chain := m.Authenticate(m.RequireAdmin(okHandler))

	admin := createUser(t, db, "admin@x.com", models.RoleAdmin)
	adminToken, _, err := m.Issuer.IssueAccessToken(admin.ID, admin.Email)
	require.NoError(t, err)

	c, rec := newAuthedContext(t, adminToken)
	require.NoError(t, chain(c))
	require.Equal(t, http.StatusOK, rec.Code)

	author := createUser(t, db, "author@x.com", models.RoleAuthor)
	authorToken, _, err := m.Issuer.IssueAccessToken(author.ID, author.Email)
	require.NoError(t, err)

	c2, _ := newAuthedContext(t, authorToken)
	herr := chain(c2)
	he, ok := herr.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusForbidden, he.Code)
	require.Equal(t, "Admin access required", he.Message)
}

func TestRoleGate_UserDeleted(t *testing.T) {
	m, db := newTestMiddleware(t)
	chain := m.Authenticate(m.RequireAuthor(okHandler))

	user := createUser(t, db, "gone@x.com", models.RoleAuthor)
	token, _, err := m.Issuer.IssueAccessToken(user.ID, user.Email)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.User{}, user.ID).Error)

	c, _ := newAuthedContext(t, token)
	herr := chain(c)
	he, ok := herr.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
	require.Equal(t, "User not found", he.Message)
}
