package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/blog-platform/backend/internal/models"
	"github.com/blog-platform/backend/internal/repo"
	"github.com/blog-platform/backend/internal/tokens"
)

func newTestAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))

	svc := &AuthService{
		Users:  &repo.UserRepo{DB: db},
		Ledger: &repo.RefreshTokenRepo{DB: db},
		Issuer: &tokens.Issuer{
			AccessSecret:  []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
		},
	}
	return svc, db
}

func ledgerCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func TestAuthService_Register_DefaultsToAuthor(t *testing.T) {
	svc, db := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, models.RoleAuthor, res.User.Role)
	assert.Equal(t, "a@x.com", res.User.Email)

	assert.Equal(t, int64(1), ledgerCount(t, db, res.User.ID))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "A@X.COM", "password2", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Login_GenericErrorForUnknownAndMismatch(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nobody@x.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_RotatesLedgerRecord(t *testing.T) {
	svc, db := newTestAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)

	login, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, login.RefreshToken)

	// Exactly one record, and it is the new one.
	assert.Equal(t, int64(1), ledgerCount(t, db, login.User.ID))

	_, err = svc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	res, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
}

func TestAuthService_Refresh_FullLifecycle(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, login.RefreshToken)

	_, err = svc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken)
	assert.Equal(t, login.User, refreshed.User)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))

	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_NotInLedger_RegardlessOfSignature(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)

	// Validly signed but never stored.
	forged, _, err := svc.Issuer.IssueRefreshToken(res.User.ID, res.User.Email)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_ExpiredLedgerRecordRemoved(t *testing.T) {
	svc, db := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)

	// Age the stored record past its expiry.
	require.NoError(t, db.Model(&models.RefreshToken{}).
		Where("user_id = ?", res.User.ID).
		Update("expires_at", 1).Error)

	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.Zero(t, ledgerCount(t, db, res.User.ID))

	// Second identical call fails the same way, not differently.
	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_UserDeletedAfterIssuance(t *testing.T) {
	svc, db := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)

	require.NoError(t, db.Where("id = ?", res.User.ID).Delete(&models.User{}).Error)

	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, ""))
	require.NoError(t, svc.Logout(ctx, "unknown-token"))

	res, err := svc.Register(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.RefreshToken))
	require.NoError(t, svc.Logout(ctx, res.RefreshToken))
}
