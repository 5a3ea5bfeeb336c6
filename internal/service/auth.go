package service

import (
	"context"
	"errors"
	"time"

	"github.com/blog-platform/backend/internal/hash"
	"github.com/blog-platform/backend/internal/logging"
	"github.com/blog-platform/backend/internal/models"
	"github.com/blog-platform/backend/internal/repo"
	"github.com/blog-platform/backend/internal/tokens"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already exists")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
)

// AuthService drives the session lifecycle: register and login move a client
// from anonymous to authenticated, refresh re-arms an expired access token,
// logout revokes the ledger entry.
type AuthService struct {
	Users  *repo.UserRepo
	Ledger *repo.RefreshTokenRepo
	Issuer *tokens.Issuer
}

type SessionResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         models.PublicUser
}

func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (*SessionResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if role == "" {
		role = models.RoleAuthor
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			l.Warn("register_failed", "reason", "email already exists")
			return nil, ErrEmailTaken
		}
		l.Error("register_failed", "error", err)
		return nil, err
	}

	res, err := s.openSession(ctx, &user)
	if err != nil {
		l.Error("register_failed", "error", err)
		return nil, err
	}

	l.Info("register_successful", "user_id", user.ID)
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	// Unknown email and bad password collapse into the same error so the
	// response text cannot be used to enumerate accounts.
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("login_failed", "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	res, err := s.openSession(ctx, user)
	if err != nil {
		l.Error("login_failed", "error", err)
		return nil, err
	}

	l.Info("login_successful", "user_id", user.ID)
	return res, nil
}

// openSession mints a fresh access+refresh pair and swaps the user's ledger
// records for the new one, so each login fully rotates the active session.
func (s *AuthService) openSession(ctx context.Context, user *models.User) (*SessionResult, error) {
	accessToken, accessExp, err := s.Issuer.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExp, err := s.Issuer.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.Ledger.Replace(ctx, refreshToken, user.ID, refreshExp); err != nil {
		return nil, err
	}

	return &SessionResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user.Public(),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The refresh
// token itself is not rotated; its ledger entry stays live until logout, the
// next login, or expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*SessionResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	// Ledger first: a revoked token stays unusable no matter how valid its
	// signature still is. FindByToken prunes expired rows on the way.
	if _, err := s.Ledger.FindByToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repo.ErrTokenNotFound) {
			l.Warn("refresh_failed", "reason", "token not in ledger")
			return nil, ErrInvalidRefreshToken
		}
		l.Error("refresh_failed", "error", err)
		return nil, err
	}

	claims, err := s.Issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		l.Warn("refresh_failed", "reason", "signature or type invalid")
		return nil, ErrInvalidRefreshToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("refresh_failed", "reason", "user gone", "user_id", userID)
			return nil, ErrUserNotFound
		}
		l.Error("refresh_failed", "error", err)
		return nil, err
	}

	accessToken, accessExp, err := s.Issuer.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		l.Error("refresh_failed", "error", err)
		return nil, err
	}

	l.Info("refresh_successful", "user_id", user.ID)
	return &SessionResult{
		AccessToken: accessToken,
		AccessExp:   accessExp,
		User:        user.Public(),
	}, nil
}

// Logout revokes the ledger entry if a token was supplied. It never fails on
// an unknown or already-deleted token, so repeated logouts are safe.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	if err := s.Ledger.DeleteByToken(ctx, refreshToken); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "error", err)
		return err
	}

	logging.FromContext(ctx).Info("logout_successful")
	return nil
}
