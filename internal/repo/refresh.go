package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/blog-platform/backend/internal/models"
)

var ErrTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepo is the ledger of outstanding refresh tokens. Expired rows
// are pruned when read, so a stale row can never validate a refresh.
type RefreshTokenRepo struct {
	DB *gorm.DB
}

func (r *RefreshTokenRepo) Put(ctx context.Context, token string, userID uint, expiresAt time.Time) error {
	record := models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt.Unix(),
	}
	return r.DB.WithContext(ctx).Create(&record).Error
}

func (r *RefreshTokenRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	err := r.DB.WithContext(ctx).Where("token = ?", token).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if record.ExpiresAt < time.Now().Unix() {
		if err := r.DeleteByToken(ctx, token); err != nil {
			return nil, err
		}
		return nil, ErrTokenNotFound
	}

	return &record, nil
}

// DeleteByToken is idempotent: deleting an absent row is not an error, so
// the lazy prune and a concurrent store-side TTL eviction can both run.
func (r *RefreshTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	return r.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error
}

func (r *RefreshTokenRepo) DeleteAllForUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}

// Replace removes every record owned by the user and inserts the fresh one in
// a single transaction, keeping at most one valid token per user after login.
func (r *RefreshTokenRepo) Replace(ctx context.Context, token string, userID uint, expiresAt time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}

		record := models.RefreshToken{
			Token:     token,
			UserID:    userID,
			ExpiresAt: expiresAt.Unix(),
		}
		return tx.Create(&record).Error
	})
}

// DeleteExpired is the background sweep counterpart to the lazy prune.
func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now().Unix()).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
