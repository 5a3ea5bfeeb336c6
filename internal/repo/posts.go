package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blog-platform/backend/internal/models"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepo struct {
	DB *gorm.DB
}

type PostFilter struct {
	Status   string
	AuthorID uint
}

func (r *PostRepo) Create(ctx context.Context, p *models.Post) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

// ByID loads the post with its author so responses carry the author's
// public fields alongside the raw id.
func (r *PostRepo) ByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.DB.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *PostRepo) List(ctx context.Context, f PostFilter, offset, limit int) ([]models.Post, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Post{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AuthorID != 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := q.Preload("Author").Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *PostRepo) Save(ctx context.Context, p *models.Post) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *PostRepo) IncrementViews(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

// Delete removes the post and its comments together.
func (r *PostRepo) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Post{}).Error
	})
}

type AuthorStats struct {
	TotalPosts     int64 `json:"totalPosts"`
	PublishedPosts int64 `json:"publishedPosts"`
	DraftPosts     int64 `json:"draftPosts"`
}

func (r *PostRepo) StatsForAuthor(ctx context.Context, authorID uint) (*AuthorStats, error) {
	var stats AuthorStats

	if err := r.DB.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ?", authorID).
		Count(&stats.TotalPosts).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ? AND status = ?", authorID, models.PostPublished).
		Count(&stats.PublishedPosts).Error; err != nil {
		return nil, err
	}
	stats.DraftPosts = stats.TotalPosts - stats.PublishedPosts

	return &stats, nil
}
