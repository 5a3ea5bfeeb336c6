package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blog-platform/backend/internal/models"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepo struct {
	DB *gorm.DB
}

// CommentFilter narrows List; zero values mean no filter.
type CommentFilter struct {
	PostID uint
	Status string
}

func (r *CommentRepo) Create(ctx context.Context, c *models.Comment) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *CommentRepo) ByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.DB.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepo) List(ctx context.Context, f CommentFilter, offset, limit int) ([]models.Comment, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Comment{})
	if f.PostID != 0 {
		q = q.Where("post_id = ?", f.PostID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := q.Preload("Author").Order("created_at DESC").Offset(offset).Limit(limit).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *CommentRepo) ListForPost(ctx context.Context, postID uint, status string, offset, limit int) ([]models.Comment, int64, error) {
	return r.List(ctx, CommentFilter{PostID: postID, Status: status}, offset, limit)
}

func (r *CommentRepo) Save(ctx context.Context, c *models.Comment) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (r *CommentRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := r.DB.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepo) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{}).Error
}
