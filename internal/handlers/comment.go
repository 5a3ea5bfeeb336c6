package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blog-platform/backend/internal/httpx"
	"github.com/blog-platform/backend/internal/logging"
	authmw "github.com/blog-platform/backend/internal/middleware/auth"
	"github.com/blog-platform/backend/internal/models"
	"github.com/blog-platform/backend/internal/mykafka"
	"github.com/blog-platform/backend/internal/repo"
	"github.com/blog-platform/backend/internal/util"
	"github.com/blog-platform/backend/internal/validate"
)

type CommentHandler struct {
	Comments *repo.CommentRepo
	Posts    *repo.PostRepo
	Producer *mykafka.Producer
}

func (h *CommentHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	ident, _ := authmw.IdentityFrom(c)

	var req struct {
		Content string `json:"content"`
		PostID  uint   `json:"post"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := validate.Comment(req.Content, req.PostID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Message(err))
	}

	post, err := h.Posts.ByID(ctx, req.PostID)
	if err != nil {
		if errors.Is(err, repo.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}
	if post.Status != models.PostPublished {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot comment on unpublished post")
	}

	comment := models.Comment{
		Content:  req.Content,
		PostID:   req.PostID,
		AuthorID: ident.UserID,
		Status:   models.CommentApproved,
	}
	if err := h.Comments.Create(ctx, &comment); err != nil {
		return err
	}

	h.publishCommentEvent(ctx, "comment_created", &comment)

	return httpx.Success(c, http.StatusCreated, "Comment created successfully", comment)
}

func (h *CommentHandler) ListForPost(c echo.Context) error {
	ctx := c.Request().Context()

	postID, err := strconv.ParseUint(c.Param("postId"), 10, 64)
	if err != nil || postID == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if _, err := h.Posts.ByID(ctx, uint(postID)); err != nil {
		if errors.Is(err, repo.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("limit"))
	from, limit := util.Calculate(page, size)

	comments, total, err := h.Comments.ListForPost(ctx, uint(postID), models.CommentApproved, from, limit)
	if err != nil {
		return err
	}

	if page < 1 {
		page = 1
	}
	return httpx.Success(c, http.StatusOK, "Comments fetched successfully", echo.Map{
		"comments": comments,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": util.Pages(total, limit),
		},
	})
}

// ListAll is the moderation queue: admins browse every comment, optionally
// narrowed by status or post, including the pending and rejected ones the
// public listing never shows.
func (h *CommentHandler) ListAll(c echo.Context) error {
	ctx := c.Request().Context()

	filter := repo.CommentFilter{Status: c.QueryParam("status")}
	if filter.Status != "" {
		if err := validate.CommentStatus(filter.Status); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, validate.Message(err))
		}
	}
	if post := c.QueryParam("post"); post != "" {
		id, err := strconv.ParseUint(post, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
		}
		filter.PostID = uint(id)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("limit"))
	from, limit := util.Calculate(page, size)

	comments, total, err := h.Comments.List(ctx, filter, from, limit)
	if err != nil {
		return err
	}

	if page < 1 {
		page = 1
	}
	return httpx.Success(c, http.StatusOK, "Comments fetched successfully", echo.Map{
		"comments": comments,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": util.Pages(total, limit),
		},
	})
}

// Update lets the comment's author rewrite its content; admins may also
// move the status while editing.
func (h *CommentHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	ident, _ := authmw.IdentityFrom(c)

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	var req struct {
		Content string `json:"content"`
		Status  string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validate.CommentUpdate(req.Content); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Message(err))
	}
	if req.Status != "" {
		if err := validate.CommentStatus(req.Status); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, validate.Message(err))
		}
	}

	comment, err := h.Comments.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return err
	}

	if ident.Role != models.RoleAdmin && comment.AuthorID != ident.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this comment")
	}

	if req.Content != "" {
		comment.Content = req.Content
	}
	if req.Status != "" {
		if ident.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Only admins can change comment status")
		}
		comment.Status = req.Status
	}

	if err := h.Comments.Save(ctx, comment); err != nil {
		return err
	}

	return httpx.Success(c, http.StatusOK, "Comment updated successfully", comment)
}

// UpdateStatus is the moderation hook: admins move comments between
// pending, approved and rejected.
func (h *CommentHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validate.CommentStatus(req.Status); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Message(err))
	}

	if err := h.Comments.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, repo.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return err
	}

	return httpx.Success(c, http.StatusOK, "Comment status updated", echo.Map{"id": id, "status": req.Status})
}

func (h *CommentHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ident, _ := authmw.IdentityFrom(c)

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	comment, err := h.Comments.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return err
	}

	if ident.Role != models.RoleAdmin && comment.AuthorID != ident.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	if err := h.Comments.Delete(ctx, id); err != nil {
		return err
	}

	return httpx.Success(c, http.StatusOK, "Comment deleted successfully", nil)
}

func (h *CommentHandler) publishCommentEvent(ctx context.Context, eventType string, comment *models.Comment) {
	event := map[string]interface{}{
		"type":       eventType,
		"comment_id": comment.ID,
		"post_id":    comment.PostID,
		"author_id":  comment.AuthorID,
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(pubCtx, mykafka.TopicCommentEvents, fmt.Sprint(comment.PostID), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "type", eventType, "error", err)
	}
}
