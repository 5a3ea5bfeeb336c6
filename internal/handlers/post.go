package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/blog-platform/backend/internal/es"
	"github.com/blog-platform/backend/internal/httpx"
	"github.com/blog-platform/backend/internal/logging"
	authmw "github.com/blog-platform/backend/internal/middleware/auth"
	"github.com/blog-platform/backend/internal/models"
	"github.com/blog-platform/backend/internal/mykafka"
	"github.com/blog-platform/backend/internal/repo"
	"github.com/blog-platform/backend/internal/service/search"
	"github.com/blog-platform/backend/internal/util"
	"github.com/blog-platform/backend/internal/validate"
)

type PostHandler struct {
	Posts    *repo.PostRepo
	ES       *elasticsearch.Client
	Producer *mykafka.Producer
}

type postRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Excerpt string   `json:"excerpt"`
	Status  string   `json:"status"`
	Tags    []string `json:"tags"`
}

func (h *PostHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	ident, _ := authmw.IdentityFrom(c)

	var req postRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := validate.CreatePost(req.Title, req.Content, req.Excerpt, req.Status); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Message(err))
	}

	status := req.Status
	if status == "" {
		status = models.PostDraft
	}

	post := models.Post{
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		AuthorID: ident.UserID,
		Status:   status,
		Tags:     strings.Join(req.Tags, ","),
	}
	if err := h.Posts.Create(ctx, &post); err != nil {
		return err
	}

	if post.Status == models.PostPublished {
		h.indexPost(ctx, &post)
		h.publishPostEvent(ctx, "post_published", &post)
	}

	return httpx.Success(c, http.StatusCreated, "Post created successfully", post)
}

// ListPublic serves readers: published posts only, no authentication.
func (h *PostHandler) ListPublic(c echo.Context) error {
	return h.list(c, repo.PostFilter{Status: models.PostPublished})
}

func (h *PostHandler) List(c echo.Context) error {
	filter := repo.PostFilter{Status: c.QueryParam("status")}
	if filter.Status != "" && filter.Status != models.PostDraft && filter.Status != models.PostPublished {
		return echo.NewHTTPError(http.StatusBadRequest, "Status must be either draft or published")
	}
	if author := c.QueryParam("author"); author != "" {
		id, err := strconv.ParseUint(author, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid author ID")
		}
		filter.AuthorID = uint(id)
	}
	return h.list(c, filter)
}

func (h *PostHandler) list(c echo.Context, filter repo.PostFilter) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("limit"))
	from, limit := util.Calculate(page, size)

	posts, total, err := h.Posts.List(c.Request().Context(), filter, from, limit)
	if err != nil {
		return err
	}

	if page < 1 {
		page = 1
	}
	return httpx.Success(c, http.StatusOK, "Posts fetched successfully", echo.Map{
		"posts": posts,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": util.Pages(total, limit),
		},
	})
}

// GetPublic serves readers a single published post. Anything else reports
// not found so the route never confirms that a draft exists.
func (h *PostHandler) GetPublic(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	post, err := h.Posts.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}
	if post.Status != models.PostPublished {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if err := h.Posts.IncrementViews(ctx, post.ID); err != nil {
		logging.FromContext(ctx).Error("view_increment_failed", "post_id", post.ID, "error", err)
	} else {
		post.Views++
	}

	return httpx.Success(c, http.StatusOK, "Post fetched successfully", post)
}

func (h *PostHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	post, err := h.Posts.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	if post.Status == models.PostDraft {
		ident, ok := authmw.IdentityFrom(c)
		if !ok || (ident.Role != models.RoleAdmin && ident.UserID != post.AuthorID) {
			return echo.NewHTTPError(http.StatusForbidden, "Access denied")
		}
	} else {
		if err := h.Posts.IncrementViews(ctx, post.ID); err != nil {
			logging.FromContext(ctx).Error("view_increment_failed", "post_id", post.ID, "error", err)
		} else {
			post.Views++
		}
	}

	return httpx.Success(c, http.StatusOK, "Post fetched successfully", post)
}

func (h *PostHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	ident, _ := authmw.IdentityFrom(c)

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	var req postRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validate.UpdatePost(req.Title, req.Content, req.Excerpt, req.Status); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Message(err))
	}

	post, err := h.Posts.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	if ident.Role != models.RoleAdmin && post.AuthorID != ident.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	wasPublished := post.Status == models.PostPublished

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.Excerpt != "" {
		post.Excerpt = req.Excerpt
	}
	if req.Status != "" {
		post.Status = req.Status
	}
	if req.Tags != nil {
		post.Tags = strings.Join(req.Tags, ",")
	}

	if err := h.Posts.Save(ctx, post); err != nil {
		return err
	}

	switch {
	case post.Status == models.PostPublished:
		h.indexPost(ctx, post)
		if !wasPublished {
			h.publishPostEvent(ctx, "post_published", post)
		}
	case wasPublished:
		h.removeFromIndex(ctx, post.ID)
	}

	return httpx.Success(c, http.StatusOK, "Post updated successfully", post)
}

func (h *PostHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ident, _ := authmw.IdentityFrom(c)

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	post, err := h.Posts.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	if ident.Role != models.RoleAdmin && post.AuthorID != ident.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.Posts.Delete(ctx, id); err != nil {
		return err
	}
	h.removeFromIndex(ctx, id)

	return httpx.Success(c, http.StatusOK, "Post deleted successfully", nil)
}

func (h *PostHandler) indexPost(ctx context.Context, post *models.Post) {
	if h.ES == nil {
		return
	}
	if err := search.IndexPost(ctx, h.ES, es.PostIndex, post); err != nil {
		logging.FromContext(ctx).Error("es_index_failed", "post_id", post.ID, "error", err)
	}
}

func (h *PostHandler) removeFromIndex(ctx context.Context, id uint) {
	if h.ES == nil {
		return
	}
	if err := search.RemovePost(ctx, h.ES, es.PostIndex, id); err != nil {
		logging.FromContext(ctx).Error("es_remove_failed", "post_id", id, "error", err)
	}
}

func (h *PostHandler) publishPostEvent(ctx context.Context, eventType string, post *models.Post) {
	event := map[string]interface{}{
		"type":      eventType,
		"post_id":   post.ID,
		"author_id": post.AuthorID,
		"title":     post.Title,
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(pubCtx, mykafka.TopicPostEvents, fmt.Sprint(post.ID), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "type", eventType, "error", err)
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
