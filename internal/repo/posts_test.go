package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blog-platform/backend/internal/models"
)

func seedPost(t *testing.T, r *PostRepo, authorID uint, status string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:    "Some title",
		Content:  "Some content that is long enough",
		AuthorID: authorID,
		Status:   status,
	}
	require.NoError(t, r.Create(context.Background(), post))
	return post
}

func TestPostRepo_ByID(t *testing.T) {
	r := &PostRepo{DB: initTestDB(t)}
	ctx := context.Background()

	created := seedPost(t, r, 1, models.PostDraft)

	got, err := r.ByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)

	_, err = r.ByID(ctx, 999)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostRepo_ListFilters(t *testing.T) {
	r := &PostRepo{DB: initTestDB(t)}
	ctx := context.Background()

	seedPost(t, r, 1, models.PostPublished)
	seedPost(t, r, 1, models.PostDraft)
	seedPost(t, r, 2, models.PostPublished)

	posts, total, err := r.List(ctx, PostFilter{Status: models.PostPublished}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, posts, 2)

	posts, total, err = r.List(ctx, PostFilter{Status: models.PostPublished, AuthorID: 2}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, posts, 1)
	assert.Equal(t, uint(2), posts[0].AuthorID)

	// Offset past the end returns an empty page with the real total.
	posts, total, err = r.List(ctx, PostFilter{}, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, posts)
}

func TestPostRepo_IncrementViews(t *testing.T) {
	r := &PostRepo{DB: initTestDB(t)}
	ctx := context.Background()

	post := seedPost(t, r, 1, models.PostPublished)

	require.NoError(t, r.IncrementViews(ctx, post.ID))
	require.NoError(t, r.IncrementViews(ctx, post.ID))

	got, err := r.ByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), got.Views)
}

func TestPostRepo_DeleteRemovesComments(t *testing.T) {
	db := initTestDB(t)
	r := &PostRepo{DB: db}
	ctx := context.Background()

	post := seedPost(t, r, 1, models.PostPublished)
	other := seedPost(t, r, 1, models.PostPublished)

	for _, pid := range []uint{post.ID, other.ID} {
		comment := &models.Comment{Content: "c", PostID: pid, AuthorID: 1, Status: models.CommentApproved}
		require.NoError(t, db.Create(comment).Error)
	}

	require.NoError(t, r.Delete(ctx, post.ID))

	_, err := r.ByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	var comments int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Equal(t, int64(1), comments, "only the deleted post's comments go away")
}

func TestPostRepo_StatsForAuthor(t *testing.T) {
	r := &PostRepo{DB: initTestDB(t)}
	ctx := context.Background()

	seedPost(t, r, 1, models.PostPublished)
	seedPost(t, r, 1, models.PostPublished)
	seedPost(t, r, 1, models.PostDraft)
	seedPost(t, r, 2, models.PostPublished)

	stats, err := r.StatsForAuthor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalPosts)
	assert.Equal(t, int64(2), stats.PublishedPosts)
	assert.Equal(t, int64(1), stats.DraftPosts)

	empty, err := r.StatsForAuthor(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalPosts)
}
