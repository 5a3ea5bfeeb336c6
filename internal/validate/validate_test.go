package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	require.NoError(t, Register("Alice", "a@x.com", "password123", ""))
	require.NoError(t, Register("Alice", "a@x.com", "password123", "admin"))

	cases := []struct {
		name    string
		err     error
		message string
	}{
		{"empty name", Register("", "a@x.com", "password123", ""), "Name is required"},
		{"short name", Register("A", "a@x.com", "password123", ""), "Name must be at least 2 characters"},
		{"empty email", Register("Alice", "", "password123", ""), "Email is required"},
		{"bad email", Register("Alice", "nope", "password123", ""), "Please enter a valid email"},
		{"empty password", Register("Alice", "a@x.com", "", ""), "Password is required"},
		{"short password", Register("Alice", "a@x.com", "short", ""), "Password must contain at least 8 characters"},
		{"bad role", Register("Alice", "a@x.com", "password123", "root"), "Role must be either admin or author"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.err, ErrValidation)
			assert.Equal(t, tc.message, Message(tc.err))
		})
	}
}

func TestLogin(t *testing.T) {
	require.NoError(t, Login("a@x.com", "anything"))
	assert.Equal(t, "Email is required", Message(Login("", "x")))
	assert.Equal(t, "Password is required", Message(Login("a@x.com", "")))
}

func TestMessage(t *testing.T) {
	assert.Empty(t, Message(nil))
	assert.Equal(t, "Name is required", Message(fieldError("Name is required")))
}

func TestCreatePost(t *testing.T) {
	require.NoError(t, CreatePost("A valid title", "Content long enough here", "", "draft"))

	assert.Equal(t, "Title is required", Message(CreatePost("", "some content here ok", "", "")))
	assert.Equal(t, "Content is required", Message(CreatePost("Title", "", "", "")))
	assert.Equal(t, "Title must be at least 3 characters", Message(CreatePost("ab", "some content here ok", "", "")))
	assert.Equal(t, "Content must be at least 10 characters", Message(CreatePost("Title", "short", "", "")))
	assert.Equal(t, "Status must be either draft or published", Message(CreatePost("Title", "some content here ok", "", "archived")))
}

func TestUpdatePost(t *testing.T) {
	// Partial updates leave untouched fields empty.
	require.NoError(t, UpdatePost("", "", "", ""))
	require.NoError(t, UpdatePost("New title", "", "", "published"))
	assert.Equal(t, "Status must be either draft or published", Message(UpdatePost("", "", "", "archived")))
}

func TestComment(t *testing.T) {
	require.NoError(t, Comment("Looks good", 1))
	assert.Equal(t, "Content is required", Message(Comment("", 1)))
	assert.Equal(t, "Post ID is required", Message(Comment("Looks good", 0)))
}

func TestCommentUpdate(t *testing.T) {
	require.NoError(t, CommentUpdate(""))
	require.NoError(t, CommentUpdate("still fine"))
	assert.Equal(t, "Content must be less than 1000 characters", Message(CommentUpdate(strings.Repeat("x", 1001))))
}

func TestCommentStatus(t *testing.T) {
	for _, status := range []string{"pending", "approved", "rejected"} {
		require.NoError(t, CommentStatus(status))
	}
	assert.Equal(t, "Status must be pending, approved, or rejected", Message(CommentStatus("deleted")))
}
