// Package validate checks request payloads and reports the first failing
// field as a client-facing message.
package validate

import (
	"errors"
	"fmt"
	"net/mail"

	"github.com/blog-platform/backend/internal/models"
)

var ErrValidation = errors.New("validation failed")

func fieldError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Message strips the sentinel prefix for the HTTP response.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	prefix := ErrValidation.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

func Register(name, email, password, role string) error {
	if name == "" {
		return fieldError("Name is required")
	}
	if len(name) < 2 {
		return fieldError("Name must be at least 2 characters")
	}
	if len(name) > 50 {
		return fieldError("Name must be less than 50 characters")
	}
	if err := Email(email); err != nil {
		return err
	}
	if password == "" {
		return fieldError("Password is required")
	}
	if len(password) < 8 {
		return fieldError("Password must contain at least 8 characters")
	}
	if role != "" && role != models.RoleAdmin && role != models.RoleAuthor {
		return fieldError("Role must be either admin or author")
	}
	return nil
}

func Login(email, password string) error {
	if err := Email(email); err != nil {
		return err
	}
	if password == "" {
		return fieldError("Password is required")
	}
	return nil
}

func Email(email string) error {
	if email == "" {
		return fieldError("Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fieldError("Please enter a valid email")
	}
	return nil
}

func CreatePost(title, content, excerpt, status string) error {
	if title == "" {
		return fieldError("Title is required")
	}
	if content == "" {
		return fieldError("Content is required")
	}
	return postFields(title, content, excerpt, status)
}

func UpdatePost(title, content, excerpt, status string) error {
	return postFields(title, content, excerpt, status)
}

func postFields(title, content, excerpt, status string) error {
	if title != "" && len(title) < 3 {
		return fieldError("Title must be at least 3 characters")
	}
	if len(title) > 200 {
		return fieldError("Title must be less than 200 characters")
	}
	if content != "" && len(content) < 10 {
		return fieldError("Content must be at least 10 characters")
	}
	if len(excerpt) > 500 {
		return fieldError("Excerpt must be less than 500 characters")
	}
	if status != "" && status != models.PostDraft && status != models.PostPublished {
		return fieldError("Status must be either draft or published")
	}
	return nil
}

func Comment(content string, postID uint) error {
	if content == "" {
		return fieldError("Content is required")
	}
	if len(content) > 1000 {
		return fieldError("Content must be less than 1000 characters")
	}
	if postID == 0 {
		return fieldError("Post ID is required")
	}
	return nil
}

// CommentUpdate allows empty content: partial edits leave it unchanged.
func CommentUpdate(content string) error {
	if len(content) > 1000 {
		return fieldError("Content must be less than 1000 characters")
	}
	return nil
}

func CommentStatus(status string) error {
	switch status {
	case models.CommentPending, models.CommentApproved, models.CommentRejected:
		return nil
	}
	return fieldError("Status must be pending, approved, or rejected")
}
