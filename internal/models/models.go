package models

import (
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
)

const (
	PostDraft     = "draft"
	PostPublished = "published"
)

const (
	CommentPending  = "pending"
	CommentApproved = "approved"
	CommentRejected = "rejected"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:author"  json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser carries the user fields returned to clients.
type PublicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uint      `gorm:"index;not null"       json:"user_id"`
	ExpiresAt int64     `gorm:"not null"             json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"not null"                 json:"title"`
	Content   string    `gorm:"not null"                 json:"content"`
	Excerpt   string    `json:"excerpt"`
	AuthorID  uint      `gorm:"index;not null"           json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID"      json:"author,omitempty"`
	Status    string    `gorm:"not null;default:draft"   json:"status"`
	Tags      string    `json:"tags"`
	Views     uint      `gorm:"default:0"                json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Content   string    `gorm:"not null"                  json:"content"`
	PostID    uint      `gorm:"index;not null"            json:"post_id"`
	AuthorID  uint      `gorm:"index;not null"            json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID"       json:"author,omitempty"`
	Status    string    `gorm:"not null;default:approved" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
