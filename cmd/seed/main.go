package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/blog-platform/backend/internal/config"
	"github.com/blog-platform/backend/internal/hash"
	"github.com/blog-platform/backend/internal/models"
)

// Seeds the database with fake authors and posts for local development.
func main() {
	users := flag.Int("users", 10, "number of users to create")
	postsPer := flag.Int("posts", 5, "posts per user")
	password := flag.String("password", "password123", "password for every seeded user")
	flag.Parse()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := config.InitDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	pwHash, err := hash.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash error: %v", err)
	}

	for i := 0; i < *users; i++ {
		user := models.User{
			Name:         gofakeit.Name(),
			Email:        strings.ToLower(gofakeit.Email()),
			PasswordHash: pwHash,
			Role:         models.RoleAuthor,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			log.Fatalf("create user: %v", err)
		}

		for j := 0; j < *postsPer; j++ {
			status := models.PostDraft
			if gofakeit.Bool() {
				status = models.PostPublished
			}

			post := models.Post{
				Title:    gofakeit.Sentence(gofakeit.Number(3, 8)),
				Content:  gofakeit.Paragraph(3, 5, 12, "\n\n"),
				Excerpt:  gofakeit.Sentence(10),
				AuthorID: user.ID,
				Status:   status,
				Tags:     strings.Join([]string{gofakeit.Word(), gofakeit.Word()}, ","),
			}
			if err := db.WithContext(ctx).Create(&post).Error; err != nil {
				log.Fatalf("create post: %v", err)
			}
		}

		fmt.Printf("seeded %s <%s>\n", user.Name, user.Email)
	}

	fmt.Printf("done: %d users, %d posts\n", *users, *users**postsPer)
}
