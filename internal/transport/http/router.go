package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blog-platform/backend/internal/handlers"
	authmw "github.com/blog-platform/backend/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	PostHandler    *handlers.PostHandler
	CommentHandler *handlers.CommentHandler
	UserHandler    *handlers.UserHandler
	SearchHandler  *handlers.SearchHandler
	Auth           *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout, d.Auth.Authenticate)

	v1.GET("/posts/public", d.PostHandler.ListPublic)
	v1.GET("/posts/public/:id", d.PostHandler.GetPublic)
	v1.GET("/search", d.SearchHandler.Search)
	v1.GET("/comments/post/:postId", d.CommentHandler.ListForPost)

	// Role gates compose left to right; RequireAuthor also resolves the
	// caller's role for the ownership checks inside the handlers.
	posts := v1.Group("/posts", d.Auth.Authenticate, d.Auth.RequireAuthor)
	posts.GET("", d.PostHandler.List)
	posts.GET("/:id", d.PostHandler.Get)
	posts.POST("", d.PostHandler.Create)
	posts.PUT("/:id", d.PostHandler.Update)
	posts.DELETE("/:id", d.PostHandler.Delete)

	comments := v1.Group("/comments", d.Auth.Authenticate, d.Auth.RequireAuthor)
	comments.POST("", d.CommentHandler.Create)
	comments.PUT("/:id", d.CommentHandler.Update)
	comments.DELETE("/:id", d.CommentHandler.Delete)
	comments.GET("/admin/all", d.CommentHandler.ListAll, d.Auth.RequireAdmin)
	comments.PATCH("/:id/status", d.CommentHandler.UpdateStatus, d.Auth.RequireAdmin)

	users := v1.Group("/users", d.Auth.Authenticate)
	users.GET("/profile", d.UserHandler.Profile)
	users.GET("/stats", d.UserHandler.Stats)
	users.GET("", d.UserHandler.List, d.Auth.RequireAdmin)
}
