package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/blog-platform/backend/internal/config"
	"github.com/blog-platform/backend/internal/es"
	"github.com/blog-platform/backend/internal/handlers"
	"github.com/blog-platform/backend/internal/httpx"
	"github.com/blog-platform/backend/internal/logging"
	authmw "github.com/blog-platform/backend/internal/middleware/auth"
	loggingmw "github.com/blog-platform/backend/internal/middleware/logging"
	"github.com/blog-platform/backend/internal/mykafka"
	"github.com/blog-platform/backend/internal/repo"
	"github.com/blog-platform/backend/internal/service"
	"github.com/blog-platform/backend/internal/tokens"
	httpserver "github.com/blog-platform/backend/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod, err = mykafka.NewProducer(cfg.KafkaBrokers, []string{
			mykafka.TopicUserEvents,
			mykafka.TopicPostEvents,
			mykafka.TopicCommentEvents,
		})
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
	}

	var esClient *elasticsearch.Client
	if cfg.ESURL != "" {
		esClient, err = es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	}

	issuer := &tokens.Issuer{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.RefreshSecret,
	}
	users := &repo.UserRepo{DB: db}
	ledger := &repo.RefreshTokenRepo{DB: db}
	posts := &repo.PostRepo{DB: db}
	comments := &repo.CommentRepo{DB: db}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpx.ErrorHandler
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{
			Svc: &service.AuthService{
				Users:  users,
				Ledger: ledger,
				Issuer: issuer,
			},
			Producer: prod,
		},
		PostHandler:    &handlers.PostHandler{Posts: posts, ES: esClient, Producer: prod},
		CommentHandler: &handlers.CommentHandler{Comments: comments, Posts: posts, Producer: prod},
		UserHandler:    &handlers.UserHandler{Users: users, Posts: posts},
		SearchHandler:  handlers.NewSearchHandler(esClient),
		Auth:           authmw.New(users, issuer),
	})

	// Store-side TTL eviction counterpart: sweep expired ledger rows
	// periodically so dead sessions do not pile up between reads.
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	go sweepLedger(sweepCtx, ledger, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	sweepCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}

func sweepLedger(ctx context.Context, ledger *repo.RefreshTokenRepo, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := ledger.DeleteExpired(ctx)
			if err != nil {
				logger.Error("ledger sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("ledger sweep", "removed", n)
			}
		}
	}
}
