package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/justyntemme/bookdash/internal/api"
	"github.com/justyntemme/bookdash/internal/auth"
	"github.com/justyntemme/bookdash/internal/config"
	"github.com/justyntemme/bookdash/internal/dashboard"
	"github.com/justyntemme/bookdash/internal/metadata"
	"github.com/justyntemme/bookdash/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(2)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		slog.Error("Failed to create data directory", "error", err)
		os.Exit(1)
	}

	db, err := storage.NewDatabase(filepath.Join(cfg.DataDir, "bookdash.db"))
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.PassRetention > 0 {
		pruned, err := db.PrunePasses(context.Background(), time.Now().Add(-cfg.PassRetention))
		if err != nil {
			slog.Warn("Failed to prune pass history", "error", err)
		} else if pruned > 0 {
			slog.Info("Pruned pass history", "removed", pruned)
		}
	}

	provider := metadata.NewOpenLibraryProvider(metadata.OpenLibraryConfig{
		BaseURL:           cfg.OpenLibraryURL,
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	resolver := metadata.NewAuthorResolver(provider, cfg.AuthorConcurrency)
	pipeline := dashboard.NewPipeline(provider, resolver, cfg.Query)
	board := dashboard.New(pipeline, dashboard.WithRecorder(db))

	// Initial page load
	go func() {
		if err := board.Load(context.Background()); err != nil {
			slog.Warn("Initial page load failed", "error", err)
		}
	}()

	authenticator := auth.NewAuthenticator(cfg.JWTSecret, cfg.AdminUser, cfg.AdminPasswordHash)
	if !authenticator.Enabled() {
		slog.Warn("BOOKDASH_ADMIN_PASSWORD_HASH not set, dashboard API is unauthenticated")
	}

	router := api.NewRouter(api.NewHandler(board, db, cfg.Query), authenticator)

	srv := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Bookdash server starting", "addr", cfg.BindAddr, "data_dir", cfg.DataDir, "query", cfg.Query)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
}
