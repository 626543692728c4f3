package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/anonto42/blog-api/backend/internal/auth"
	"github.com/anonto42/blog-api/backend/internal/cache"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/router"
	"github.com/anonto42/blog-api/backend/internal/services"
	"github.com/anonto42/blog-api/backend/pkg/config"
	"github.com/anonto42/blog-api/backend/pkg/firebase"
	"github.com/anonto42/blog-api/backend/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Str("service", "blog-api").Logger()
		l.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

// run starts the server and blocks until ctx is cancelled or the server fails.
// Deferred cleanup runs on every return path.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}
	defer db.CloseDB()

	if err := router.Migrate(ctx, db.Postgres, db.Blog); err != nil {
		return fmt.Errorf("failed to prepare schema: %w", err)
	}

	var verifier services.IDTokenVerifier
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case err == nil:
		verifier = firebaseApp.AuthClient
		log.Info().Msg("Firebase login enabled")
	case errors.Is(err, firebase.ErrNotConfigured):
		log.Info().Msg("Firebase credentials not configured, Firebase login disabled")
	default:
		return fmt.Errorf("failed to initialize firebase: %w", err)
	}

	userCache, err := cache.New[uint, models.User](cfg.UserCacheSize, cfg.UserCacheTTL)
	if err != nil {
		return fmt.Errorf("failed to create user cache: %w", err)
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)

	e := router.New(router.NewDependencies(db, tokens, userCache, verifier, log))

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	select {
	case err := <-serverErr:
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	default:
	}
	log.Info().Msg("Server exited")
	return nil
}
