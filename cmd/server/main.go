package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/ai"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/api"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/config"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/handlers"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/relay"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Initialize Redis message store
	messages, err := store.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer messages.Close()
	logger.Info().Msg("connected to Redis")

	// Initialize chat-box index store: Postgres when configured, SQLite
	// for development
	var index store.IndexStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		index = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		index = sqliteStore
		logger.Info().Msg("using SQLite index store")
	}
	defer index.Close()

	// Wire the relay core
	adapter := store.New(messages, index, logger)
	responder := ai.NewClient(cfg.AIServiceURL, cfg.AITimeout)
	hub := relay.NewHub(adapter, responder, logger)

	// Create router
	health := handlers.NewHandler(messages, index)
	router := api.NewRouter(logger, hub, health)

	// Create server
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting relay server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Stop accepting new connections, then drain the hub
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown incomplete")
	}
	if err := hub.Shutdown(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("hub shutdown incomplete")
	}

	logger.Info().Msg("server stopped")
}
