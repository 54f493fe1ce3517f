package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnshRaj112/lighttribe-backend/internal/config"
	"github.com/AnshRaj112/lighttribe-backend/internal/database"
	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/routes"
	"github.com/AnshRaj112/lighttribe-backend/internal/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("connecting to document store")
	store, err := database.Connect(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close document store")
		}
	}()

	if err := store.EnsureIndexes(ctx); err != nil {
		logging.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	rdb, err := database.ConnectRedis(ctx, cfg.Redis.URI)
	if err != nil {
		// Redis only backs the token cache, shared rate limit and live
		// comments, all of which degrade without it.
		logging.Warn().Err(err).Msg("redis unavailable; continuing without it")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	svc := services.New(store, rdb, cfg)
	if !svc.Images.Enabled() {
		logging.Warn().Msg("cloudinary credentials not configured; image uploads disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes.NewRouter(cfg, store, svc, rdb),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.RequestTimeout,
		WriteTimeout:      cfg.Server.RequestTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("port", cfg.Server.Port).Str("env", cfg.Server.Environment).Msg("lightTribe backend listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}
