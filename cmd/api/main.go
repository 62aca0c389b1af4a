package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"inventory/api/internal/cache"
	"inventory/api/internal/config"
	"inventory/api/internal/database"
	"inventory/api/internal/feed"
	"inventory/api/internal/handlers"
	"inventory/api/internal/jobs"
	"inventory/api/internal/log"
	"inventory/api/internal/repository"
	"inventory/api/internal/server"
	"inventory/api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure photo bucket failed")
	}

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, objectStore, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	// The change feed keeps this process in sync with mutations made by
	// other connected clients: any items event reloads the catalog; a
	// profiles event needs no action here because capability is
	// re-resolved on every mutating call.
	listener := feed.NewListener(redisClient, logger)
	listener.On(feed.EntityItems, func(ctx context.Context) {
		if _, err := handlerSet.Catalog().Reload(ctx); err != nil {
			logger.Warn().Err(err).Msg("catalog reload failed")
		}
	})
	listener.On(feed.EntityProfiles, func(ctx context.Context) {
		logger.Debug().Msg("profile change observed")
	})
	if err := listener.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("change feed subscribe failed")
	}

	scheduler := jobs.NewScheduler(
		repository.NewItemRepository(dbPool),
		objectStore,
		cfg.Jobs.SweepSchedule,
		cfg.Jobs.OrphanMinAge,
		logger,
	)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, listener, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, listener *feed.Listener, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if err := listener.Close(); err != nil {
		logger.Error().Err(err).Msg("feed listener close error")
	}
	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
