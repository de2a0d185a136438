// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Yomira image HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the metadata store (PostgreSQL with migrations, MongoDB or memory).
//  4. Connect to Redis when a listing cache is configured.
//  5. Select the file storage backend (local or S3).
//  6. Load the token verifier and wire the image service.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/yomira-image/internal/api"
	"github.com/taibuivan/yomira-image/internal/core/image"
	"github.com/taibuivan/yomira-image/internal/core/storage/stores"
	"github.com/taibuivan/yomira-image/internal/platform/config"
	"github.com/taibuivan/yomira-image/internal/platform/constants"
	"github.com/taibuivan/yomira-image/internal/platform/middleware"
	"github.com/taibuivan/yomira-image/internal/platform/migration"
	mongostore "github.com/taibuivan/yomira-image/internal/platform/mongo"
	pgstore "github.com/taibuivan/yomira-image/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-image/internal/platform/redis"
	"github.com/taibuivan/yomira-image/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String(constants.FieldApp, constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String(constants.FieldVersion, constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String(constants.FieldApp, constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("database_driver", cfg.DatabaseDriver),
		slog.String("storage_driver", cfg.StorageDriver),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Metadata Store ─────────────────────────────────────────────────
	var (
		repository image.Repository
		healthDeps api.HealthDependencies
	)

	switch cfg.DatabaseDriver {
	case config.DatabasePostgres:
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		repository = image.NewPostgresRepository(pool)
		healthDeps.Database = &api.HealthCheck{
			Name:  "postgres",
			Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		}

	case config.DatabaseMongo:
		client, database, err := mongostore.NewClient(startupCtx, cfg.MongoURL, cfg.MongoDatabase, log)
		must(log, err, "connect to mongo")
		defer func() {
			log.Info("closing_mongo_client")
			if cerr := client.Disconnect(context.Background()); cerr != nil {
				log.Error("mongo_close_error", slog.Any("error", cerr))
			}
		}()

		mongoRepository, err := image.NewMongoRepository(startupCtx, database.Collection(image.CollectionImages))
		must(log, err, "prepare mongo collection")

		repository = mongoRepository
		healthDeps.Database = &api.HealthCheck{
			Name:  "mongo",
			Check: func(ctx context.Context) error { return mongostore.Ping(ctx, client) },
		}

	default:
		log.Warn("memory_repository_in_use", slog.String("hint", "metadata is lost on restart"))
		repository = image.NewMemoryRepository()
	}

	// ── 4. Redis ──────────────────────────────────────────────────────────
	var cache image.ListingCache
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_error", slog.Any("error", cerr))
			}
		}()

		cache = image.NewRedisListingCache(rdb, cfg.ListingCacheTTL)
		healthDeps.Cache = &api.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		}
	}

	// ── 5. File Storage ───────────────────────────────────────────────────
	backend, err := stores.New(startupCtx, cfg, log)
	must(log, err, "initialize storage backend")

	var files http.Handler
	if cfg.StorageDriver == config.StorageLocal && cfg.LocalServeFiles {
		files = http.FileServer(http.Dir(cfg.StoragePath))
	}

	// ── 6. Authentication ─────────────────────────────────────────────────
	authOptions := middleware.AuthOptions{
		MasterTokenHash: cfg.MasterTokenHash,
		Disabled:        cfg.AuthDisabled,
	}
	if cfg.JWTPubKeyPath != "" {
		verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
		must(log, err, "load jwt public key")
		authOptions.Verifier = verifier
	}
	if cfg.AuthDisabled {
		log.Warn("authentication_disabled", slog.String("account_id", constants.SuperUserID))
	}

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	gate := sec.NewGate(cfg.Namespace())
	fetcher := image.NewHTTPFetcher(cfg.FetchTimeout, cfg.MaxUploadBytes)

	imageService := image.NewService(repository, backend, fetcher, cache, gate, log, image.Settings{
		AnonymousRead: cfg.AnonymousRead,
	})
	imageHandler := image.NewHandler(imageService, image.HandlerSettings{
		MaxUploadBytes: cfg.MaxUploadBytes,
		AnonymousRead:  cfg.AnonymousRead,
	})

	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(cfg, log, authOptions, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Index:     api.NewIndexHandler(gate.Namespace()),
		Image:     imageHandler,
		Files:     files,
		FilesPath: cfg.LocalServePath,
	})

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
