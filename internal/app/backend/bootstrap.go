// Package backend assembles the projects subsystem: configuration,
// observability, storage, caching, and the decorated service. It is the
// composition root embedding hosts build on.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	projectscache "github.com/clockline/clockline/internal/domains/projects/adapters/cache"
	projectsmemory "github.com/clockline/clockline/internal/domains/projects/adapters/memory"
	projectsobs "github.com/clockline/clockline/internal/domains/projects/adapters/observability"
	projectspostgres "github.com/clockline/clockline/internal/domains/projects/adapters/persistence/postgres"
	projectsapp "github.com/clockline/clockline/internal/domains/projects/application"
	projectsports "github.com/clockline/clockline/internal/domains/projects/ports"
	platformmigrations "github.com/clockline/clockline/internal/platform/migrations"
	platformobservability "github.com/clockline/clockline/internal/platform/observability"
	platformpostgres "github.com/clockline/clockline/internal/platform/postgres"
	platformredis "github.com/clockline/clockline/internal/platform/redis"
	sharedcache "github.com/clockline/clockline/internal/shared/cache"
)

const serviceName = "clockline-backend"

// Runtime exposes the wired subsystem to its host process.
type Runtime struct {
	Projects projectsports.Service
	Logger   *slog.Logger
}

// Bootstrap wires the whole subsystem from configuration. It returns the
// runtime plus a cleanup function that releases connections and flushes
// telemetry; cleanup is safe to call even when Bootstrap failed midway.
func Bootstrap(ctx context.Context) (*Runtime, func(), error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, func() {}, err
	}

	instruments, shutdownObs, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := instruments.Logger

	cleanups := []func(){func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownObs(shutdownCtx); err != nil {
			logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	repo, tm, cleanupStorage := buildStorage(ctx, cfg, logger)
	cleanups = append(cleanups, cleanupStorage)

	core := projectsapp.NewService(repo, tm)

	cached, cleanupCache := buildCache(ctx, cfg, core, logger)
	cleanups = append(cleanups, cleanupCache)

	service := projectsobs.New(
		cached,
		projectsobs.WithLogger(logger),
		projectsobs.WithTracer(instruments.Tracer("internal.projects.application")),
		projectsobs.WithMeter(instruments.Meter("internal.projects.application")),
	)

	return &Runtime{Projects: service, Logger: logger}, cleanup, nil
}

func buildStorage(ctx context.Context, cfg Config, logger *slog.Logger) (projectsports.Repository, projectsports.TransactionManager, func()) {
	db, cleanup := platformpostgres.TryConnect(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		repo := projectsmemory.NewRepository()
		return repo, projectsmemory.NewTransactionManager(repo), cleanup
	}
	if err := platformmigrations.Run(db); err != nil {
		logger.Warn("failed to run migrations, falling back to in-memory repositories", slog.String("error", err.Error()))
		cleanup()
		repo := projectsmemory.NewRepository()
		return repo, projectsmemory.NewTransactionManager(repo), func() {}
	}
	logger.Info("project repository configured with postgres")
	return projectspostgres.NewRepository(db), projectspostgres.NewTransactionManager(db, logger), cleanup
}

func buildCache(ctx context.Context, cfg Config, core projectsports.Service, logger *slog.Logger) (projectsports.Service, func()) {
	if cfg.CacheDisabled {
		logger.Info("cache disabled via CACHE_DISABLED env")
		return core, func() {}
	}
	client, cleanup := platformredis.TryConnect(ctx, platformredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)

	opts := []sharedcache.Option{sharedcache.WithLogger(logger)}
	if cfg.CacheTTL > 0 {
		opts = append(opts, sharedcache.WithTTL(cfg.CacheTTL))
	}
	// A nil client still yields a valid cache; every call degrades to a miss.
	c := sharedcache.New(client, cfg.CacheNamespace, opts...)
	return projectscache.New(core, c), cleanup
}
