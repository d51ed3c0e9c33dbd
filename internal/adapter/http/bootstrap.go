package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"taskapp/internal/adapter/database/memory"
	"taskapp/internal/adapter/database/postgres"
	pgrepo "taskapp/internal/adapter/database/postgres/repository"
	redisdb "taskapp/internal/adapter/database/redis"
	"taskapp/internal/adapter/database/sqlite"
	sqliterepo "taskapp/internal/adapter/database/sqlite/repository"
	"taskapp/internal/adapter/http/middleware"
	"taskapp/internal/adapter/telemetry"
	"taskapp/internal/core/port"
	"taskapp/pkg/config"
)

func StartServer(metrics *telemetry.AppMetrics, logger *config.AppLogger) {
	StartServerWithConfig(metrics, logger, config.GetDefaultConfig())
}

func StartServerWithConfig(metrics *telemetry.AppMetrics, logger *config.AppLogger, cfg *config.AppConfig) {
	ctx := context.Background()

	repo, closeRepo := buildTaskRepository(ctx, cfg)
	defer closeRepo()

	container := NewContainer(repo, logger, metrics)

	var responseCache *middleware.ResponseCache

	if cfg.CacheEnabled {
		cacheRepo := buildCacheRepository(ctx, cfg)
		defer cacheRepo.Close()

		responseCache = middleware.NewResponseCache(cacheRepo, cfg.CacheConfigs, metrics)
	}

	router := SetupRouterWithConfig(container.TaskHandler, metrics, logger, cfg, responseCache)

	slog.Info("Server starting",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"rate_limit_enabled", cfg.RateLimitEnabled,
		"https_enforced", cfg.EnforceHTTPS)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server failed to start", "error", err)
	}
}

// buildTaskRepository picks postgres when DATABASE_URL is set, sqlite
// otherwise.
func buildTaskRepository(ctx context.Context, cfg *config.AppConfig) (port.TaskRepository, func()) {
	if cfg.DatabaseURL != "" {
		db, err := postgres.NewDB(ctx)

		if err != nil {
			slog.Error("Failed to connect to postgres", "error", err)
			panic(err)
		}

		return pgrepo.NewTaskRepository(db), db.Close
	}

	db, err := sqlite.NewDB()

	if err != nil {
		slog.Error("Failed to open sqlite database", "error", err)
		panic(err)
	}

	return sqliterepo.NewTaskRepository(db), func() { db.Close() }
}

func buildCacheRepository(ctx context.Context, cfg *config.AppConfig) port.CacheRepository {
	if cfg.RedisURL != "" {
		repo, err := redisdb.NewCacheRepository(ctx, cfg.RedisURL)

		if err == nil {
			return repo
		}

		slog.Error("Failed to connect to redis, falling back to memory cache", "error", err)
	}

	return memory.NewCacheRepository()
}
