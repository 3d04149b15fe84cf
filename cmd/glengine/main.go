package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	"github.com/odyssey-erp/gl-engine/internal/accounting/memstore"
	"github.com/odyssey-erp/gl-engine/internal/app"
	"github.com/odyssey-erp/gl-engine/internal/observability"
	"github.com/odyssey-erp/gl-engine/internal/platform/cache"
	"github.com/odyssey-erp/gl-engine/internal/platform/db"
	"github.com/odyssey-erp/gl-engine/jobs"
	"github.com/odyssey-erp/gl-engine/migrations"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var repos app.Repositories
	if cfg.InMemory() {
		store := memstore.New()
		if err := store.Seed(ctx, logger, time.Now().Year()); err != nil {
			logger.Error("seed memory store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Warn("PG_DSN not set, running on the in-memory store")
		repos = app.MemoryRepositories(store)
	} else {
		if cfg.DBMigrateOnStart {
			if err := db.Migrate(cfg.PGDSN, migrations.FS, logger); err != nil {
				logger.Error("migrate database", slog.Any("error", err))
				os.Exit(1)
			}
		}
		pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.DBMaxConns})
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		repos = app.PostgresRepositories(pool)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.New(ctx, cfg.RedisOptions())
		if err != nil {
			logger.Warn("redis unavailable, integrity snapshots are not cached", slog.Any("error", err))
			redisClient = nil
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
		}
	}

	services := app.NewServices(cfg, repos, logger, metrics, redisClient)
	if cfg.COASeedOnStart && !cfg.InMemory() {
		inserted, err := services.Accounts.Seed(ctx)
		if err != nil {
			logger.Error("seed chart of accounts", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("chart of accounts seeded", slog.Int("inserted", inserted))
	}

	var enqueuer ledger.RebuildEnqueuer
	var jobHandler *jobs.Handler
	if cfg.RedisAddr != "" {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
		client, err := jobs.NewClient(redisOpts)
		if err != nil {
			logger.Error("init job client", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		enqueuer = client
		inspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	params := services.HTTPHandlers(logger, enqueuer)
	params.Config = cfg
	params.Metrics = metrics
	params.JobHandler = jobHandler
	router := app.NewRouter(params)

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
