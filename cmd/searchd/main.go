package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/api"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/api/cache"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/ingest"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search/index"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "data_dir", cfg.Index.DataDir)

	store, err := index.Open(cfg.Index.DataDir)
	if err != nil {
		slog.Error("failed to open index", "data_dir", cfg.Index.DataDir, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("index opened", "path", store.Path())

	m := metrics.New()
	if count, err := store.DocCount(); err == nil {
		m.IndexDocCount.Set(float64(count))
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis, m)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder *analytics.Recorder
	pgClient, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, search analytics disabled", "error", err)
	} else {
		defer pgClient.Close()
		recorder = analytics.NewRecorder(pgClient, 1000)
		schemaErr := resilience.WithTimeout(ctx, 10*time.Second, "analytics-schema", func(ctx context.Context) error {
			return recorder.EnsureSchema(ctx)
		})
		if schemaErr != nil {
			slog.Warn("analytics schema setup failed, search analytics disabled", "error", schemaErr)
			recorder = nil
		} else {
			recorder.Start(ctx)
			defer recorder.Close()
		}
	}

	var invalidator ingest.CacheInvalidator
	if queryCache != nil {
		invalidator = queryCache
	}
	indexer := ingest.NewIndexer(store, invalidator, m, cfg.Index)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.SearchIngest, indexer.Handle)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("ingest consumer error", "error", err)
		}
	}()
	go indexer.StartFlushLoop(ctx)
	slog.Info("ingest consumer started", "topic", cfg.Kafka.Topics.SearchIngest)

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		count, err := store.DocCount()
		if err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d documents", count)}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := api.New(store, queryCache, recorder, m, cfg.Search.DefaultLimit, cfg.Search.MaxLimit)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)
	chain = middleware.QueryLengthLimit(cfg.Search.MaxQueryBytes)(chain)

	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
