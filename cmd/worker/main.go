// Command worker consumes report analysis tasks from the queue and runs the
// risk classification pipeline.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/raisa-rms/raisa-backend/internal/adapter/ai/gemini"
	"github.com/raisa-rms/raisa-backend/internal/adapter/observability"
	"github.com/raisa-rms/raisa-backend/internal/adapter/queue/redpanda"
	"github.com/raisa-rms/raisa-backend/internal/adapter/repo/postgres"
	"github.com/raisa-rms/raisa-backend/internal/config"
	"github.com/raisa-rms/raisa-backend/internal/service/ratelimiter"
)

const consumerGroup = "raisa-analysis-workers"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":9090", mux); err != nil {
			slog.Error("worker metrics server error", slog.Any("error", err))
		}
	}()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Startup infra connections retry with backoff; pipeline errors never do.
	connectBackoff := func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = cfg.ConnectMaxElapsedTime
		return backoff.WithContext(b, ctx)
	}

	var pool *pgxpool.Pool
	err = backoff.Retry(func() error {
		var err error
		pool, err = postgres.NewPool(ctx, cfg.DBURL)
		return err
	}, connectBackoff())
	if err != nil {
		slog.Error("database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = rdb.Close() }()
	var limiter ratelimiter.Limiter
	if cfg.GeminiCallsPerMin > 0 {
		limiter = ratelimiter.NewRedisLuaLimiter(rdb, map[string]ratelimiter.BucketConfig{
			gemini.LimiterKey: ratelimiter.NewBucketConfigFromPerMinute(cfg.GeminiCallsPerMin),
		})
	}
	aicl := gemini.New(cfg.AIKey(), cfg.GeminiModel, limiter)

	jobRepo := postgres.NewAnalysisJobRepo(pool)
	consultantRepo := postgres.NewConsultantRepo(pool)
	resultRepo := postgres.NewAnalysisResultRepo(pool)

	var consumer *redpanda.Consumer
	err = backoff.Retry(func() error {
		var err error
		consumer, err = redpanda.NewConsumer(cfg.KafkaBrokers, consumerGroup, jobRepo, consultantRepo, resultRepo, aicl)
		return err
	}, connectBackoff())
	if err != nil {
		slog.Error("redpanda consumer init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			slog.Error("failed to close consumer", slog.Any("error", err))
		}
	}()

	slog.Info("worker starting", slog.String("env", cfg.AppEnv), slog.String("group", consumerGroup))
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		slog.Error("consumer error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("worker stopped")
}
