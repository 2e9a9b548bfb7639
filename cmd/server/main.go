// Command server starts the RAISA HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/raisa-rms/raisa-backend/internal/adapter/ai/gemini"
	"github.com/raisa-rms/raisa-backend/internal/adapter/httpserver"
	"github.com/raisa-rms/raisa-backend/internal/adapter/mail"
	"github.com/raisa-rms/raisa-backend/internal/adapter/observability"
	"github.com/raisa-rms/raisa-backend/internal/adapter/queue/redpanda"
	"github.com/raisa-rms/raisa-backend/internal/adapter/repo/postgres"
	tikaext "github.com/raisa-rms/raisa-backend/internal/adapter/textextractor/tika"
	"github.com/raisa-rms/raisa-backend/internal/app"
	"github.com/raisa-rms/raisa-backend/internal/config"
	"github.com/raisa-rms/raisa-backend/internal/priority"
	"github.com/raisa-rms/raisa-backend/internal/service/ratelimiter"
	"github.com/raisa-rms/raisa-backend/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	consultantRepo := postgres.NewConsultantRepo(pool)
	jobRepo := postgres.NewAnalysisJobRepo(pool)
	resultRepo := postgres.NewAnalysisResultRepo(pool)
	vagaRepo := postgres.NewVagaRepo(pool)
	pessoaRepo := postgres.NewPessoaRepo(pool)
	matchRepo := postgres.NewMatchRepo(pool)
	sendRepo := postgres.NewSendRepo(pool)
	emailQueueRepo := postgres.NewEmailQueueRepo(pool)

	if cfg.DataRetentionDays > 0 {
		cleanup := postgres.NewCleanupService(pool, cfg.DataRetentionDays)
		go cleanup.StartPeriodicCleanup(ctx, cfg.CleanupInterval)
		slog.Info("cleanup service started",
			slog.Int("retention_days", cfg.DataRetentionDays),
			slog.Duration("interval", cfg.CleanupInterval))
	}

	producer, err := redpanda.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		slog.Error("redpanda producer connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			slog.Error("failed to close queue producer", slog.Any("error", err))
		}
	}()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = rdb.Close() }()
	var limiter ratelimiter.Limiter
	if cfg.GeminiCallsPerMin > 0 {
		limiter = ratelimiter.NewRedisLuaLimiter(rdb, map[string]ratelimiter.BucketConfig{
			gemini.LimiterKey: ratelimiter.NewBucketConfigFromPerMinute(cfg.GeminiCallsPerMin),
		})
	}
	aicl := gemini.New(cfg.AIKey(), cfg.GeminiModel, limiter)

	weights, err := priority.LoadWeights(cfg.PriorityWeightsPath)
	if err != nil {
		slog.Error("priority weights load failed", slog.Any("error", err))
		os.Exit(1)
	}

	extractor := tikaext.New(cfg.TikaURL)
	mailer := mail.NewResendClient(cfg.ResendAPIKey, cfg.MailFrom, cfg.ResendBaseURL)

	checks := app.BuildReadinessChecks(cfg, pool, rdb)
	srv := &httpserver.Server{
		Cfg:         cfg,
		Analyze:     usecase.NewAnalyzeService(jobRepo, producer),
		Results:     usecase.NewResultService(jobRepo, resultRepo),
		Matching:    usecase.NewMatchingService(matchRepo, pessoaRepo, vagaRepo, aicl),
		Priority:    usecase.NewPriorityService(vagaRepo, aicl, weights),
		Pessoas:     usecase.NewPessoaService(pessoaRepo, vagaRepo, aicl),
		Sends:       usecase.NewSendService(sendRepo, matchRepo, pessoaRepo, vagaRepo, mailer),
		Dashboard:   usecase.NewDashboardService(consultantRepo, vagaRepo, matchRepo, sendRepo, pessoaRepo),
		EmailQueue:  emailQueueRepo,
		Extractor:   extractor,
		DBCheck:     checks.DB,
		RedisCheck:  checks.Redis,
		BrokerCheck: checks.Broker,
		TikaCheck:   checks.Tika,
	}

	handler := app.BuildRouter(cfg, srv)
	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
