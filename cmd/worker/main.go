package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"catchup-feed/internal/config"
	"catchup-feed/internal/domain/entity"
	workerPkg "catchup-feed/internal/infra/worker"
	"catchup-feed/internal/usecase/pipeline"
)

func main() {
	logger := initLogger()

	registryDir := os.Getenv("REGISTRY_DIR")
	if registryDir == "" {
		registryDir = "config/sources"
	}

	registry, err := config.LoadRegistry(registryDir)
	if err != nil {
		logger.Error("failed to load source registry", slog.Any("error", err))
		os.Exit(1)
	}

	env := config.LoadEnv(logger)
	if err := env.Validate(); err != nil {
		logger.Error("invalid environment configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadDigestWorkerConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("fetch_concurrency", workerConfig.FetchConcurrency),
		slog.Duration("pipeline_timeout", workerConfig.PipelineTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	startMetricsServer(ctx, logger)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronWorker(logger, registry, env, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// startCronWorker starts the cron scheduler and runs the digest pipeline
// on the configured schedule.
func startCronWorker(logger *slog.Logger, registry *entity.Registry, env config.Env, cfg *workerPkg.DigestWorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runPipelineJob(logger, registry, env, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))
	select {}
}

// runPipelineJob executes a single digest pipeline run with timeout and
// error handling.
func runPipelineJob(logger *slog.Logger, registry *entity.Registry, env config.Env, cfg *workerPkg.DigestWorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	metrics.RecordRun("started")
	logger.Info("pipeline run started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PipelineTimeout)
	defer cancel()

	driver := &pipeline.Driver{
		Registry:         registry,
		Env:              env,
		FetchConcurrency: cfg.FetchConcurrency,
	}

	result, err := driver.Run(ctx)
	if err != nil {
		logger.Error("pipeline run failed", slog.Any("error", err))
		metrics.RecordRun("failure")
		metrics.RecordDuration(time.Since(startTime).Seconds())
		return
	}

	metrics.RecordRun("success")
	metrics.RecordDuration(time.Since(startTime).Seconds())
	metrics.RecordSourcesProcessed(result.SourcesProcessed)
	metrics.RecordArticlesSelected(result.FinalSlateSize)
	metrics.RecordLastSuccess()

	logger.Info("pipeline run completed",
		slog.Int("sources_processed", result.SourcesProcessed),
		slog.Int("candidates_found", result.CandidatesFound),
		slog.Int("final_slate_size", result.FinalSlateSize),
		slog.String("markdown_path", result.MarkdownPath),
		slog.Duration("duration", time.Since(startTime)),
	)
}
