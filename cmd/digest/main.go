// Command digest runs one synchronous daily digest pipeline pass and
// exits, for manual runs and CI (as opposed to cmd/worker's cron loop).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"catchup-feed/internal/config"
	"catchup-feed/internal/usecase/pipeline"
)

func main() {
	registryDir := flag.String("registry", "config/sources", "directory of source registry JSON files")
	concurrency := flag.Int("concurrency", 1, "max number of sources fetched concurrently")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall pipeline run timeout")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	registry, err := config.LoadRegistry(*registryDir)
	if err != nil {
		logger.Error("failed to load source registry", slog.Any("error", err))
		os.Exit(1)
	}

	env := config.LoadEnv(logger)
	if err := env.Validate(); err != nil {
		logger.Error("invalid environment configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	driver := &pipeline.Driver{
		Registry:         registry,
		Env:              env,
		FetchConcurrency: *concurrency,
	}

	start := time.Now()
	result, err := driver.Run(ctx)
	if err != nil {
		logger.Error("pipeline run failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("pipeline run completed",
		slog.Int("sources_processed", result.SourcesProcessed),
		slog.Int("candidates_found", result.CandidatesFound),
		slog.Int("final_slate_size", result.FinalSlateSize),
		slog.String("markdown_path", result.MarkdownPath),
		slog.Any("distribution", result.Distribution),
		slog.Duration("duration", time.Since(start)),
	)
}
