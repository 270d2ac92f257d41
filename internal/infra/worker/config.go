package worker

import (
	"catchup-feed/internal/pkg/config"
	"fmt"
	"log/slog"
	"time"
)

// DigestWorkerConfig holds the configuration for the scheduled digest run:
// cron schedule, timezone, per-run timeout, fetch concurrency, and the
// health check port. Grounded on the teacher's WorkerConfig, generalized
// from crawl-job scheduling to the daily digest pipeline.
type DigestWorkerConfig struct {
	// CronSchedule is the cron expression for job scheduling.
	// Default: "30 5 * * *" (5:30 AM).
	CronSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Default: "Asia/Seoul", matching the pipeline's publication timezone.
	Timezone string

	// FetchConcurrency bounds the optional parallel per-source fetch
	// spec.md §5 allows ("an implementation MAY parallelize per-source
	// fetchers safely"). Range: 1-50. Default: 1 (sequential, per spec.md
	// §5's default scheduling model).
	FetchConcurrency int

	// PipelineTimeout is the maximum duration for a single digest run.
	// Default: 30 minutes.
	PipelineTimeout time.Duration

	// HealthPort is the port for the liveness/readiness HTTP server.
	// Default: 9091.
	HealthPort int
}

// DefaultDigestWorkerConfig returns production-ready defaults.
func DefaultDigestWorkerConfig() DigestWorkerConfig {
	return DigestWorkerConfig{
		CronSchedule:     "30 5 * * *",
		Timezone:         "Asia/Seoul",
		FetchConcurrency: 1,
		PipelineTimeout:  30 * time.Minute,
		HealthPort:       9091,
	}
}

// Validate checks the configuration values, aggregating all errors.
func (c *DigestWorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.FetchConcurrency, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("fetch concurrency: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.PipelineTimeout); err != nil {
		errs = append(errs, fmt.Errorf("pipeline timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadDigestWorkerConfigFromEnv loads configuration from environment
// variables with fail-open fallback to defaults, per the teacher's
// LoadConfigFromEnv pattern.
//
// Environment variables:
//   - CRON_SCHEDULE (default "30 5 * * *")
//   - WORKER_TIMEZONE (default "Asia/Seoul")
//   - FETCH_CONCURRENCY (default 1)
//   - PIPELINE_TIMEOUT (default "30m")
//   - WORKER_HEALTH_PORT (default 9091)
func LoadDigestWorkerConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*DigestWorkerConfig, error) {
	cfg := DefaultDigestWorkerConfig()
	fallbackApplied := false

	warn := func(field string, result config.ConfigLoadResult, metricField string) {
		if !result.FallbackApplied {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(metricField)
		metrics.RecordFallback(metricField, "default")
		for _, w := range result.Warnings {
			logger.Warn("configuration fallback applied", slog.String("field", field), slog.String("warning", w))
		}
	}

	result := config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	warn("CronSchedule", result, "cron_schedule")

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	warn("Timezone", result, "timezone")

	result = config.LoadEnvInt("FETCH_CONCURRENCY", cfg.FetchConcurrency, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.FetchConcurrency = result.Value.(int)
	warn("FetchConcurrency", result, "fetch_concurrency")

	result = config.LoadEnvDuration("PIPELINE_TIMEOUT", cfg.PipelineTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 4*time.Hour)
	})
	cfg.PipelineTimeout = result.Value.(time.Duration)
	warn("PipelineTimeout", result, "pipeline_timeout")

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	warn("HealthPort", result, "health_port")

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
