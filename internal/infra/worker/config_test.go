package worker

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestDefaultDigestWorkerConfig(t *testing.T) {
	cfg := DefaultDigestWorkerConfig()

	if cfg.CronSchedule != "30 5 * * *" {
		t.Errorf("expected default cron schedule '30 5 * * *', got %q", cfg.CronSchedule)
	}
	if cfg.Timezone != "Asia/Seoul" {
		t.Errorf("expected default timezone Asia/Seoul, got %q", cfg.Timezone)
	}
	if cfg.FetchConcurrency != 1 {
		t.Errorf("expected default fetch concurrency 1, got %d", cfg.FetchConcurrency)
	}
	if cfg.PipelineTimeout != 30*time.Minute {
		t.Errorf("expected default pipeline timeout 30m, got %v", cfg.PipelineTimeout)
	}
	if cfg.HealthPort != 9091 {
		t.Errorf("expected default health port 9091, got %d", cfg.HealthPort)
	}
}

func TestDigestWorkerConfigValidateValid(t *testing.T) {
	cfg := DefaultDigestWorkerConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestDigestWorkerConfigValidateInvalidCron(t *testing.T) {
	cfg := DefaultDigestWorkerConfig()
	cfg.CronSchedule = "not a cron expression"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for invalid cron schedule")
	}
}

func TestDigestWorkerConfigValidateZeroTimeout(t *testing.T) {
	cfg := DefaultDigestWorkerConfig()
	cfg.PipelineTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero pipeline timeout")
	}
}

func TestDigestWorkerConfigValidateOutOfRangeConcurrency(t *testing.T) {
	cfg := DefaultDigestWorkerConfig()
	cfg.FetchConcurrency = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero fetch concurrency")
	}
}

func TestLoadDigestWorkerConfigFromEnvFallsBackOnInvalid(t *testing.T) {
	os.Setenv("CRON_SCHEDULE", "garbage")
	defer os.Unsetenv("CRON_SCHEDULE")

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	metrics := NewWorkerMetrics()

	cfg, err := LoadDigestWorkerConfigFromEnv(logger, metrics)
	if err != nil {
		t.Fatalf("expected fail-open (no error), got %v", err)
	}
	if cfg.CronSchedule != DefaultDigestWorkerConfig().CronSchedule {
		t.Errorf("expected fallback to default cron schedule, got %q", cfg.CronSchedule)
	}
}
