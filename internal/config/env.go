// Package config loads the pipeline's runtime configuration: the JSON
// source registry and the environment variables named in spec.md §6.
package config

import (
	"log/slog"
	"os"
	"time"

	"catchup-feed/internal/domain/entity"
	pkgconfig "catchup-feed/internal/pkg/config"
)

// Env holds every environment-variable-driven setting the pipeline reads.
type Env struct {
	GitHubToken string

	RSSCacheEnable bool

	MaxArticleNums int // 0 means "not overridden"

	SummaryLanguage string

	LLMAPIKey   string
	AIProvider  string
	LLMModel    string

	MetricsHTTPAddr string // METRICS_HTTP_ADDR; loaded but not read by anything (cmd/worker's /metrics server listens on METRICS_PORT)
	BlogRoot        string // root of the digest output tree
}

// LoadEnv reads every pipeline environment variable, applying the
// teacher's fallback-with-warning pattern and logging each fallback.
func LoadEnv(logger *slog.Logger) Env {
	logFallback := func(result pkgconfig.ConfigLoadResult) {
		if result.FallbackApplied {
			for _, w := range result.Warnings {
				logger.Warn("config fallback", slog.String("warning", w))
			}
		}
	}

	cacheResult := pkgconfig.LoadEnvBool("RSS_CACHE_ENABLE", false)
	logFallback(cacheResult)

	maxArticlesResult := pkgconfig.LoadEnvInt("MAX_ARTICLE_NUMS", 0, func(v int) error {
		if v < 0 {
			return errNegative
		}
		return nil
	})
	logFallback(maxArticlesResult)

	return Env{
		GitHubToken:     os.Getenv("GITHUB_TOKEN"),
		RSSCacheEnable:  cacheResult.Value.(bool),
		MaxArticleNums:  maxArticlesResult.Value.(int),
		SummaryLanguage: pkgconfig.LoadEnvString("SUMMARY_LANGUAGE", "korean"),
		LLMAPIKey:       os.Getenv("GPT_API_KEY"),
		AIProvider:      pkgconfig.LoadEnvString("AI_PROVIDER", "anthropic"),
		LLMModel:        os.Getenv("GPT_MODEL_NAME"),
		MetricsHTTPAddr: os.Getenv("METRICS_HTTP_ADDR"),
		BlogRoot:        pkgconfig.LoadEnvString("BLOG_ROOT", "."),
	}
}

// Validate enforces the ConfigError-fatal conditions named in spec.md §7:
// missing LLM credentials is fatal, everything else has a safe default.
func (e Env) Validate() error {
	if e.LLMAPIKey == "" {
		return &entity.ConfigError{Reason: "GPT_API_KEY is not set"}
	}
	return nil
}

// RSSArticleCachePath returns the per-day article cache path for now's
// date. Nothing in the pipeline reads or writes this file, and
// RSSCacheEnable is not consulted: every run fetches all sources.
func (e Env) RSSArticleCachePath(now time.Time) string {
	return "workflow/draft/article_cache_" + now.Format("2006-01-02") + ".json"
}

var errNegative = &validationRangeError{"must be >= 0"}

type validationRangeError struct{ msg string }

func (e *validationRangeError) Error() string { return e.msg }
