package worker

import (
	"catchup-feed/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the scheduled digest
// worker: configuration-load health (embedded ConfigMetrics) plus
// per-run counters for the daily pipeline execution. Grounded on the
// teacher's WorkerMetrics, generalized from crawl-job to pipeline-run
// terminology.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp
//   - worker_config_validation_errors_total
//   - worker_config_fallbacks_total
//   - worker_config_fallback_active
//
// Worker-specific metrics:
//   - worker_pipeline_runs_total
//   - worker_pipeline_duration_seconds
//   - worker_pipeline_sources_processed_total
//   - worker_pipeline_articles_selected_total
//   - worker_pipeline_last_success_timestamp
type WorkerMetrics struct {
	*config.ConfigMetrics

	RunsTotal             *prometheus.CounterVec
	RunDurationSeconds    prometheus.Histogram
	SourcesProcessedTotal prometheus.Counter
	ArticlesSelectedTotal prometheus.Counter
	LastSuccessTimestamp  prometheus.Gauge
}

// NewWorkerMetrics builds a WorkerMetrics with every series registered via
// promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_pipeline_runs_total",
			Help: "Total number of digest pipeline runs by status (started/success/failure)",
		}, []string{"status"}),

		RunDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_pipeline_duration_seconds",
			Help:    "Duration of a digest pipeline run in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		SourcesProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_pipeline_sources_processed_total",
			Help: "Total number of registered sources fetched across all runs",
		}),

		ArticlesSelectedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_pipeline_articles_selected_total",
			Help: "Total number of Articles written to the final slate across all runs",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_pipeline_last_success_timestamp",
			Help: "Unix timestamp of the last successful digest pipeline run",
		}),
	}
}

// MustRegister is a no-op retained for API parity: metrics are
// auto-registered via promauto at construction time.
func (m *WorkerMetrics) MustRegister() {}

// RecordRun increments the run counter for the given status.
func (m *WorkerMetrics) RecordRun(status string) {
	m.RunsTotal.WithLabelValues(status).Inc()
}

// RecordDuration observes a run's wall-clock duration in seconds.
func (m *WorkerMetrics) RecordDuration(seconds float64) {
	m.RunDurationSeconds.Observe(seconds)
}

// RecordSourcesProcessed adds count to the cumulative sources-processed total.
func (m *WorkerMetrics) RecordSourcesProcessed(count int) {
	m.SourcesProcessedTotal.Add(float64(count))
}

// RecordArticlesSelected adds count to the cumulative articles-selected total.
func (m *WorkerMetrics) RecordArticlesSelected(count int) {
	m.ArticlesSelectedTotal.Add(float64(count))
}

// RecordLastSuccess stamps LastSuccessTimestamp with the current time.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
