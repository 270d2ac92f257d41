package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWorkerMetricsInitializesAllSeries(t *testing.T) {
	m := NewWorkerMetrics()
	if m.RunsTotal == nil || m.RunDurationSeconds == nil || m.SourcesProcessedTotal == nil ||
		m.ArticlesSelectedTotal == nil || m.LastSuccessTimestamp == nil {
		t.Fatal("expected all metric series to be initialized")
	}
}

func TestWorkerMetricsRecordRun(t *testing.T) {
	m := NewWorkerMetrics()
	m.RecordRun("success")
	m.RecordRun("success")
	m.RecordRun("failure")

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")); got != 2 {
		t.Fatalf("expected 2 successes, got %f", got)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("failure")); got != 1 {
		t.Fatalf("expected 1 failure, got %f", got)
	}
}

func TestWorkerMetricsRecordSourcesAndArticles(t *testing.T) {
	m := NewWorkerMetrics()
	m.RecordSourcesProcessed(10)
	m.RecordSourcesProcessed(5)
	m.RecordArticlesSelected(12)

	if got := testutil.ToFloat64(m.SourcesProcessedTotal); got != 15 {
		t.Fatalf("expected 15 sources processed, got %f", got)
	}
	if got := testutil.ToFloat64(m.ArticlesSelectedTotal); got != 12 {
		t.Fatalf("expected 12 articles selected, got %f", got)
	}
}

func TestWorkerMetricsRecordLastSuccess(t *testing.T) {
	m := NewWorkerMetrics()
	before := testutil.ToFloat64(m.LastSuccessTimestamp)
	m.RecordLastSuccess()
	after := testutil.ToFloat64(m.LastSuccessTimestamp)
	if after <= before {
		t.Fatalf("expected timestamp to advance: before=%f after=%f", before, after)
	}
}
