package metricsout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"catchup-feed/internal/domain/entity"
)

func TestInitCreatesZeroedRecordPerSource(t *testing.T) {
	sources := []entity.SourceConfig{
		{Title: "Feed A", Tier: entity.TierP0Curated, Priority: "high"},
		{Title: "Feed B", Tier: entity.TierP2Raw, Priority: "low"},
	}
	metrics := Init(sources)
	if len(metrics) != 2 {
		t.Fatalf("expected 2 metric records, got %d", len(metrics))
	}
	if metrics["Feed A"].FindCount != 0 || metrics["Feed A"].ReleaseCount != 0 {
		t.Fatalf("expected zeroed record, got %+v", metrics["Feed A"])
	}
}

// Metrics conservation (spec.md §8 invariant 7): release_count <= candidate_count.
func TestRecordReleaseAccumulates(t *testing.T) {
	metrics := Init([]entity.SourceConfig{{Title: "Feed A"}})
	metrics["Feed A"].CandidateCount = 5

	RecordRelease(metrics, "Feed A", 4.2, 1)
	RecordRelease(metrics, "Feed A", 3.1, 3)

	m := metrics["Feed A"]
	if m.ReleaseCount != 2 {
		t.Fatalf("expected release count 2, got %d", m.ReleaseCount)
	}
	if m.ReleaseCount > m.CandidateCount {
		t.Fatal("release_count must not exceed candidate_count")
	}
	if avg := m.AverageReleaseScore(); avg < 3.6 || avg > 3.7 {
		t.Fatalf("unexpected average release score: %f", avg)
	}
}

func TestWriteSortsByTierThenReleaseCountDesc(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.json")

	metrics := map[string]*entity.FeedMetric{
		"low-tier-many":  {Title: "low-tier-many", Tier: entity.TierP2Raw, ReleaseCount: 5},
		"top-tier-few":   {Title: "top-tier-few", Tier: entity.TierP0Curated, ReleaseCount: 1},
		"top-tier-many":  {Title: "top-tier-many", Tier: entity.TierP0Curated, ReleaseCount: 3},
	}

	if err := Write(path, metrics, time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(doc.Feeds) != 3 {
		t.Fatalf("expected 3 feeds, got %d", len(doc.Feeds))
	}
	if doc.Feeds[0].Title != "top-tier-many" {
		t.Fatalf("expected top-tier-many first, got %s", doc.Feeds[0].Title)
	}
	if doc.Feeds[1].Title != "top-tier-few" {
		t.Fatalf("expected top-tier-few second, got %s", doc.Feeds[1].Title)
	}
	if doc.Feeds[2].Title != "low-tier-many" {
		t.Fatalf("expected low-tier-many last, got %s", doc.Feeds[2].Title)
	}
}
