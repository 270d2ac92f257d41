// Package metricsout implements the Metrics Collector (spec.md §4.10): a
// single Metrics object owned by the driver, mutated by the sampler and
// selector, and serialized at the end of a run.
package metricsout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"catchup-feed/internal/domain/entity"
)

// feedOutput is one entry of metrics.json's "feeds" array (spec.md §6).
type feedOutput struct {
	Title          string  `json:"title"`
	Tier           string  `json:"tier"`
	Priority       string  `json:"priority"`
	FindCount      int     `json:"find_count"`
	CandidateCount int     `json:"candidate_count"`
	ReleaseCount   int     `json:"release_count"`
	ReleaseScore   float64 `json:"release_score"`
	RankList       []int   `json:"rank_list"`
}

// document is the on-disk shape of metrics.json.
type document struct {
	GeneratedAt string       `json:"generated_at"`
	Feeds       []feedOutput `json:"feeds"`
}

// Init enumerates every registered source and initializes a zeroed metric
// record, keyed by source title (spec.md §4.10).
func Init(sources []entity.SourceConfig) map[string]*entity.FeedMetric {
	metrics := make(map[string]*entity.FeedMetric, len(sources))
	for _, s := range sources {
		metrics[s.Title] = &entity.FeedMetric{
			Title:    s.Title,
			Tier:     s.Tier,
			Priority: s.Priority,
		}
	}
	return metrics
}

// RecordRelease appends the final score and 1-based slate rank for one
// selected article to its source's metric record.
func RecordRelease(metrics map[string]*entity.FeedMetric, sourceTitle string, score float64, rank int) {
	m, ok := metrics[sourceTitle]
	if !ok {
		return
	}
	m.ReleaseCount++
	m.ReleaseScores = append(m.ReleaseScores, score)
	m.RankList = append(m.RankList, rank)
}

// Write sorts by tier priority then release_count descending and writes
// {generated_at, feeds[]} to path (spec.md §4.10, §6).
func Write(path string, metrics map[string]*entity.FeedMetric, generatedAt time.Time) error {
	feeds := make([]*entity.FeedMetric, 0, len(metrics))
	for _, m := range metrics {
		feeds = append(feeds, m)
	}
	sort.Slice(feeds, func(i, j int) bool {
		if feeds[i].Tier.Priority() != feeds[j].Tier.Priority() {
			return feeds[i].Tier.Priority() < feeds[j].Tier.Priority()
		}
		return feeds[i].ReleaseCount > feeds[j].ReleaseCount
	})

	doc := document{GeneratedAt: generatedAt.Format(time.RFC3339)}
	for _, m := range feeds {
		doc.Feeds = append(doc.Feeds, feedOutput{
			Title:          m.Title,
			Tier:           string(m.Tier),
			Priority:       m.Priority,
			FindCount:      m.FindCount,
			CandidateCount: m.CandidateCount,
			ReleaseCount:   m.ReleaseCount,
			ReleaseScore:   m.AverageReleaseScore(),
			RankList:       m.RankList,
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
