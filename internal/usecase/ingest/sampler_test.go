package ingest

import (
	"math/rand"
	"testing"

	"catchup-feed/internal/config"
	"catchup-feed/internal/domain/entity"
)

func TestSampleRespectsGlobalTargetAndFillsDeficitFromRemainder(t *testing.T) {
	var articles []entity.Article
	for i := 0; i < 50; i++ {
		articles = append(articles, entity.Article{
			Link:       "https://a.example/p0",
			SourceName: "p0-source",
			Tier:       entity.TierP0Curated,
		})
	}
	for i := 0; i < 5; i++ {
		articles = append(articles, entity.Article{
			Link:       "https://a.example/p1",
			SourceName: "p1-source",
			Tier:       entity.TierP1Context,
		})
	}

	metrics := map[string]*entity.FeedMetric{
		"p0-source": {Title: "p0-source"},
		"p1-source": {Title: "p1-source"},
	}

	rng := rand.New(rand.NewSource(1))
	got := Sample(articles, metrics, rng)

	if len(got) > config.StratifiedSampleTarget {
		t.Fatalf("expected at most %d, got %d", config.StratifiedSampleTarget, len(got))
	}

	// P1 has 5 items against a quota of 20: all 5 are kept and the deficit of
	// 15 is drawn from P0's remainder, so P0 ends at its quota plus 15.
	const p1Items = 5
	p1Quota := config.TierQuotas[entity.TierP1Context]
	if metrics["p1-source"].CandidateCount != p1Items {
		t.Fatalf("expected p1 bucket fully kept (%d items), got %d", p1Items, metrics["p1-source"].CandidateCount)
	}
	wantP0 := config.TierQuotas[entity.TierP0Curated] + (p1Quota - p1Items)
	if metrics["p0-source"].CandidateCount != wantP0 {
		t.Fatalf("expected p0 quota plus p1 deficit (%d), got %d", wantP0, metrics["p0-source"].CandidateCount)
	}
}
