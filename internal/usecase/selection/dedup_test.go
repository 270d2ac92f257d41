package selection

import (
	"testing"

	"catchup-feed/internal/domain/entity"
)

func TestCanonicalizeURLIsIdempotentAndDropsTracking(t *testing.T) {
	raw := "HTTPS://Example.COM/post?utm_source=x&b=2&a=1#frag"
	canon := CanonicalizeURL(raw)
	if canon != CanonicalizeURL(canon) {
		t.Fatalf("canonicalization not idempotent: %q vs %q", canon, CanonicalizeURL(canon))
	}
	if got := CanonicalizeURL(raw); got != "https://example.com/post?a=1&b=2" {
		t.Fatalf("unexpected canonical form: %q", got)
	}
}

// S2 (duplicate across tiers): P0_CURATED survives over P2_RAW regardless
// of score.
func TestDedupPrefersHigherTier(t *testing.T) {
	articles := []entity.Article{
		{Link: "https://a.example/x", Tier: entity.TierP2Raw, Evaluate: &entity.Evaluation{Score: 3}},
		{Link: "https://a.example/x", Tier: entity.TierP0Curated, Evaluate: &entity.Evaluation{Score: 1}},
	}
	got := Dedup(articles)
	if len(got) != 1 {
		t.Fatalf("expected exactly one survivor, got %d", len(got))
	}
	if got[0].Tier != entity.TierP0Curated {
		t.Fatalf("expected P0_CURATED survivor, got %s", got[0].Tier)
	}
}

// S3 (curated title fuzz): different canonical URLs, similar titles.
func TestDedupCuratedTitleFuzz(t *testing.T) {
	articles := []entity.Article{
		{
			Link:       "https://a.example/1",
			Title:      "OpenAI Releases GPT-5 Today.",
			OriginType: entity.OriginCurated,
			Tier:       entity.TierP0Curated,
			Evaluate:   &entity.Evaluation{Score: 4},
		},
		{
			Link:       "https://b.example/2",
			Title:      "OpenAI releases GPT-5 today",
			OriginType: entity.OriginCurated,
			Tier:       entity.TierP0Curated,
			Evaluate:   &entity.Evaluation{Score: 5},
		},
	}
	got := Dedup(articles)
	if len(got) != 1 {
		t.Fatalf("expected fuzzy titles to collapse to one survivor, got %d", len(got))
	}
}

func TestTitleSimilarityExactMatch(t *testing.T) {
	if s := titleSimilarity("Hello, World!", "hello world"); s != 1.0 {
		t.Fatalf("expected exact normalized match to score 1.0, got %f", s)
	}
}
