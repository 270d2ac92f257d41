package selection

import (
	"testing"
	"time"

	"catchup-feed/internal/domain/entity"
)

// S1 (recency boundary): identical impact/novelty/proof, 23h vs 25h old.
// The 23h article must rank strictly above the 25h one.
func TestScoreRecencyBoundary(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	recencyCfg := entity.Recency{HalfLifeHours: 36}

	article23h := &entity.Article{
		Date:     now.Add(-23 * time.Hour),
		Evaluate: &entity.Evaluation{Impact: 5, Novelty: 5, Proof: 5},
	}
	article25h := &entity.Article{
		Date:     now.Add(-25 * time.Hour),
		Evaluate: &entity.Evaluation{Impact: 5, Novelty: 5, Proof: 5},
	}

	score23 := Score(article23h, now, recencyCfg, nil)
	score25 := Score(article25h, now, recencyCfg, nil)

	if score23 <= score25 {
		t.Fatalf("expected 23h score (%f) > 25h score (%f)", score23, score25)
	}
}

func TestApplyPenaltiesSubtractsOncePerRule(t *testing.T) {
	penalties := []entity.PenaltyRule{
		{Keywords: []string{"sponsored", "ad"}, Subtract: 1.5},
	}
	score := ApplyPenalties(5.0, "Sponsored Ad Post", "an ad-filled sponsored article", penalties)
	if score != 3.5 {
		t.Fatalf("expected single 1.5 penalty, got score %f", score)
	}
}

func TestApplyPenaltiesFloorsAtZero(t *testing.T) {
	penalties := []entity.PenaltyRule{{Keywords: []string{"spam"}, Subtract: 10}}
	score := ApplyPenalties(2.0, "spam", "", penalties)
	if score != 0 {
		t.Fatalf("expected floor at 0, got %f", score)
	}
}

// S5 (drop_if content quality).
func TestShouldDropContentQuality(t *testing.T) {
	rules := entity.DropIf{
		ContentQuality: entity.ContentQuality{
			SummaryMinChars:     200,
			InsightMinFilled:    2,
			InsightMinCharsEach: 15,
		},
	}
	eval := &entity.Evaluation{
		Impact:  5,
		Proof:   5,
		Summary: stringOfLen(180),
	}
	_, drop := ShouldDrop(eval, rules)
	if !drop {
		t.Fatal("expected drop for summary shorter than minimum")
	}
}

func TestShouldDropTopicBlacklist(t *testing.T) {
	rules := entity.DropIf{TopicIn: []string{"Sponsored"}}
	eval := &entity.Evaluation{Topic: "sponsored", Impact: 5, Proof: 5, Summary: stringOfLen(300)}
	_, drop := ShouldDrop(eval, rules)
	if !drop {
		t.Fatal("expected drop for blacklisted topic")
	}
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}
