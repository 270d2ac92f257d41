package selection

import (
	"testing"

	"catchup-feed/internal/domain/entity"
)

// S4 (quota min/max): min={Model:3, Agent:2}, max={Model:5}, daily_target=12,
// pool has 10 Model, 4 Agent, 6 Other, all distinct scores.
func TestSelectQuotaMinMax(t *testing.T) {
	var articles []entity.Article
	score := 100.0
	add := func(topic string, n int) {
		for i := 0; i < n; i++ {
			articles = append(articles, entity.Article{
				Link:     topic,
				Evaluate: &entity.Evaluation{Topic: topic, Score: score},
			})
			score--
		}
	}
	add("Model", 10)
	add("Agent", 4)
	add("Other", 6)

	quotas := entity.DiversityQuotas{
		Min: map[string]int{"Model": 3, "Agent": 2},
		Max: map[string]int{"Model": 5},
	}

	result := Select(articles, quotas, 12)

	if len(result.Slate) != 12 {
		t.Fatalf("expected slate of 12, got %d", len(result.Slate))
	}
	if result.Distribution["Model"] != 5 {
		t.Fatalf("expected exactly 5 Model (hit max), got %d", result.Distribution["Model"])
	}
	if result.Distribution["Agent"] < 2 {
		t.Fatalf("expected at least 2 Agent, got %d", result.Distribution["Agent"])
	}
}
