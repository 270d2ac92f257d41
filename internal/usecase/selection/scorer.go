// Package selection implements the Scorer, Deduplicator, and Diversity
// Selector pipeline stages (spec.md §4.6–§4.8).
package selection

import (
	"math"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
)

// Recency computes spec.md §4.6's time-decay factor: 5·0.5^(hoursOld/halfLife),
// minus 0.5 if hoursOld > 24, clamped to [0,5].
func Recency(hoursOld, halfLifeHours float64) float64 {
	if halfLifeHours <= 0 {
		halfLifeHours = 36
	}
	recency := 5 * math.Pow(0.5, hoursOld/halfLifeHours)
	if hoursOld > 24 {
		recency -= 0.5
	}
	if recency < 0 {
		recency = 0
	}
	if recency > 5 {
		recency = 5
	}
	return recency
}

// BaseScore computes spec.md §4.6's weighted combination.
func BaseScore(impact, novelty, proof, recency float64) float64 {
	return 0.35*impact + 0.25*novelty + 0.25*proof + 0.15*recency
}

// ApplyPenalties subtracts each matching rule's amount once (first matching
// keyword only per rule), floored at 0, per spec.md §4.6.
func ApplyPenalties(score float64, title, summary string, penalties []entity.PenaltyRule) float64 {
	text := strings.ToLower(title + " " + summary)
	for _, rule := range penalties {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				score -= rule.Subtract
				break
			}
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Score computes an Article's final evaluate.score in place and returns it.
// now is UTC "now"; a.Date must be timezone-aware.
func Score(a *entity.Article, now time.Time, recencyCfg entity.Recency, penalties []entity.PenaltyRule) float64 {
	hoursOld := now.UTC().Sub(a.Date.UTC()).Hours()
	recency := Recency(hoursOld, recencyCfg.HalfLifeHours)
	base := BaseScore(a.Evaluate.Impact, a.Evaluate.Novelty, a.Evaluate.Proof, recency)
	final := ApplyPenalties(base, a.Evaluate.Title, a.Evaluate.Summary, penalties)
	a.Evaluate.Score = final
	return final
}

// DropReason describes why ShouldDrop fired, for QualityDrop logging.
type DropReason string

// ShouldDrop implements spec.md §4.6's hard drop_if rules. drop is false when
// the article survives; reason explains a positive drop.
func ShouldDrop(eval *entity.Evaluation, rules entity.DropIf) (reason DropReason, drop bool) {
	for _, topic := range rules.TopicIn {
		if strings.EqualFold(eval.Topic, topic) {
			return DropReason("topic blacklisted: " + eval.Topic), true
		}
	}
	if eval.Impact <= rules.ImpactLTE {
		return "impact too low", true
	}
	if eval.Proof <= rules.ProofLTE {
		return "proof too low", true
	}

	cq := rules.ContentQuality
	if cq.SummaryMinChars > 0 && len(eval.Summary) < cq.SummaryMinChars {
		return DropReason("summary too short"), true
	}
	if cq.InsightMinFilled > 0 {
		filled := 0
		for _, f := range eval.InsightFields() {
			if len(strings.TrimSpace(f)) >= cq.InsightMinCharsEach {
				filled++
			}
		}
		if filled < cq.InsightMinFilled {
			return DropReason("too few filled insight fields"), true
		}
	}
	return "", false
}
