package ingest

import (
	"math/rand"
	"sort"

	"catchup-feed/internal/config"
	"catchup-feed/internal/domain/entity"
)

// Sample caps the global candidate set to config.StratifiedSampleTarget
// before LLM evaluation (spec.md §4.4): articles are bucketed by tier, each
// tier capped at its config.TierQuotas quota via a uniform random draw, and
// any quota a tier leaves unfilled is carried forward as a proportional
// draw from the pooled remainder across all tiers.
//
// metrics, keyed by source title, has CandidateCount incremented for every
// article that survives the cut.
func Sample(articles []entity.Article, metrics map[string]*entity.FeedMetric, rng *rand.Rand) []entity.Article {
	byTier := make(map[entity.Tier][]entity.Article)
	for _, a := range articles {
		byTier[a.Tier] = append(byTier[a.Tier], a)
	}

	var kept []entity.Article
	var remainder []entity.Article
	deficit := 0

	tiers := sortedTiers(byTier)
	for _, tier := range tiers {
		bucket := byTier[tier]
		quota := config.TierQuotas[tier]
		if quota == 0 {
			quota = len(bucket)
		}

		shuffled := shuffleCopy(bucket, rng)
		if len(shuffled) <= quota {
			kept = append(kept, shuffled...)
			deficit += quota - len(shuffled)
			continue
		}
		kept = append(kept, shuffled[:quota]...)
		remainder = append(remainder, shuffled[quota:]...)
	}

	if deficit > 0 && len(remainder) > 0 {
		shuffled := shuffleCopy(remainder, rng)
		if deficit > len(shuffled) {
			deficit = len(shuffled)
		}
		kept = append(kept, shuffled[:deficit]...)
	}

	if len(kept) > config.StratifiedSampleTarget {
		shuffled := shuffleCopy(kept, rng)
		kept = shuffled[:config.StratifiedSampleTarget]
	}

	for _, a := range kept {
		if m := metrics[a.SourceName]; m != nil {
			m.CandidateCount++
		}
	}
	return kept
}

func sortedTiers(byTier map[entity.Tier][]entity.Article) []entity.Tier {
	tiers := make([]entity.Tier, 0, len(byTier))
	for t := range byTier {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Priority() < tiers[j].Priority() })
	return tiers
}

func shuffleCopy(in []entity.Article, rng *rand.Rand) []entity.Article {
	out := make([]entity.Article, len(in))
	copy(out, in)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
