package selection

import (
	"sort"

	"catchup-feed/internal/domain/entity"
)

// DiversityResult is the Diversity Selector's output: the chosen slate, in
// selection order, plus the final per-topic distribution (spec.md §4.8
// phase 3).
type DiversityResult struct {
	Slate       []entity.Article
	Distribution map[string]int
}

// Select implements spec.md §4.8's three-phase quota selection. articles
// must already be sorted by evaluate.score descending; dailyTarget bounds
// the total slate size.
func Select(articles []entity.Article, quotas entity.DiversityQuotas, dailyTarget int) DiversityResult {
	taken := make([]bool, len(articles))
	var slate []entity.Article
	counts := make(map[string]int)

	byTopic := make(map[string][]int)
	for i, a := range articles {
		byTopic[topicOf(a)] = append(byTopic[topicOf(a)], i)
	}

	// Phase 1: satisfy declared minimums, highest-scored-within-topic first.
	topics := sortedKeys(quotas.Min)
	for _, topic := range topics {
		min := quotas.Min[topic]
		indices := byTopic[topic]
		sort.SliceStable(indices, func(i, j int) bool {
			return scoreOf(&articles[indices[i]]) > scoreOf(&articles[indices[j]])
		})
		for _, idx := range indices {
			if counts[topic] >= min {
				break
			}
			if len(slate) >= dailyTarget {
				break
			}
			if taken[idx] {
				continue
			}
			taken[idx] = true
			slate = append(slate, articles[idx])
			counts[topic]++
		}
	}

	// Phase 2: fill remaining slots from the global score-sorted list,
	// skipping any topic that has reached its declared maximum.
	for i, a := range articles {
		if len(slate) >= dailyTarget {
			break
		}
		if taken[i] {
			continue
		}
		topic := topicOf(a)
		if max, ok := quotas.Max[topic]; ok && counts[topic] >= max {
			continue
		}
		taken[i] = true
		slate = append(slate, a)
		counts[topic]++
	}

	return DiversityResult{Slate: slate, Distribution: counts}
}

func topicOf(a entity.Article) string {
	if a.Evaluate != nil {
		return a.Evaluate.Topic
	}
	return ""
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
