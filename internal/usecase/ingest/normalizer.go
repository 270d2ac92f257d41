// Package ingest implements the Normalizer, Recency Filter, and Stratified
// Sampler pipeline stages (spec.md §4.4 and the normalization invariants
// of §3), applied by the driver across every fetcher's output.
package ingest

import "catchup-feed/internal/domain/entity"

// Normalize enforces the Article invariants spec.md §3 names for every
// fetcher's output: a resolvable link and a summary of at least 10
// characters. Articles failing either are dropped silently — the
// fetchers already log the richer reason when they know it.
func Normalize(articles []entity.Article) []entity.Article {
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if !a.HasResolvableLink() {
			continue
		}
		if len(a.Summary) < 10 {
			continue
		}
		out = append(out, a)
	}
	return out
}
