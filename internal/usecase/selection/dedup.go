package selection

import (
	"net/url"
	"sort"
	"strings"

	"catchup-feed/internal/config"
	"catchup-feed/internal/domain/entity"
)

// CanonicalizeURL implements spec.md §4.7: lowercase scheme+host, drop
// fragment, drop tracking query keys, sort remaining keys. Idempotent.
func CanonicalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		if config.TrackingQueryKeys[key] {
			q.Del(key)
		}
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		for _, v := range q[k] {
			values.Add(k, v)
		}
	}
	u.RawQuery = values.Encode()
	return u.String()
}

// NormalizeTitle implements spec.md §4.7's curated-title normalization:
// lowercase, strip the fixed punctuation set, collapse whitespace.
func NormalizeTitle(title string) string {
	lowered := strings.ToLower(title)
	var b strings.Builder
	for _, r := range lowered {
		if strings.ContainsRune(config.TitleNormalizePunctuation, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// titleSimilarity returns 1.0 for equal normalized titles, else an LCS-based
// ratio: 2·lcsLen / (lenA + lenB).
func titleSimilarity(a, b string) float64 {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0
	}
	lcs := lcsLength(na, nb)
	return 2 * float64(lcs) / float64(len(na)+len(nb))
}

func lcsLength(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Better implements spec.md §4.7's tie-break total order: higher tier
// priority, then curated over raw, then higher confidence, then higher
// score, then first occurrence (incumbent wins ties).
func Better(incumbent, candidate *entity.Article) *entity.Article {
	if incumbent.Tier.Priority() != candidate.Tier.Priority() {
		if candidate.Tier.Priority() < incumbent.Tier.Priority() {
			return candidate
		}
		return incumbent
	}
	incCurated := incumbent.OriginType == entity.OriginCurated
	candCurated := candidate.OriginType == entity.OriginCurated
	if incCurated != candCurated {
		if candCurated {
			return candidate
		}
		return incumbent
	}
	if candidate.Confidence != incumbent.Confidence {
		if candidate.Confidence > incumbent.Confidence {
			return candidate
		}
		return incumbent
	}
	incScore, candScore := scoreOf(incumbent), scoreOf(candidate)
	if candScore != incScore {
		if candScore > incScore {
			return candidate
		}
		return incumbent
	}
	return incumbent
}

func scoreOf(a *entity.Article) float64 {
	if a.Evaluate == nil {
		return 0
	}
	return a.Evaluate.Score
}

// Dedup implements spec.md §4.7. articles must already be sorted by
// evaluate.score descending so "first occurrence" means "highest-scored
// duplicate" (spec.md §5's ordering guarantee). Keyed by canonical URL (and,
// for curated items, by normalized title) rather than object identity, per
// the resolved open question in DESIGN.md.
func Dedup(articles []entity.Article) []entity.Article {
	byURL := make(map[string]int) // canonical URL -> index into out
	var out []entity.Article

	for i := range articles {
		a := articles[i]
		canon := CanonicalizeURL(a.Link)

		if idx, seen := byURL[canon]; seen {
			winner := Better(&out[idx], &a)
			out[idx] = *winner
			continue
		}

		if a.OriginType == entity.OriginCurated {
			if dupIdx := findCuratedTitleDup(out, a); dupIdx >= 0 {
				winner := Better(&out[dupIdx], &a)
				out[dupIdx] = *winner
				byURL[CanonicalizeURL(winner.Link)] = dupIdx
				continue
			}
		}

		out = append(out, a)
		byURL[canon] = len(out) - 1
	}
	return out
}

func findCuratedTitleDup(out []entity.Article, candidate entity.Article) int {
	for i, existing := range out {
		if existing.OriginType != entity.OriginCurated {
			continue
		}
		if titleSimilarity(existing.Title, candidate.Title) >= config.CuratedTitleSimilarityThreshold {
			return i
		}
	}
	return -1
}
