package config

import "catchup-feed/internal/domain/entity"

// FreshnessWindowHours is the default recency cutoff (spec.md §2, §3).
const FreshnessWindowHours = 36

// FocusThreshold is the default per-source top-K focus cutoff (spec.md §4.3).
const FocusThreshold = 0

// TierQuotas caps the global candidate set per tier before LLM evaluation
// (spec.md §4.4). Configuration-worthy per §9 design notes, but the spec
// does not expose it in the registry schema, so it lives as package data
// here rather than in entity.GlobalConfig.
var TierQuotas = map[entity.Tier]int{
	entity.TierP0Curated: 30,
	entity.TierP0Release: 12,
	entity.TierP1Context: 20,
	entity.TierP2Raw:     20,
	entity.TierCommunity: 18,
}

// StratifiedSampleTarget is the default global candidate cap (spec.md §4.4).
const StratifiedSampleTarget = 100

// TrackingQueryKeys are dropped during URL canonicalization (spec.md §4.7).
// Exposed as data, not code, per the §9 design note.
var TrackingQueryKeys = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"ref":          true,
	"source":       true,
	"fbclid":       true,
	"gclid":        true,
	"msclkid":      true,
}

// TitleNormalizePunctuation is stripped during dedup title normalization
// (spec.md §4.7).
const TitleNormalizePunctuation = `.,!?;:()[]{}""''—–-`

// CuratedTitleSimilarityThreshold is the dedup collision cutoff for curated
// items' fuzzy title match (spec.md §4.7).
const CuratedTitleSimilarityThreshold = 0.85

// DefaultFocusKeywords and DefaultNoFocusKeywords seed the focus
// pre-scorer's keyword lists when the registry does not override them.
// Loaded once and read-only thereafter (spec.md §5).
var DefaultFocusKeywords = []string{
	"ai", "llm", "gpt", "claude", "gemini", "agent", "model", "release",
	"open source", "오픈소스", "출시", "공개",
}

var DefaultNoFocusKeywords = []string{
	"sponsored", "advertisement", "webinar", "광고",
}
