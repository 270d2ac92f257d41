// Package entity defines the core domain entities and validation logic for the
// pipeline: the Article record that flows end to end, the source registry
// types that configure fetchers, and the per-feed metrics record.
package entity

import "time"

// OriginType classifies where an Article came from.
type OriginType string

const (
	OriginRaw     OriginType = "raw"
	OriginCurated OriginType = "curated"
)

// Tier is the priority band assigned per source; it drives stratified
// sampling quotas and dedup tie-breaking.
type Tier string

const (
	TierP0Curated Tier = "P0_CURATED"
	TierP0Release Tier = "P0_RELEASES"
	TierP1Context Tier = "P1_CONTEXT"
	TierP2Raw     Tier = "P2_RAW"
	TierCommunity Tier = "COMMUNITY"
)

// tierPriority orders tiers from highest to lowest for dedup tie-breaking
// and metrics sorting. Lower number wins.
var tierPriority = map[Tier]int{
	TierP0Curated: 0,
	TierP0Release: 1,
	TierP1Context: 2,
	TierP2Raw:     3,
	TierCommunity: 4,
}

// Priority returns the tier's sort priority, highest tier first (lowest int).
// Unknown tiers sort last.
func (t Tier) Priority() int {
	if p, ok := tierPriority[t]; ok {
		return p
	}
	return len(tierPriority)
}

// Evaluation is the LLM-derived per-item evaluation attached to an Article
// after the LLM Evaluator stage. Score is filled in afterward by the Scorer.
type Evaluation struct {
	Link    string   `json:"link"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Topic   string   `json:"topic"`
	Impact  float64  `json:"impact"`
	Novelty float64  `json:"novelty"`
	Proof   float64  `json:"proof"`
	Summary string   `json:"summary"`

	WhyItMatters  string `json:"why_it_matters"`
	KeyEvidence   string `json:"key_evidence"`
	WhoShouldCare string `json:"who_should_care"`
	NextAction    string `json:"next_action"`
	Comparison    string `json:"comparison"`

	// Score is the final weighted score in [0,5], filled in by the Scorer.
	Score float64 `json:"score"`
}

// InsightFields returns the five insight facets in the fixed order the
// renderer samples from.
func (e *Evaluation) InsightFields() [5]string {
	return [5]string{e.WhyItMatters, e.KeyEvidence, e.WhoShouldCare, e.NextAction, e.Comparison}
}

// Article is the unit flowing through the pipeline, from a Source Fetcher
// through scoring, dedup, diversity selection, and rendering.
type Article struct {
	// Identity
	Link string

	// Content
	Title    string
	Summary  string
	CoverURL string

	// Provenance
	Date   time.Time // Asia/Seoul, timezone-aware
	Info   map[string]string
	Config *SourceConfig

	// Classification
	OriginType OriginType
	Tier       Tier

	// Scoring
	FocusScore int
	Evaluate   *Evaluation

	// Source-specific annotations
	Importance int     // curated markdown format (0 means unset, default applied at parse time)
	Confidence float64 // curated JSON snapshot
	Category   string  // curated JSON snapshot / inherited category
	SourceName string  // curated JSON snapshot "source" field, or the feed/channel title
}

// HasResolvableLink reports whether the Article carries a usable identity.
// Articles without one are dropped at normalization time.
func (a *Article) HasResolvableLink() bool {
	return a.Link != ""
}
