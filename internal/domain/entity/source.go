package entity

// SourceKind enumerates the fetcher dialects a SourceConfig can select.
type SourceKind string

const (
	KindRSS            SourceKind = "rss"
	KindAtom           SourceKind = "atom"
	KindCuratedRSS     SourceKind = "curated_rss"
	KindLink           SourceKind = "link"
	KindCode           SourceKind = "code"
	KindGithubMDFolder SourceKind = "github_md_folder"
	KindGithubJSON     SourceKind = "github_json"
	KindRSSHub         SourceKind = "rsshub"
)

// curatedKinds iff the source kind is one of these, Articles it produces
// get OriginType = curated; otherwise raw.
var curatedKinds = map[SourceKind]bool{
	KindCuratedRSS:     true,
	KindGithubMDFolder: true,
	KindGithubJSON:     true,
}

// OriginFor returns the OriginType a SourceKind's Articles should carry.
func (k SourceKind) OriginFor() OriginType {
	if curatedKinds[k] {
		return OriginCurated
	}
	return OriginRaw
}

// SourceConfig is one entry per feed in the registry.
type SourceConfig struct {
	Title    string     `json:"title"`
	URL      string     `json:"url"`
	Type     SourceKind `json:"type"`
	Tier     Tier       `json:"tier"`
	Category string     `json:"category"`
	Priority string     `json:"priority,omitempty"` // inherited from category if unset

	InputCount  int `json:"input_count,omitempty"`  // default 6
	OutputCount int `json:"output_count,omitempty"` // default 3

	ImageEnable          bool `json:"image_enable,omitempty"`
	ExcludeThreadsLinks  bool `json:"exclude_threads_links,omitempty"`

	// RSSHubPath, combined with GlobalConfig.RSSHubDomain, resolves URL for
	// rsshub-kind sources when URL itself is empty.
	RSSHubPath string `json:"rsshub_path,omitempty"`
}

// WithDefaults returns a copy of the config with zero-valued optional fields
// filled in per spec.md §3/§4.1 defaults.
func (c SourceConfig) WithDefaults() SourceConfig {
	if c.InputCount == 0 {
		c.InputCount = 6
	}
	if c.OutputCount == 0 {
		c.OutputCount = 3
	}
	return c
}

// PenaltyRule is one entry of GlobalConfig.Selection.Scoring.Penalties.
type PenaltyRule struct {
	Keywords []string `json:"keywords"`
	Subtract float64  `json:"subtract"`
}

// ContentQuality gates drop_if's quality minima.
type ContentQuality struct {
	SummaryMinChars     int `json:"summary_min_chars"`
	InsightMinFilled    int `json:"insight_min_filled"`
	InsightMinCharsEach int `json:"insight_min_chars_each"`
}

// DropIf is the LLM-tagging hard-drop rule set.
type DropIf struct {
	TopicIn        []string       `json:"topic_in"`
	ImpactLTE      float64        `json:"impact_lte"`
	ProofLTE       float64        `json:"proof_lte"`
	ContentQuality ContentQuality `json:"content_quality"`
}

// Recency configures the scorer's time-decay half life.
type Recency struct {
	HalfLifeHours float64 `json:"half_life_hours"`
}

// Scoring groups the scorer's recency and penalty configuration.
type Scoring struct {
	Recency   Recency       `json:"recency"`
	Penalties []PenaltyRule `json:"penalties"`
}

// DiversityQuotas holds per-topic minimum/maximum slate counts.
type DiversityQuotas struct {
	Min map[string]int `json:"min"`
	Max map[string]int `json:"max"`
}

// Selection groups the scoring/diversity/llm-tagging sub-configs.
type Selection struct {
	Scoring         Scoring         `json:"scoring"`
	DiversityQuotas DiversityQuotas `json:"diversity_quotas"`
	LLMTagging      struct {
		DropIf DropIf `json:"drop_if"`
	} `json:"llm_tagging"`
}

// Deduplication configures the Deduplicator.
type Deduplication struct {
	Enabled             bool     `json:"enabled"`
	CanonicalURLFields   []string `json:"canonical_url_fields"`
}

// GlobalConfig is the registry's "configuration" block.
type GlobalConfig struct {
	DailyTarget   int           `json:"daily_target"`
	Selection     Selection     `json:"selection"`
	Deduplication Deduplication `json:"deduplication"`
	RSSHubDomain  string        `json:"rsshub_domain"`
}

// WithDefaults fills zero-valued optional fields per spec.md §3 defaults.
func (g GlobalConfig) WithDefaults() GlobalConfig {
	if g.DailyTarget == 0 {
		g.DailyTarget = 12
	}
	if g.Selection.Scoring.Recency.HalfLifeHours == 0 {
		g.Selection.Scoring.Recency.HalfLifeHours = 36
	}
	return g
}

// CategoryGroup is one entry of the registry's "categories" array.
type CategoryGroup struct {
	Category string         `json:"category"`
	Priority string         `json:"priority"`
	Items    []SourceConfig `json:"items"`
}

// Registry is the fully parsed and merged source registry.
type Registry struct {
	Categories    []CategoryGroup `json:"categories"`
	Configuration GlobalConfig    `json:"configuration"`
}

// Sources flattens the registry into a single ordered list of SourceConfig,
// with category/priority inherited and defaults applied, and rsshub URLs
// resolved against the global rsshub_domain.
func (r *Registry) Sources() []SourceConfig {
	var out []SourceConfig
	for _, grp := range r.Categories {
		for _, item := range grp.Items {
			sc := item.WithDefaults()
			if sc.Category == "" {
				sc.Category = grp.Category
			}
			if sc.Priority == "" {
				sc.Priority = grp.Priority
			}
			if sc.URL == "" && sc.RSSHubPath != "" {
				sc.URL = r.Configuration.RSSHubDomain + sc.RSSHubPath
			}
			out = append(out, sc)
		}
	}
	return out
}
