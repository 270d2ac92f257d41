package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceConfig_Struct(t *testing.T) {
	src := SourceConfig{
		Title:    "Test Source",
		URL:      "https://example.com/feed.xml",
		Type:     KindRSS,
		Tier:     TierP2Raw,
		Category: "general",
	}

	assert.Equal(t, "Test Source", src.Title)
	assert.Equal(t, "https://example.com/feed.xml", src.URL)
	assert.Equal(t, KindRSS, src.Type)
	assert.Equal(t, TierP2Raw, src.Tier)
	assert.Equal(t, "general", src.Category)
}

func TestSourceConfig_ZeroValue(t *testing.T) {
	var src SourceConfig

	assert.Equal(t, "", src.Title)
	assert.Equal(t, "", src.URL)
	assert.Equal(t, SourceKind(""), src.Type)
	assert.Equal(t, 0, src.InputCount)
	assert.Equal(t, 0, src.OutputCount)
}

func TestSourceConfig_WithDefaults(t *testing.T) {
	src := SourceConfig{Title: "No overrides"}.WithDefaults()

	assert.Equal(t, 6, src.InputCount)
	assert.Equal(t, 3, src.OutputCount)
}

func TestSourceConfig_WithDefaultsPreservesExplicitValues(t *testing.T) {
	src := SourceConfig{InputCount: 20, OutputCount: 5}.WithDefaults()

	assert.Equal(t, 20, src.InputCount)
	assert.Equal(t, 5, src.OutputCount)
}

func TestSourceKind_OriginFor(t *testing.T) {
	assert.Equal(t, OriginCurated, KindCuratedRSS.OriginFor())
	assert.Equal(t, OriginCurated, KindGithubMDFolder.OriginFor())
	assert.Equal(t, OriginCurated, KindGithubJSON.OriginFor())
	assert.Equal(t, OriginRaw, KindRSS.OriginFor())
	assert.Equal(t, OriginRaw, KindAtom.OriginFor())
	assert.Equal(t, OriginRaw, KindLink.OriginFor())
	assert.Equal(t, OriginRaw, KindRSSHub.OriginFor())
}

func TestGlobalConfig_WithDefaults(t *testing.T) {
	cfg := GlobalConfig{}.WithDefaults()

	assert.Equal(t, 12, cfg.DailyTarget)
	assert.Equal(t, 36.0, cfg.Selection.Scoring.Recency.HalfLifeHours)
}

func TestGlobalConfig_WithDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := GlobalConfig{DailyTarget: 20}.WithDefaults()
	cfg.Selection.Scoring.Recency.HalfLifeHours = 48

	assert.Equal(t, 20, cfg.DailyTarget)
	assert.Equal(t, 48.0, cfg.Selection.Scoring.Recency.HalfLifeHours)
}

func TestRegistry_SourcesInheritsCategoryAndPriority(t *testing.T) {
	registry := Registry{
		Categories: []CategoryGroup{
			{
				Category: "model",
				Priority: "P1_CONTEXT",
				Items: []SourceConfig{
					{Title: "A", URL: "https://a.example.com/feed"},
					{Title: "B", URL: "https://b.example.com/feed", Category: "override"},
				},
			},
		},
	}

	sources := registry.Sources()

	assert.Len(t, sources, 2)
	assert.Equal(t, "model", sources[0].Category)
	assert.Equal(t, "P1_CONTEXT", sources[0].Priority)
	assert.Equal(t, "override", sources[1].Category)
}

func TestRegistry_SourcesResolvesRSSHubURL(t *testing.T) {
	registry := Registry{
		Categories: []CategoryGroup{
			{
				Category: "social",
				Items: []SourceConfig{
					{Title: "Hub Source", Type: KindRSSHub, RSSHubPath: "/twitter/user/foo"},
				},
			},
		},
		Configuration: GlobalConfig{RSSHubDomain: "https://rsshub.example.com"},
	}

	sources := registry.Sources()

	assert.Len(t, sources, 1)
	assert.Equal(t, "https://rsshub.example.com/twitter/user/foo", sources[0].URL)
}

func TestRegistry_SourcesAppliesInputOutputDefaults(t *testing.T) {
	registry := Registry{
		Categories: []CategoryGroup{
			{Category: "general", Items: []SourceConfig{{Title: "Default Source"}}},
		},
	}

	sources := registry.Sources()

	assert.Len(t, sources, 1)
	assert.Equal(t, 6, sources[0].InputCount)
	assert.Equal(t, 3, sources[0].OutputCount)
}
