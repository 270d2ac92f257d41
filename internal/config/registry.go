package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"catchup-feed/internal/domain/entity"
)

// LoadRegistry reads every *.json file directly under dir, merges their
// categories in filename order, and unions their configuration blocks
// (later files win on conflicting keys). A directory with no JSON files,
// or a file that fails to parse, is a ConfigError — the registry is
// mandatory for the pipeline to run at all.
func LoadRegistry(dir string) (*entity.Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &entity.ConfigError{Reason: fmt.Sprintf("reading registry dir %s: %v", dir, err)}
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, &entity.ConfigError{Reason: fmt.Sprintf("no registry JSON files found under %s", dir)}
	}

	merged := &entity.Registry{}
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, &entity.ConfigError{Reason: fmt.Sprintf("reading registry file %s: %v", p, err)}
		}
		var part entity.Registry
		if err := json.Unmarshal(raw, &part); err != nil {
			return nil, &entity.ConfigError{Reason: fmt.Sprintf("parsing registry file %s: %v", p, err)}
		}
		merged.Categories = append(merged.Categories, part.Categories...)
		merged.Configuration = mergeGlobalConfig(merged.Configuration, part.Configuration)
	}

	merged.Configuration = merged.Configuration.WithDefaults()
	return merged, nil
}

// mergeGlobalConfig overlays override on top of base: non-zero scalars and
// non-empty slices/maps in override replace base's. The drop_if block is
// replaced as a whole only when override's topic_in is non-empty, and the
// deduplication block only when override sets enabled.
func mergeGlobalConfig(base, override entity.GlobalConfig) entity.GlobalConfig {
	if override.DailyTarget != 0 {
		base.DailyTarget = override.DailyTarget
	}
	if override.Selection.Scoring.Recency.HalfLifeHours != 0 {
		base.Selection.Scoring.Recency.HalfLifeHours = override.Selection.Scoring.Recency.HalfLifeHours
	}
	if len(override.Selection.Scoring.Penalties) > 0 {
		base.Selection.Scoring.Penalties = override.Selection.Scoring.Penalties
	}
	if len(override.Selection.DiversityQuotas.Min) > 0 {
		base.Selection.DiversityQuotas.Min = override.Selection.DiversityQuotas.Min
	}
	if len(override.Selection.DiversityQuotas.Max) > 0 {
		base.Selection.DiversityQuotas.Max = override.Selection.DiversityQuotas.Max
	}
	if len(override.Selection.LLMTagging.DropIf.TopicIn) > 0 {
		base.Selection.LLMTagging.DropIf = override.Selection.LLMTagging.DropIf
	}
	if override.Deduplication.Enabled {
		base.Deduplication = override.Deduplication
	}
	if override.RSSHubDomain != "" {
		base.RSSHubDomain = override.RSSHubDomain
	}
	return base
}
