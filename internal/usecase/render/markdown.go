// Package render implements the Renderer (spec.md §4.9): it turns a final
// Article slate into the daily markdown digest, grounded on
// original_source/_pipeline_reference/workflow/article/blog.py.
package render

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
)

// insightField is one of the five facets the renderer samples from,
// paired with its fixed Korean template.
type insightField struct {
	key      string
	value    string
	template string
}

// FilePath returns the destination path for a day's digest, per spec.md §6.
func FilePath(blogRoot string, date time.Time) string {
	return fmt.Sprintf("%s/dailyNews_%s.md", blogRoot, date.Format("2006-01-02"))
}

// Render builds the complete markdown document for the final slate, in
// slate order (spec.md §5's "renderer preserves selection order").
func Render(articles []entity.Article, generatedAt time.Time) string {
	titles := make([]string, 0, len(articles))
	var tags []string
	for _, a := range articles {
		if a.Evaluate != nil {
			titles = append(titles, a.Evaluate.Title)
			tags = append(tags, a.Evaluate.Tags...)
		}
	}

	var b strings.Builder
	b.WriteString(frontMatter(generatedAt, titles, tags))
	b.WriteString(dailyGuide(titles))
	for _, a := range articles {
		b.WriteString(articleSection(a))
	}
	return b.String()
}

func frontMatter(generatedAt time.Time, titles, tags []string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: \"Daily News #%s\"\n", generatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "date: \"%s\"\n", generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "description: \"%s\"\n", strings.Join(titles, "\n"))
	if len(tags) == 0 {
		b.WriteString("tags: []\n")
	} else {
		b.WriteString("tags: \n")
		for _, tag := range uniqueSorted(tags) {
			fmt.Fprintf(&b, "- \"%s\"\n", strings.ReplaceAll(tag, "/", "_"))
		}
	}
	b.WriteString("---\n")
	return b.String()
}

func uniqueSorted(in []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func dailyGuide(titles []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, t := range titles {
		fmt.Fprintf(&b, "> - %s\n", t)
	}
	b.WriteString("\n")
	return b.String()
}

func articleSection(a entity.Article) string {
	if a.Evaluate == nil {
		return ""
	}

	cover := ""
	if a.CoverURL != "" {
		cover = fmt.Sprintf("![](%s)", a.CoverURL)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n### %s\n", a.Evaluate.Title)
	fmt.Fprintf(&b, "발행시간: %s\n", a.Date.Format("2006-01-02 15:04:05"))
	if cover != "" {
		b.WriteString(cover + "\n")
	}
	b.WriteString(a.Evaluate.Summary + "\n")
	b.WriteString(buildInsightLines(a))
	return b.String()
}

var insightTemplates = map[string]string{
	"why_it_matters":  "이 소식이 중요한 이유는 %s",
	"key_evidence":    "구체적 근거로 %s",
	"who_should_care": "특히 %s에게 직접적인 도움이 됩니다",
	"next_action":     "이후에는 %s",
	"comparison":      "경쟁 대비 차별점은 %s",
}

var insightKeys = []string{"why_it_matters", "key_evidence", "who_should_care", "next_action", "comparison"}

// buildInsightLines samples a random 3 of the 5 insight fields per spec.md
// §4.9, seeded by title⊕"-"⊕date so the output is reproducible.
func buildInsightLines(a entity.Article) string {
	if a.Evaluate == nil {
		return ""
	}

	fields := a.Evaluate.InsightFields()
	var available []insightField
	for i, key := range insightKeys {
		if strings.TrimSpace(fields[i]) == "" {
			continue
		}
		available = append(available, insightField{key: key, value: fields[i], template: insightTemplates[key]})
	}
	if len(available) == 0 {
		return ""
	}

	seed := seedFromString(fmt.Sprintf("%s-%s", a.Evaluate.Title, a.Date.Format("2006-01-02 15:04:05")))
	rng := rand.New(rand.NewSource(seed))

	sampleCount := 3
	if len(available) < sampleCount {
		sampleCount = len(available)
	}
	indices := rng.Perm(len(available))[:sampleCount]

	var sentences []string
	for _, idx := range indices {
		f := available[idx]
		sentence := strings.TrimSpace(fmt.Sprintf(f.template, f.value))
		if !strings.HasSuffix(sentence, "다.") && !strings.HasSuffix(sentence, "다") {
			sentence = strings.TrimRight(sentence, ".") + "."
		}
		sentences = append(sentences, sentence)
	}

	return "\n" + strings.Join(sentences, "\n") + "\n"
}

// seedFromString derives a deterministic int64 seed from an arbitrary
// string so the insight RNG is reproducible given the same title+date
// (spec.md §8 invariant 6, §9 design note).
func seedFromString(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
