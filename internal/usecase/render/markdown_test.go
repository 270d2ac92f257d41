package render

import (
	"strings"
	"testing"
	"time"

	"catchup-feed/internal/domain/entity"
)

func sampleArticle() entity.Article {
	return entity.Article{
		Link: "https://a.example/1",
		Date: time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC),
		Evaluate: &entity.Evaluation{
			Title:         "GPT-5 Released",
			Tags:          []string{"ai", "llm"},
			Summary:       "A new model ships today.",
			WhyItMatters:  "it changes the baseline",
			KeyEvidence:   "benchmark numbers published",
			WhoShouldCare: "ML engineers",
			NextAction:    "evaluate in your pipeline",
			Comparison:    "faster than the prior release",
		},
	}
}

// Renderer determinism (spec.md §8 invariant 6): same input, byte-identical
// output.
func TestRenderDeterministic(t *testing.T) {
	articles := []entity.Article{sampleArticle()}
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)

	first := Render(articles, now)
	second := Render(articles, now)

	if first != second {
		t.Fatalf("expected identical renders, got:\n%s\n---\n%s", first, second)
	}
}

func TestRenderIncludesFrontMatterAndGuide(t *testing.T) {
	articles := []entity.Article{sampleArticle()}
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)

	out := Render(articles, now)

	if !strings.Contains(out, `title: "Daily News #2026-07-30"`) {
		t.Fatalf("missing title front-matter: %s", out)
	}
	if !strings.Contains(out, "> - GPT-5 Released") {
		t.Fatalf("missing daily guide entry: %s", out)
	}
	if !strings.Contains(out, "### GPT-5 Released") {
		t.Fatalf("missing article heading: %s", out)
	}
}

func TestRenderEmptyTagsUsesEmptyArray(t *testing.T) {
	a := sampleArticle()
	a.Evaluate.Tags = nil
	out := Render([]entity.Article{a}, time.Now())
	if !strings.Contains(out, "tags: []") {
		t.Fatalf("expected empty tags array, got: %s", out)
	}
}

func TestFilePath(t *testing.T) {
	date := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	got := FilePath("/repo/src/content/blog", date)
	want := "/repo/src/content/blog/dailyNews_2026-07-30.md"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
