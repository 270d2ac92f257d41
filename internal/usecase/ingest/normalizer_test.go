package ingest

import (
	"testing"

	"catchup-feed/internal/domain/entity"
)

func TestNormalizeDropsUnresolvableLinkAndShortSummary(t *testing.T) {
	articles := []entity.Article{
		{Link: "https://a.example/1", Summary: "this summary is long enough"},
		{Link: "", Summary: "this summary is long enough"},
		{Link: "https://a.example/2", Summary: "short"},
	}

	got := Normalize(articles)

	if len(got) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(got))
	}
	if got[0].Link != "https://a.example/1" {
		t.Fatalf("unexpected survivor: %+v", got[0])
	}
}
