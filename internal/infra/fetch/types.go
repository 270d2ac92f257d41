// Package fetch implements one Source Fetcher per kind named in spec.md
// §4.1: syndicated feeds, web pages, GitHub READMEs, GitHub markdown
// folders, GitHub JSON snapshots, and the Telegram-link transform.
package fetch

import (
	"context"
	"time"

	"catchup-feed/internal/domain/entity"
)

// Fetcher produces an ordered list of Articles for one SourceConfig. Soft
// failures (spec.md §7 FetchError/RateLimitError/ParseError) are logged
// internally and surfaced as a nil/empty slice with a nil error — a
// failing source contributes zero Articles and never aborts the run.
type Fetcher interface {
	Fetch(ctx context.Context, cfg entity.SourceConfig) ([]entity.Article, error)
}

// seoulLocation is the timezone every Article.Date is normalized to
// (spec.md §3). Falls back to UTC if the tzdata is unavailable.
var seoulLocation = loadSeoul()

func loadSeoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.UTC
	}
	return loc
}
