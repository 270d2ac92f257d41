package fetch

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"catchup-feed/internal/config"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// RSSFetcher implements the rss/atom/curated_rss/rsshub source kinds
// (spec.md §4.1), grounded on internal/infra/scraper/rss.go's gofeed
// wiring, generalized with freshness filtering, media extraction, and the
// focus pre-score top-K cut (spec.md §4.3).
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	focusKeywords  []string
	nofocusKeywords []string
}

// NewRSSFetcher builds an RSSFetcher seeded with the focus/nofocus
// keyword lists (loaded once and read-only per spec.md §5).
func NewRSSFetcher(focusKeywords, nofocusKeywords []string) *RSSFetcher {
	return &RSSFetcher{
		client:          &http.Client{Timeout: 10 * time.Second},
		circuitBreaker:  circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:     retry.FeedFetchConfig(),
		focusKeywords:   focusKeywords,
		nofocusKeywords: nofocusKeywords,
	}
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func stripHTML(s string) string {
	unescaped := html.UnescapeString(s)
	plain := htmlTagPattern.ReplaceAllString(unescaped, " ")
	return strings.Join(strings.Fields(plain), " ")
}

// Fetch parses the feed, normalizes each entry into an Article, drops
// stale/unresolvable ones, extracts media when enabled, then applies the
// per-source focus pre-score top-K cut.
func (f *RSSFetcher) Fetch(ctx context.Context, cfg entity.SourceConfig) ([]entity.Article, error) {
	items, err := f.parseFeed(ctx, cfg.URL)
	if err != nil {
		slog.Warn("rss fetch failed", slog.String("source", cfg.Title), slog.Any("error", err))
		return nil, nil
	}

	now := time.Now()
	var candidates []entity.Article
	for _, item := range items {
		link := resolveLink(item)
		if link == "" {
			slog.Warn("rss entry has no resolvable link, skipping", slog.String("source", cfg.Title))
			continue
		}

		pubAt := resolvePublished(item, now)
		if now.Sub(pubAt) > config.FreshnessWindowHours*time.Hour {
			continue
		}

		summary := stripHTML(item.Description)
		if item.Content != "" {
			summary = stripHTML(item.Content)
		}
		if len(summary) < 10 {
			continue
		}

		article := entity.Article{
			Link:       link,
			Title:      item.Title,
			Summary:    summary,
			Date:       pubAt.In(seoulLocation),
			OriginType: cfg.Type.OriginFor(),
			Tier:       cfg.Tier,
			Category:   cfg.Category,
			SourceName: cfg.Title,
			Config:     &cfg,
		}

		if cfg.ImageEnable {
			article.CoverURL = primaryMediaFromFeedItem(item)
			if article.CoverURL == "" {
				article.CoverURL = fetchPageLeadImage(ctx, f.client, link)
			}
		}

		candidates = append(candidates, article)
	}

	if len(candidates) > cfg.InputCount {
		candidates = candidates[:cfg.InputCount]
	}

	for i := range candidates {
		candidates[i].FocusScore = focusScore(candidates[i], f.focusKeywords, f.nofocusKeywords)
	}

	return topKByFocus(candidates, cfg.OutputCount), nil
}

func resolveLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if item.GUID != "" {
		return item.GUID
	}
	for _, l := range item.Links {
		if l != "" {
			return l
		}
	}
	return ""
}

func resolvePublished(item *gofeed.Item, fallback time.Time) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return fallback
}

func (f *RSSFetcher) parseFeed(ctx context.Context, feedURL string) ([]*gofeed.Item, error) {
	var items []*gofeed.Item
	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doParse(ctx, feedURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("rss fetch circuit breaker open", slog.String("url", feedURL))
			}
			return err
		}
		items = result.([]*gofeed.Item)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return items, nil
}

func (f *RSSFetcher) doParse(ctx context.Context, feedURL string) ([]*gofeed.Item, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = desktopUserAgent
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, &entity.FetchError{Source: feedURL, Reason: "parsing feed", Err: err}
	}
	return feed.Items, nil
}

// focusScore computes the lexical pre-score (spec.md §4.3): title, summary,
// category, and channel title concatenated and lowercased.
func focusScore(a entity.Article, focus, nofocus []string) int {
	text := strings.ToLower(a.Title + " " + a.Summary + " " + a.Category + " " + a.SourceName)
	score := 0
	for _, kw := range focus {
		if strings.Contains(text, strings.ToLower(kw)) {
			score += 2
		}
	}
	for _, kw := range nofocus {
		if strings.Contains(text, strings.ToLower(kw)) {
			score -= 2
		}
	}
	return score
}

// topKByFocus sorts by (focus DESC, date DESC, title DESC), always keeps
// the top item, then keeps items with focus >= threshold up to outputCount
// (spec.md §4.3).
func topKByFocus(candidates []entity.Article, outputCount int) []entity.Article {
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].FocusScore != candidates[j].FocusScore {
			return candidates[i].FocusScore > candidates[j].FocusScore
		}
		if !candidates[i].Date.Equal(candidates[j].Date) {
			return candidates[i].Date.After(candidates[j].Date)
		}
		return candidates[i].Title > candidates[j].Title
	})

	kept := []entity.Article{candidates[0]}
	for _, a := range candidates[1:] {
		if len(kept) >= outputCount {
			break
		}
		if a.FocusScore >= config.FocusThreshold {
			kept = append(kept, a)
		}
	}
	return kept
}
