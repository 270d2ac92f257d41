package fetch

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/githubclient"
)

var shortlinkPattern = regexp.MustCompile(`https://t\.co/\S+`)

// TelegramTransformer re-homes Telegram-origin Articles onto their real
// destination (spec.md §4.1 "Telegram-origin transform"): it follows the
// first t.co shortlink in the summary (ignoring quoted lines) and
// re-fetches as `code` if it resolves to github.com, else as `link`.
type TelegramTransformer struct {
	httpClient  *http.Client
	codeFetcher *CodeReadmeFetcher
	webFetcher  *WebPageFetcher
}

// NewTelegramTransformer builds a transformer sharing the GitHub client
// used elsewhere in the pipeline.
func NewTelegramTransformer(gh *githubclient.Client) *TelegramTransformer {
	return &TelegramTransformer{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		codeFetcher: NewCodeReadmeFetcher(gh),
		webFetcher:  NewWebPageFetcher(),
	}
}

// IsTelegramOrigin reports whether an Article's link begins with
// https://t.me/, making it a transform candidate.
func IsTelegramOrigin(a entity.Article) bool {
	return strings.HasPrefix(a.Link, "https://t.me/")
}

// Transform follows the first non-quoted t.co shortlink in a.Summary and
// replaces Link/Summary with the re-fetched destination content. If no
// shortlink is found or the re-fetch yields nothing, the Article is
// returned unchanged.
func (t *TelegramTransformer) Transform(ctx context.Context, a entity.Article) entity.Article {
	shortlink := firstUnquotedShortlink(a.Summary)
	if shortlink == "" {
		return a
	}

	dest := t.resolveDestination(ctx, shortlink)
	if dest == "" {
		return a
	}

	if strings.Contains(dest, "github.com") {
		cfg := entity.SourceConfig{URL: dest, Title: a.SourceName, Type: entity.KindCode, Tier: a.Tier, Category: a.Category, InputCount: 1, OutputCount: 1}
		articles, err := t.codeFetcher.Fetch(ctx, cfg)
		if err == nil && len(articles) > 0 {
			return articles[0]
		}
		return a
	}

	cfg := entity.SourceConfig{URL: dest, Title: a.SourceName, Type: entity.KindLink, Tier: a.Tier, Category: a.Category}
	articles, err := t.webFetcher.Fetch(ctx, cfg)
	if err == nil && len(articles) > 0 {
		return articles[0]
	}
	return a
}

// firstUnquotedShortlink scans line by line, skipping lines beginning
// with ">" (quoted content), and returns the first t.co URL found.
func firstUnquotedShortlink(summary string) string {
	for _, line := range strings.Split(summary, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		if m := shortlinkPattern.FindString(line); m != "" {
			return m
		}
	}
	return ""
}

// resolveDestination follows redirects and returns the final landing URL.
func (t *TelegramTransformer) resolveDestination(ctx context.Context, shortlink string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shortlink, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return ""
}
