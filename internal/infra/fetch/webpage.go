package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// WebPageFetcher implements the `link` source kind (spec.md §4.1): GET
// with a desktop UA and a 10s timeout, concatenate h1/h2/p/code text, and
// extract primary media. Fails soft to no Articles on any HTTP error.
type WebPageFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewWebPageFetcher builds a WebPageFetcher with the teacher's
// circuit-breaker/retry wiring (grounded on internal/infra/scraper/webflow.go).
func NewWebPageFetcher() *WebPageFetcher {
	return &WebPageFetcher{
		client:         &http.Client{Timeout: 10 * time.Second},
		circuitBreaker: circuitbreaker.New(circuitbreaker.WebScraperConfig()),
		retryConfig:    retry.WebScraperConfig(),
	}
}

// Fetch produces a single-Article slice for the `link` source kind.
func (f *WebPageFetcher) Fetch(ctx context.Context, cfg entity.SourceConfig) ([]entity.Article, error) {
	title, summary, cover := f.fetchOne(ctx, cfg.URL)
	if summary == "" {
		return nil, nil
	}
	return []entity.Article{{
		Link:       cfg.URL,
		Title:      title,
		Summary:    summary,
		CoverURL:   cover,
		Date:       time.Now().In(seoulLocation),
		OriginType: cfg.Type.OriginFor(),
		Tier:       cfg.Tier,
		Category:   cfg.Category,
		SourceName: cfg.Title,
		Config:     &cfg,
	}}, nil
}

// fetchOne fails soft: on any error it returns ("", "", "") exactly as
// spec.md §4.1 describes ("(None, \"\")").
func (f *WebPageFetcher) fetchOne(ctx context.Context, pageURL string) (title, summary, cover string) {
	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, pageURL)
	})
	if err != nil {
		return "", "", ""
	}
	r := result.(webPageResult)
	return r.title, r.summary, r.cover
}

type webPageResult struct {
	title, summary, cover string
}

func (f *WebPageFetcher) doFetch(ctx context.Context, pageURL string) (webPageResult, error) {
	var res webPageResult
	err := retry.WithBackoff(ctx, f.retryConfig, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", desktopUserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return &retry.HTTPError{StatusCode: resp.StatusCode, Message: pageURL}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		if err != nil {
			return err
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
		if err != nil {
			return err
		}

		res.title = strings.TrimSpace(doc.Find("title").First().Text())
		res.summary = extractBodyText(doc)
		res.cover = extractInlineImage(doc)
		if res.cover == "" {
			res.cover = fetchPageLeadImage(ctx, f.client, pageURL)
		}
		return nil
	})
	return res, err
}

// extractBodyText concatenates text of h1/h2/p/code tags whose first
// child is not itself a tag, per spec.md §4.1.
func extractBodyText(doc *goquery.Document) string {
	var parts []string
	doc.Find("h1, h2, p, code").Each(func(_ int, sel *goquery.Selection) {
		if fc := sel.Nodes[0].FirstChild; fc != nil && fc.Type == html.ElementNode {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

func extractInlineImage(doc *goquery.Document) string {
	var found string
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if ok && acceptableMediaURL(src) {
			found = src
			return false
		}
		return true
	})
	return found
}
