package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
)

// GithubJSONFetcher implements the `github_json` source kind (spec.md
// §4.1): URL scheme `github-json://owner/repo[@YYYY-MM-DD]`, fetching a
// curated daily snapshot from raw.githubusercontent.com.
type GithubJSONFetcher struct {
	client *http.Client
}

// NewGithubJSONFetcher builds a fetcher using a plain timeout-bound client;
// raw.githubusercontent.com needs no auth or ETag caching.
func NewGithubJSONFetcher() *GithubJSONFetcher {
	return &GithubJSONFetcher{client: &http.Client{Timeout: 10 * time.Second}}
}

// ParseGithubJSONURL parses `github-json://owner/repo[@YYYY-MM-DD]`,
// defaulting the date to today (Asia/Seoul).
func ParseGithubJSONURL(raw string, now time.Time) (owner, repo, date string, ok bool) {
	const prefix = "github-json://"
	if !strings.HasPrefix(raw, prefix) {
		return "", "", "", false
	}
	rest := strings.TrimPrefix(raw, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return "", "", "", false
	}
	owner = parts[0]
	repo = parts[1]
	date = now.Format("2006-01-02")
	if idx := strings.LastIndex(parts[1], "@"); idx >= 0 {
		repo = parts[1][:idx]
		date = parts[1][idx+1:]
	}
	return owner, repo, date, true
}

type githubJSONSnapshot struct {
	Articles []githubJSONArticle `json:"articles"`
}

type githubJSONArticle struct {
	Link       string  `json:"link"`
	Title      string  `json:"title"`
	Summary    string  `json:"summary"`
	Category   string  `json:"category"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// Fetch downloads the day's curated JSON snapshot, keeps only entries with
// confidence >= 0.5, and caps the result at cfg.InputCount.
func (f *GithubJSONFetcher) Fetch(ctx context.Context, cfg entity.SourceConfig) ([]entity.Article, error) {
	now := time.Now().In(seoulLocation)
	owner, repo, date, ok := ParseGithubJSONURL(cfg.URL, now)
	if !ok {
		return nil, nil
	}

	url := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/main/data/%s-processed.json", owner, repo, date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil // soft miss, per spec.md §4.1
	}
	if resp.StatusCode >= 400 {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, nil
	}

	var snapshot githubJSONSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, nil
	}

	var articles []entity.Article
	for _, a := range snapshot.Articles {
		if a.Confidence < 0.5 {
			continue
		}
		if len(articles) >= cfg.InputCount {
			break
		}
		summary := fmt.Sprintf("%s\nCategory: %s\nSource: %s\nConfidence: %.2f", a.Summary, a.Category, a.Source, a.Confidence)
		articles = append(articles, entity.Article{
			Link:       a.Link,
			Title:      a.Title,
			Summary:    summary,
			Date:       now,
			OriginType: entity.OriginCurated,
			Tier:       cfg.Tier,
			Category:   a.Category,
			SourceName: a.Source,
			Confidence: a.Confidence,
			Config:     &cfg,
		})
	}
	return articles, nil
}
