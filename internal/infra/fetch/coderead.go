package fetch

import (
	"bytes"
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/githubclient"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
)

// CodeReadmeFetcher implements the `code` source kind (spec.md §4.1):
// resolve short-link redirects, fetch the repo README via the GitHub
// Client, and convert markdown to plain text.
type CodeReadmeFetcher struct {
	github     *githubclient.Client
	httpClient *http.Client
}

// NewCodeReadmeFetcher builds a fetcher around a shared GitHub client.
func NewCodeReadmeFetcher(gh *githubclient.Client) *CodeReadmeFetcher {
	return &CodeReadmeFetcher{
		github:     gh,
		httpClient: &http.Client{Timeout: 10 * time.Second, CheckRedirect: followAllRedirects},
	}
}

func followAllRedirects(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return http.ErrUseLastResponse
	}
	return nil
}

var githubURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/?#]+)`)

// Fetch resolves cfg.URL (possibly a short link) to an owner/repo pair,
// fetches the README, and emits a single Article.
func (f *CodeReadmeFetcher) Fetch(ctx context.Context, cfg entity.SourceConfig) ([]entity.Article, error) {
	finalURL := f.resolveRedirect(ctx, cfg.URL)

	owner, repo := parseGithubOwnerRepo(finalURL)
	if owner == "" || repo == "" {
		return nil, nil
	}

	raw, err := f.github.GetReadme(ctx, owner, repo)
	if err != nil {
		return nil, nil
	}

	summary := markdownToPlainText(raw)
	if len(summary) < 10 {
		return nil, nil
	}

	return []entity.Article{{
		Link:       finalURL,
		Title:      cfg.Title,
		Summary:    summary,
		Date:       time.Now().In(seoulLocation),
		OriginType: cfg.Type.OriginFor(),
		Tier:       cfg.Tier,
		Category:   cfg.Category,
		SourceName: cfg.Title,
		Config:     &cfg,
	}}, nil
}

// resolveRedirect follows any short-link redirect and returns the final
// landing URL, falling back to the input on any error.
func (f *CodeReadmeFetcher) resolveRedirect(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return url
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return url
	}
	defer resp.Body.Close()
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return url
}

func parseGithubOwnerRepo(url string) (owner, repo string) {
	m := githubURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", ""
	}
	return m[1], strings.TrimSuffix(m[2], ".git")
}

var fencedCodeBlockPattern = regexp.MustCompile("(?s)```.*?```")

// markdownToPlainText converts markdown to HTML via goldmark, strips
// fenced code blocks first, then strips remaining <pre>/<code> tags and
// all other markup, per spec.md §4.1.
func markdownToPlainText(md string) string {
	stripped := fencedCodeBlockPattern.ReplaceAllString(md, "")

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(stripped), &buf); err != nil {
		return stripHTML(stripped)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return stripHTML(buf.String())
	}
	doc.Find("pre, code").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
