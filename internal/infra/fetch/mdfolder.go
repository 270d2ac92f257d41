package fetch

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/githubclient"
)

// GithubMDFolderFetcher implements the `github_md_folder` source kind
// (spec.md §4.1): URL scheme `github://owner/repo/folder[@ref]`, one
// Article per `---`-delimited section of the newest dated markdown file.
type GithubMDFolderFetcher struct {
	github *githubclient.Client
}

// NewGithubMDFolderFetcher builds a fetcher around a shared GitHub client.
func NewGithubMDFolderFetcher(gh *githubclient.Client) *GithubMDFolderFetcher {
	return &GithubMDFolderFetcher{github: gh}
}

// ParseGithubFolderURL parses the `github://owner/repo/folder[@ref]`
// scheme, percent-decoding the folder segment and defaulting ref to "main".
func ParseGithubFolderURL(raw string) (owner, repo, folder, ref string, ok bool) {
	const prefix = "github://"
	if !strings.HasPrefix(raw, prefix) {
		return "", "", "", "", false
	}
	rest := strings.TrimPrefix(raw, prefix)
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 3 {
		return "", "", "", "", false
	}
	owner, repo = parts[0], parts[1]
	folderWithRef := parts[2]

	ref = "main"
	folder = folderWithRef
	if idx := strings.LastIndex(folderWithRef, "@"); idx >= 0 {
		folder = folderWithRef[:idx]
		ref = folderWithRef[idx+1:]
	}

	decoded, err := url.PathUnescape(folder)
	if err == nil {
		folder = decoded
	}
	return owner, repo, folder, ref, true
}

// Fetch lists the folder, picks the newest dated .md file by descending
// filename sort, and splits it into one Article per `---`-delimited
// section.
func (f *GithubMDFolderFetcher) Fetch(ctx context.Context, cfg entity.SourceConfig) ([]entity.Article, error) {
	owner, repo, folder, ref, ok := ParseGithubFolderURL(cfg.URL)
	if !ok {
		return nil, nil
	}

	entries, err := f.github.ListFolderContents(ctx, owner, repo, folder, ref)
	if err != nil {
		return nil, nil
	}

	var mdFiles []githubclient.ContentEntry
	for _, e := range entries {
		if e.Type == "file" && strings.HasSuffix(e.Name, ".md") && e.DownloadURL != "" {
			mdFiles = append(mdFiles, e)
		}
	}
	if len(mdFiles) == 0 {
		return nil, nil
	}

	sort.Slice(mdFiles, func(i, j int) bool { return mdFiles[i].Name > mdFiles[j].Name })
	newest := mdFiles[0]

	content, err := f.github.DownloadFileContent(ctx, newest.DownloadURL)
	if err != nil || len(content) < 100 {
		return nil, nil
	}

	return parseMarkdownSections(content, cfg), nil
}

var (
	titlePattern      = regexp.MustCompile(`(?m)^##\s*제목\s*:\s*(.+)$`)
	anyHeadingPattern = regexp.MustCompile(`(?m)^##\s*(.+)$`)
	imagePattern      = regexp.MustCompile(`!\[Image\]\(([^)]+)\)`)
	importancePattern = regexp.MustCompile(`\*\*중요도\*\*\s*:\s*(\d+)`)
	linkPattern       = regexp.MustCompile(`\*\*전체링크\*\*\s*:\s*(\S+)`)
)

// fieldPattern builds the "**label**: ... through the next **" extractor.
func fieldPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)\*\*` + regexp.QuoteMeta(label) + `\*\*\s*:\s*(.*?)(?:\*\*|$)`)
}

var (
	summaryFieldPattern   = fieldPattern("요약")
	easyFieldPattern      = fieldPattern("쉬운설명")
	relatedFieldPattern   = fieldPattern("관련분야")
)

// parseMarkdownSections splits on lines consisting only of "---", extracts
// each non-trivial (>=50 char) section's fields per spec.md §4.1's anchored
// patterns, and emits one Article per valid section.
func parseMarkdownSections(content string, cfg entity.SourceConfig) []entity.Article {
	rawSections := regexp.MustCompile(`(?m)^---\s*$`).Split(content, -1)

	var articles []entity.Article
	now := time.Now().In(seoulLocation)

	for _, section := range rawSections {
		trimmed := strings.TrimSpace(section)
		if len(trimmed) < 50 {
			continue
		}

		title := firstMatch(titlePattern, trimmed)
		if title == "" {
			title = firstMatch(anyHeadingPattern, trimmed)
		}
		if title == "" {
			continue
		}

		link := firstMatch(linkPattern, trimmed)
		if link == "" {
			continue
		}

		summary := strings.TrimSpace(firstMatch(summaryFieldPattern, trimmed))
		easy := strings.TrimSpace(firstMatch(easyFieldPattern, trimmed))
		related := strings.TrimSpace(firstMatch(relatedFieldPattern, trimmed))

		fullSummary := summary
		if easy != "" {
			fullSummary += "\n\n쉬운설명: " + easy
		}
		if related != "" {
			fullSummary += "\n\n관련분야: " + related
		}

		importance := 5
		if raw := firstMatch(importancePattern, trimmed); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				importance = v
			}
		}

		article := entity.Article{
			Link:       strings.TrimSpace(link),
			Title:      strings.TrimSpace(title),
			Summary:    fullSummary,
			CoverURL:   firstMatch(imagePattern, trimmed),
			Date:       now,
			OriginType: entity.OriginCurated,
			Tier:       cfg.Tier,
			Category:   cfg.Category,
			SourceName: cfg.Title,
			Importance: importance,
			Config:     &cfg,
		}
		articles = append(articles, article)
	}

	return articles
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
