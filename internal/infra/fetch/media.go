package fetch

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// imageExtensions are the standard extensions accepted outright (spec.md §4.1).
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp"}

// chromeKeywords suggest UI chrome rather than editorial imagery and are
// rejected even if the extension matches.
var chromeKeywords = []string{"sprite", "spacer", "pixel", "logo", "icon", "avatar", "transparent"}

var imgTagPattern = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)

// acceptableMediaURL filters a candidate media URL per spec.md §4.1: accept
// standard image extensions or URLs containing "image"/"format=", reject
// chrome-suggesting keywords.
func acceptableMediaURL(u string) bool {
	if u == "" {
		return false
	}
	lower := strings.ToLower(u)
	for _, kw := range chromeKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return strings.Contains(lower, "image") || strings.Contains(lower, "format=")
}

// primaryMediaFromFeedItem consults gofeed's media-extension fields and
// enclosures, in the order spec.md §4.1 names.
func primaryMediaFromFeedItem(item *gofeed.Item) string {
	if item == nil {
		return ""
	}
	if len(item.Extensions) > 0 {
		if media, ok := item.Extensions["media"]; ok {
			if urls := extractMediaExtensionURLs(media); len(urls) > 0 {
				for _, u := range urls {
					if acceptableMediaURL(u) {
						return u
					}
				}
			}
		}
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && acceptableMediaURL(enc.URL) {
			return enc.URL
		}
	}
	if item.Image != nil && acceptableMediaURL(item.Image.URL) {
		return item.Image.URL
	}
	if m := imgTagPattern.FindStringSubmatch(item.Description); m != nil && acceptableMediaURL(m[1]) {
		return m[1]
	}
	if item.Content != "" {
		if m := imgTagPattern.FindStringSubmatch(item.Content); m != nil && acceptableMediaURL(m[1]) {
			return m[1]
		}
	}
	return ""
}

// extractMediaExtensionURLs walks gofeed's generic media:content /
// media:thumbnail extension tree looking for a "url" attribute.
func extractMediaExtensionURLs(media map[string][]gofeed.Extension) []string {
	var urls []string
	for _, key := range []string{"content", "thumbnail"} {
		for _, ext := range media[key] {
			if u, ok := ext.Attrs["url"]; ok {
				urls = append(urls, u)
			}
		}
	}
	return urls
}

// fetchPageLeadImage performs a lightweight GET of the article page,
// looking for og:image / twitter:image / link[rel=image_src], as the
// spec's final fallback step for primary media extraction.
func fetchPageLeadImage(ctx context.Context, client *http.Client, pageURL string) string {
	if pageURL == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	candidates := []struct{ selector, attr string }{
		{`meta[property="og:image"]`, "content"},
		{`meta[name="twitter:image"]`, "content"},
		{`link[rel="image_src"]`, "href"},
	}
	for _, c := range candidates {
		if val, ok := doc.Find(c.selector).First().Attr(c.attr); ok && acceptableMediaURL(val) {
			return val
		}
	}
	return ""
}
