package githubclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/resilience/circuitbreaker"

	"github.com/sony/gobreaker"
)

// decodeBase64Content decodes the GitHub contents API's base64 body,
// which is newline-wrapped at 60 chars.
func decodeBase64Content(content string) (string, error) {
	cleaned := strings.ReplaceAll(content, "\n", "")
	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

const (
	apiBase           = "https://api.github.com"
	userAgent         = "daily-digest-bot/1.0"
	requestTimeout    = 30 * time.Second
	maxRateLimitWait  = 300 * time.Second
)

// retryDelays is the backoff table for 5xx and connection errors.
// attemptLoop makes len(retryDelays) attempts and sleeps retryDelays[attempt]
// between them, so only 1s and 3s are slept; the 7s entry is never used.
var retryDelays = []time.Duration{1 * time.Second, 3 * time.Second, 7 * time.Second}

// ContentEntry is one element of the GitHub contents API's folder listing.
type ContentEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"` // "file" or "dir"
	DownloadURL string `json:"download_url"`
}

// readmeResponse is the contents API's single-file shape, used for the
// README fetch (base64-encoded content).
type readmeResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Client is the shared GitHub HTTP client: authenticated or
// unauthenticated, conditional-GET cached, retrying, circuit-breaker
// guarded (spec.md §4.2).
type Client struct {
	token          string
	httpClient     *http.Client
	cache          *FileCache
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// New builds a Client. token may be empty (unauthenticated mode).
func New(token string, cache *FileCache) *Client {
	return &Client{
		token:          token,
		httpClient:     &http.Client{Timeout: requestTimeout},
		cache:          cache,
		circuitBreaker: circuitbreaker.New(circuitbreaker.GitHubAPIConfig()),
	}
}

func (c *Client) headers(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// ListFolderContents lists a repo folder's contents via the contents API,
// using the conditional-GET ETag cache keyed by owner/repo/folder/ref.
func (c *Client) ListFolderContents(ctx context.Context, owner, repo, folderPath, ref string) ([]ContentEntry, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", apiBase, owner, repo, folderPath, ref)
	key := CacheKey(owner, repo, folderPath, ref)

	raw, err := c.getConditional(ctx, url, key)
	if err != nil {
		return nil, err
	}

	var entries []ContentEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &entity.ParseError{Context: "github folder listing", Reason: "response is not a JSON array", Err: err}
	}
	return entries, nil
}

// GetReadme fetches and base64-decodes a repository's README via the
// contents API's dedicated /readme endpoint.
func (c *Client) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/readme", apiBase, owner, repo)
	key := CacheKey(owner, repo, "__readme__", "")

	raw, err := c.getConditional(ctx, url, key)
	if err != nil {
		return "", err
	}

	var resp readmeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &entity.ParseError{Context: "github readme", Reason: "decoding contents response", Err: err}
	}
	decoded, err := decodeBase64Content(resp.Content)
	if err != nil {
		return "", &entity.ParseError{Context: "github readme", Reason: "base64 decode", Err: err}
	}
	return decoded, nil
}

// DownloadFileContent fetches a raw file body (e.g. a download_url from
// ListFolderContents) without ETag caching, per spec.md §4.2.
func (c *Client) DownloadFileContent(ctx context.Context, downloadURL string) (string, error) {
	body, _, err := c.doWithRetry(ctx, downloadURL, "", "")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// getConditional performs a conditional GET against the ETag cache,
// returning the raw JSON body (fresh or replayed from cache on 304).
func (c *Client) getConditional(ctx context.Context, url, cacheKey string) ([]byte, error) {
	var etag string
	if c.cache != nil {
		entry, err := c.cache.Load(cacheKey)
		if err == nil && entry != nil {
			etag = entry.ETag
		}
	}

	body, status, err := c.doWithRetry(ctx, url, etag, cacheKey)
	if err != nil {
		var rl *entity.RateLimitError
		if errors.As(err, &rl) {
			return nil, err
		}
		return nil, err
	}

	if status == http.StatusNotModified {
		if c.cache != nil {
			entry, _ := c.cache.Load(cacheKey)
			if entry != nil && len(entry.Data) > 0 {
				return entry.Data, nil
			}
		}
		slog.Warn("304 response but no cached data, refetching without etag", slog.String("url", url))
		body, _, err = c.doWithRetry(ctx, url, "", cacheKey)
		if err != nil {
			return nil, err
		}
	}

	return body, nil
}

// doWithRetry executes a single conditional GET, retrying 5xx and network
// errors with the [1s,3s,7s] backoff and handling 403/429 rate-limit
// headers, wrapped in the circuit breaker.
func (c *Client) doWithRetry(ctx context.Context, url, etag, cacheKey string) ([]byte, int, error) {
	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.attemptLoop(ctx, url, etag, cacheKey)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("github circuit breaker open, request rejected", slog.String("url", url))
		}
		return nil, 0, err
	}
	res := result.(doResult)
	return res.body, res.status, nil
}

type doResult struct {
	body   []byte
	status int
}

func (c *Client) attemptLoop(ctx context.Context, url, etag, cacheKey string) (doResult, error) {
	var lastErr error
	for attempt := 0; attempt < len(retryDelays); attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return doResult{}, err
		}
		c.headers(req)
		if etag != "" {
			req.Header.Set("If-None-Match", etag)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < len(retryDelays)-1 {
				slog.Warn("github request failed, retrying", slog.String("url", url), slog.Any("error", err))
				if !sleepCtx(ctx, retryDelays[attempt]) {
					return doResult{}, ctx.Err()
				}
				continue
			}
			return doResult{}, &entity.FetchError{Source: "github", Reason: "request failed after retries", Err: lastErr}
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return doResult{}, &entity.FetchError{Source: "github", Reason: "reading response body", Err: readErr}
		}

		switch {
		case resp.StatusCode == http.StatusNotModified:
			return doResult{body: body, status: resp.StatusCode}, nil

		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
			resetStr := resp.Header.Get("X-RateLimit-Reset")
			if resetStr != "" {
				if resetUnix, convErr := strconv.ParseInt(resetStr, 10, 64); convErr == nil {
					wait := time.Until(time.Unix(resetUnix, 0))
					if wait > 0 && wait < maxRateLimitWait {
						slog.Warn("github rate limited, sleeping until reset", slog.Duration("wait", wait))
						if !sleepCtx(ctx, wait+time.Second) {
							return doResult{}, ctx.Err()
						}
						continue
					}
				}
			}
			return doResult{}, &entity.RateLimitError{Source: "github", ResetAfter: resetStr}

		case resp.StatusCode >= 500 && resp.StatusCode < 600:
			if attempt < len(retryDelays)-1 {
				slog.Warn("github server error, retrying", slog.Int("status", resp.StatusCode))
				if !sleepCtx(ctx, retryDelays[attempt]) {
					return doResult{}, ctx.Err()
				}
				continue
			}
			return doResult{}, &entity.FetchError{Source: "github", Reason: fmt.Sprintf("server error %d after retries", resp.StatusCode)}

		case resp.StatusCode >= 400:
			return doResult{}, &entity.FetchError{Source: "github", Reason: fmt.Sprintf("client error %d", resp.StatusCode)}

		default:
			if c.cache != nil && cacheKey != "" {
				if newEtag := resp.Header.Get("ETag"); newEtag != "" {
					_ = c.cache.Save(cacheKey, CacheEntry{ETag: newEtag, Data: body})
				}
			}
			return doResult{body: body, status: resp.StatusCode}, nil
		}
	}
	return doResult{}, &entity.FetchError{Source: "github", Reason: "retries exhausted", Err: lastErr}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
