// Package hn provides a client for the Hacker News Algolia search API and
// the Firebase item API.
package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Client defines the Hacker News operations used by the pipeline.
type Client interface {
	// LocateLatestThread finds the most recent "Who is hiring?" thread.
	LocateLatestThread(ctx context.Context) (*Thread, error)
	// FetchChildren resolves the thread's direct child comments. Missing or
	// deleted items are skipped, never fatal to the batch.
	FetchChildren(ctx context.Context, threadID int64) ([]Comment, error)
}

// Thread is a root hiring post.
type Thread struct {
	ID        int64
	Title     string
	CreatedAt time.Time
}

// Comment is one child comment with HTML already decoded to plain text.
type Comment struct {
	ID        int64
	ParentID  int64
	Author    string
	CreatedAt time.Time
	Text      string
}

// Option configures the HN client.
type Option func(*httpClient)

// WithAlgoliaBaseURL sets a custom search base URL (for testing).
func WithAlgoliaBaseURL(url string) Option {
	return func(c *httpClient) {
		c.algoliaBaseURL = url
	}
}

// WithFirebaseBaseURL sets a custom item base URL (for testing).
func WithFirebaseBaseURL(url string) Option {
	return func(c *httpClient) {
		c.firebaseBaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithConcurrency bounds the parallel item lookups during FetchChildren.
func WithConcurrency(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithSearchWindow sets how far back the thread search looks.
func WithSearchWindow(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.searchWindow = d
		}
	}
}

type httpClient struct {
	algoliaBaseURL  string
	firebaseBaseURL string
	http            *http.Client
	concurrency     int
	searchWindow    time.Duration
}

// NewClient creates a Hacker News client with a pooled transport.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		algoliaBaseURL:  "https://hn.algolia.com/api/v1",
		firebaseBaseURL: "https://hacker-news.firebaseio.com/v0",
		concurrency:     4,
		searchWindow:    365 * 24 * time.Hour,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes a GET with exponential backoff on transient failures.
func (c *httpClient) retryDo(ctx context.Context, reqURL string) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, 0, eris.Wrap(err, "hn: create request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "hn: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("hn: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

type searchResponse struct {
	Hits []searchHit `json:"hits"`
}

type searchHit struct {
	ObjectID  string `json:"objectID"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at_i"`
}

func (c *httpClient) LocateLatestThread(ctx context.Context) (*Thread, error) {
	params := url.Values{}
	params.Set("tags", "story,author_whoishiring")
	params.Set("numericFilters", fmt.Sprintf("created_at_i>%d", time.Now().Add(-c.searchWindow).Unix()))
	params.Set("hitsPerPage", "50")

	reqURL := c.algoliaBaseURL + "/search_by_date?" + params.Encode()

	body, statusCode, err := c.retryDo(ctx, reqURL)
	if err != nil {
		return nil, eris.Wrap(err, "hn: search request failed")
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("hn: search unexpected status %d: %s", statusCode, string(body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "hn: unmarshal search response")
	}

	for _, hit := range result.Hits {
		if !strings.Contains(hit.Title, "Who is hiring") {
			continue
		}
		id, err := strconv.ParseInt(hit.ObjectID, 10, 64)
		if err != nil {
			continue
		}
		return &Thread{
			ID:        id,
			Title:     hit.Title,
			CreatedAt: time.Unix(hit.CreatedAt, 0).UTC(),
		}, nil
	}

	return nil, eris.New("hn: no hiring thread found in search window")
}

type item struct {
	ID      int64  `json:"id"`
	Parent  int64  `json:"parent"`
	By      string `json:"by"`
	Time    int64  `json:"time"`
	Text    string `json:"text"`
	Kids    []int64 `json:"kids"`
	Deleted bool   `json:"deleted"`
	Dead    bool   `json:"dead"`
}

func (c *httpClient) fetchItem(ctx context.Context, id int64) (*item, error) {
	reqURL := fmt.Sprintf("%s/item/%d.json", c.firebaseBaseURL, id)

	body, statusCode, err := c.retryDo(ctx, reqURL)
	if err != nil {
		return nil, eris.Wrapf(err, "hn: fetch item %d", id)
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("hn: item %d unexpected status %d", id, statusCode)
	}
	// Firebase returns literal null for unknown ids.
	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}

	var it item
	if err := json.Unmarshal(body, &it); err != nil {
		return nil, eris.Wrapf(err, "hn: unmarshal item %d", id)
	}
	return &it, nil
}

func (c *httpClient) FetchChildren(ctx context.Context, threadID int64) ([]Comment, error) {
	root, err := c.fetchItem(ctx, threadID)
	if err != nil {
		return nil, eris.Wrapf(err, "hn: fetch thread %d", threadID)
	}
	if root == nil {
		return nil, eris.Errorf("hn: thread %d not found", threadID)
	}

	zap.L().Info("hn: fetching thread children",
		zap.Int64("thread_id", threadID),
		zap.Int("kids", len(root.Kids)),
	)

	// Bounded fan-out across item lookups. The result order follows the
	// thread's kid order regardless of completion order.
	type indexed struct {
		pos     int
		comment Comment
	}

	var mu sync.Mutex
	var collected []indexed

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for pos, kid := range root.Kids {
		pos, kid := pos, kid
		g.Go(func() error {
			it, err := c.fetchItem(gCtx, kid)
			if err != nil {
				// Missing/unreachable items are skipped, not fatal.
				zap.L().Warn("hn: skipping unreachable item",
					zap.Int64("item_id", kid),
					zap.Error(err),
				)
				return nil
			}
			if it == nil || it.Deleted || it.Dead || it.Text == "" {
				return nil
			}
			mu.Lock()
			collected = append(collected, indexed{
				pos: pos,
				comment: Comment{
					ID:        it.ID,
					ParentID:  threadID,
					Author:    it.By,
					CreatedAt: time.Unix(it.Time, 0).UTC(),
					Text:      decodeText(it.Text),
				},
			})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "hn: fetch children")
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].pos < collected[j].pos })

	comments := make([]Comment, len(collected))
	for i, c := range collected {
		comments[i] = c.comment
	}
	return comments, nil
}
