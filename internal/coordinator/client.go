// Package coordinator implements the alert ingestion core: concurrent
// two-feed fetch with retry, normalization of the real-time feed into the
// history shape, merge/sort/dedup, synthetic alert management, and
// immutable snapshot publication to downstream listeners.
package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/oref-monitor/orefmon/internal/alert"
	"github.com/oref-monitor/orefmon/internal/metrics"
)

// fetchAttempts is how many times each feed fetch is tried per cycle.
const fetchAttempts = 3

// Fetcher is the upstream feed access used by the Coordinator.
type Fetcher interface {
	// FetchCurrent returns the real-time payload, or nil when no alert
	// is currently live (the feed serves an empty body in that case).
	FetchCurrent(ctx context.Context) (*alert.CurrentAlert, error)

	// FetchHistory returns the history feed rows, already one-per-area.
	FetchHistory(ctx context.Context) ([]alert.Record, error)
}

// FeedClient fetches the two upstream feeds over HTTP with the headers the
// upstream requires and a fixed retry budget per fetch.
type FeedClient struct {
	currentURL string
	historyURL string
	referer    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFeedClient creates a feed client.
func NewFeedClient(currentURL, historyURL, referer string, timeout time.Duration, logger *slog.Logger) *FeedClient {
	return &FeedClient{
		currentURL: currentURL,
		historyURL: historyURL,
		referer:    referer,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchCurrent polls the real-time feed. An empty body is a successful
// no-alert result, not an error.
func (c *FeedClient) FetchCurrent(ctx context.Context) (*alert.CurrentAlert, error) {
	body, err := c.get(ctx, "current", c.currentURL)
	if err != nil {
		return nil, err
	}

	body = trimFeedBody(body)
	if len(body) == 0 {
		return nil, nil
	}

	var cur alert.CurrentAlert
	if err := json.Unmarshal(body, &cur); err != nil {
		return nil, fmt.Errorf("failed to parse current feed: %w", err)
	}
	return &cur, nil
}

// FetchHistory polls the history feed. An empty body is a successful empty
// result.
func (c *FeedClient) FetchHistory(ctx context.Context) ([]alert.Record, error) {
	body, err := c.get(ctx, "history", c.historyURL)
	if err != nil {
		return nil, err
	}

	body = trimFeedBody(body)
	if len(body) == 0 {
		return nil, nil
	}

	var records []alert.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to parse history feed: %w", err)
	}
	return records, nil
}

// get performs a single-feed GET with the upstream's required headers,
// retrying on any transport or HTTP error. The last error is returned once
// the retry budget is exhausted.
func (c *FeedClient) get(ctx context.Context, feed, url string) ([]byte, error) {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create %s feed request: %w", feed, err))
			}
			req.Header.Set("Referer", c.referer)
			req.Header.Set("X-Requested-With", "XMLHttpRequest")
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("%s feed request failed: %w", feed, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("%s feed returned HTTP %d", feed, resp.StatusCode)
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read %s feed response: %w", feed, err)
			}
			return nil
		},
		retry.Attempts(fetchAttempts),
		retry.Delay(0),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			metrics.FetchRetries.WithLabelValues(feed).Inc()
			c.logger.Debug("Retrying feed fetch", "feed", feed, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// trimFeedBody strips whitespace and the UTF-8 BOM the upstream sometimes
// prepends. A body that is empty after trimming means "no data".
func trimFeedBody(body []byte) []byte {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	return bytes.TrimSpace(body)
}
