package areas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// DefaultCheckInterval is how often the upstream area list is compared
// against the generated table.
const DefaultCheckInterval = 24 * time.Hour

// areaListEntry is one row of the upstream area-list reference feed.
type areaListEntry struct {
	Label string `json:"label_he"`
}

// AdvisoryFunc receives the single persistent drift advisory. It is called
// once when drift first appears, not once per differing area.
type AdvisoryFunc func(summary string)

// Checker periodically fetches the upstream area list and warns when it
// drifts from the generated table. Drift is a monitoring signal for
// upstream schema changes, never a correctness gate.
type Checker struct {
	url        string
	interval   time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	onAdvisory AdvisoryFunc

	advisoryRaised bool
	stop           chan struct{}
	done           chan struct{}
}

// NewChecker creates an area-list drift checker. onAdvisory may be nil.
func NewChecker(url string, interval time.Duration, logger *slog.Logger, onAdvisory AdvisoryFunc) *Checker {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &Checker{
		url:      url,
		interval: interval,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:     logger,
		onAdvisory: onAdvisory,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the periodic check loop until Stop is called. The first check
// runs immediately.
func (c *Checker) Start() {
	go c.loop()
}

// Stop terminates the check loop and waits for it to exit.
func (c *Checker) Stop() {
	close(c.stop)
	<-c.done
}

func (c *Checker) loop() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.runOnce()

	for {
		select {
		case <-ticker.C:
			c.runOnce()
		case <-c.stop:
			return
		}
	}
}

// runOnce fetches the upstream list and diffs it against the table.
// Failures are logged and retried on the next tick.
func (c *Checker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	upstream, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("Area list check failed", "url", c.url, "error", err)
		return
	}

	added, removed := c.diff(upstream)

	if len(added) > 0 {
		c.logger.Warn("Upstream area list contains unknown areas", "areas", added)
	}
	if len(removed) > 0 {
		c.logger.Warn("Known areas missing from upstream area list", "areas", removed)
	}

	if len(added) == 0 && len(removed) == 0 {
		c.advisoryRaised = false
		return
	}

	// Exactly one advisory per drift episode, regardless of how many
	// areas differ.
	if !c.advisoryRaised {
		c.advisoryRaised = true
		if c.onAdvisory != nil {
			c.onAdvisory(fmt.Sprintf("area table drift: %d added, %d removed upstream", len(added), len(removed)))
		}
	}
}

func (c *Checker) fetch(ctx context.Context) (map[string]bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create area list request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("area list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read area list response: %w", err)
	}

	var entries []areaListEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse area list response: %w", err)
	}

	labels := make(map[string]bool, len(entries))
	for _, e := range entries {
		labels[e.Label] = true
	}
	return labels, nil
}

// diff returns upstream labels missing from the table and table labels
// missing upstream, both sorted for stable logging.
func (c *Checker) diff(upstream map[string]bool) (added, removed []string) {
	for label := range upstream {
		if !Known(label) {
			added = append(added, label)
		}
	}
	for _, name := range Names() {
		if !upstream[name] {
			removed = append(removed, name)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
