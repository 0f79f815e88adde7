// Package schema classifies normalized alert records into record types
// (pre-alert, alert, end) using a rule set that is periodically refreshed
// from a remote, versioned source. The rule set is declarative data, never
// executable code, and is swapped atomically so concurrent classification
// calls always see a complete table.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/oref-monitor/orefmon/internal/alert"
	"github.com/oref-monitor/orefmon/internal/areas"
)

// Record types, in classification order. Order matters: "alert" is defined
// by exclusion, so it must be tried last or it would falsely capture
// pre-alert and end records.
const (
	TypePreAlert = "pre_alert"
	TypeEnd      = "end"
	TypeAlert    = "alert"
)

// ReloadInterval is the fixed period between rule-set refreshes.
const ReloadInterval = 6 * time.Hour

// Rule matches a record type by category membership. Exactly one of
// Categories (inclusion) or Exclude (exclusion) is consulted.
type Rule struct {
	Type       string `json:"type"`
	Categories []int  `json:"categories,omitempty"`
	Exclude    []int  `json:"exclude,omitempty"`
}

func (r Rule) matches(category int) bool {
	if len(r.Categories) > 0 {
		for _, c := range r.Categories {
			if c == category {
				return true
			}
		}
		return false
	}
	if len(r.Exclude) > 0 {
		for _, c := range r.Exclude {
			if c == category {
				return false
			}
		}
		return true
	}
	return false
}

// document is the wire shape of the remote rule source.
type document struct {
	Version string `json:"version"`
	Rules   []Rule `json:"rules"`
}

// ruleSet is an immutable, ordered rule table.
type ruleSet struct {
	version string
	rules   []Rule
}

// defaultRuleSet is compiled in and used until the first successful remote
// load. It mirrors the upstream defaults: drill codes share their real
// counterparts' type.
var defaultRuleSet = &ruleSet{
	version: "builtin",
	rules: []Rule{
		{Type: TypePreAlert, Categories: []int{14, 114}},
		{Type: TypeEnd, Categories: []int{13, 113}},
		{Type: TypeAlert, Exclude: []int{13, 14, 113, 114}},
	},
}

// Classifier holds the live-swappable rule set and its refresh loop.
// Reads are lock-free; the single refresh goroutine is the only writer.
type Classifier struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
	interval   time.Duration

	rules atomic.Pointer[ruleSet]

	stop chan struct{}
	done chan struct{}
}

// NewClassifier creates a classifier seeded with the builtin rule set.
func NewClassifier(url string, logger *slog.Logger) *Classifier {
	c := &Classifier{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:   logger,
		interval: ReloadInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	c.rules.Store(defaultRuleSet)
	return c
}

// Start launches the refresh loop. The first load runs immediately.
func (c *Classifier) Start() {
	go c.loop()
}

// Stop terminates the refresh loop and waits for it to exit.
func (c *Classifier) Stop() {
	close(c.stop)
	<-c.done
}

// loop refreshes forever on a fixed period. The next reload is scheduled
// regardless of whether the previous one succeeded, failed, or panicked.
func (c *Classifier) loop() {
	defer close(c.done)

	for {
		c.runLoad()

		select {
		case <-time.After(c.interval):
		case <-c.stop:
			return
		}
	}
}

// runLoad executes one load attempt. Failures are logged, never
// propagated: a broken remote source must not stop the scheduler.
func (c *Classifier) runLoad() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Rule set load panicked", "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := c.load(ctx); err != nil {
		c.logger.Warn("Rule set load failed, keeping previous rules",
			"url", c.url,
			"version", c.rules.Load().version,
			"error", err)
	}
}

// load fetches the remote rule document, validates it, and swaps the whole
// rule set atomically.
func (c *Classifier) load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create rule set request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rule set request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read rule set response: %w", err)
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("failed to parse rule set document: %w", err)
	}

	if err := validate(doc); err != nil {
		return fmt.Errorf("invalid rule set document: %w", err)
	}

	c.rules.Store(&ruleSet{version: doc.Version, rules: doc.Rules})
	c.logger.Info("Rule set loaded", "version", doc.Version, "rules", len(doc.Rules))
	return nil
}

func validate(doc document) error {
	if len(doc.Rules) == 0 {
		return fmt.Errorf("no rules")
	}
	for i, rule := range doc.Rules {
		switch rule.Type {
		case TypePreAlert, TypeEnd, TypeAlert:
		default:
			return fmt.Errorf("rule %d: unknown type %q", i, rule.Type)
		}
		if len(rule.Categories) == 0 && len(rule.Exclude) == 0 {
			return fmt.Errorf("rule %d: empty match", i)
		}
	}
	return nil
}

// Version returns the version of the active rule set.
func (c *Classifier) Version() string {
	return c.rules.Load().version
}

// Classify returns the record type of a record, trying rules in their
// declared order. False means no rule matched, which should not happen for
// well-formed records with recognized categories.
func (c *Classifier) Classify(record alert.Record) (string, bool) {
	for _, rule := range c.rules.Load().rules {
		if rule.matches(record.Category) {
			return rule.Type, true
		}
	}
	return "", false
}

// LatestRecordType scans active records, most recent first, for the first
// record matching the queried area or a whole-country alias, and
// classifies it. False means no active record addresses the area.
func (c *Classifier) LatestRecordType(active []alert.Record, area string) (string, alert.Record, bool) {
	for _, record := range active {
		if record.Area != area && !areas.IsWholeCountry(record.Area) {
			continue
		}
		if recordType, ok := c.Classify(record); ok {
			return recordType, record, true
		}
	}
	return "", alert.Record{}, false
}
