package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oref-monitor/orefmon/internal/alert"
	"github.com/oref-monitor/orefmon/internal/areas"
	"github.com/oref-monitor/orefmon/internal/category"
	"github.com/oref-monitor/orefmon/internal/metrics"
)

// dedupTolerance is how close in time a current-feed record and a history
// record must be to collapse into one entry.
const dedupTolerance = 5 * time.Second

// Snapshot is the immutable result of one successful merge cycle.
// Listeners share the same snapshot value and must not mutate Records.
type Snapshot struct {
	// Records is the merged, sorted, deduplicated record list, synthetic
	// alerts included.
	Records []alert.Record

	// MaxAge is the active window carried so consumers can recompute the
	// active subset at their own access time.
	MaxAge time.Duration

	// Taken is when the snapshot was published.
	Taken time.Time
}

// Active returns the subset of records inside the active window at now.
// Activity is a property of now, not of the snapshot: the same snapshot
// yields shrinking subsets as time passes.
func (s Snapshot) Active(now time.Time) []alert.Record {
	return alert.Active(s.Records, s.MaxAge, now)
}

// Listener observes snapshot publications. Listeners are invoked
// synchronously, exactly once per publication, in registration order.
type Listener func(Snapshot)

// Status reports the coordinator's health for the status surface.
type Status struct {
	Ready               bool      `json:"ready"`
	LastPoll            time.Time `json:"lastPoll"`
	LastSuccess         time.Time `json:"lastSuccess"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	SnapshotSize        int       `json:"snapshotSize"`
	ActiveAlerts        int       `json:"activeAlerts"`
}

// Coordinator is the polling engine. One goroutine runs the poll loop;
// synthetic alert expiry triggers republication between cycles.
type Coordinator struct {
	fetcher   Fetcher
	interval  time.Duration
	maxAge    time.Duration
	logger    *slog.Logger
	listeners []Listener

	mu         sync.RWMutex
	merged     []alert.Record // last fetched merge result, without synthetics
	snapshot   Snapshot
	ready      bool
	lastPoll   time.Time
	lastOK     time.Time
	failures   int
	lastErr    string
	synthetics []syntheticEntry
	synthSeq   int

	now func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a coordinator. Listeners must be registered before Start.
func New(fetcher Fetcher, interval, maxAge time.Duration, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		fetcher:  fetcher,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// AddListener registers a snapshot listener. Not safe to call after Start.
func (c *Coordinator) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Start performs the first refresh synchronously, then launches the poll
// loop. A first-cycle error is returned so the caller can report a
// not-ready condition; the loop still runs and later cycles may recover.
func (c *Coordinator) Start(ctx context.Context) error {
	err := c.Refresh(ctx)
	go c.loop(ctx)
	return err
}

// Stop terminates the poll loop and waits for it to exit.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *Coordinator) loop(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				// Refresh already recorded the failure; previous
				// snapshot remains in service.
				continue
			}
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Refresh runs one full cycle: fetch both feeds concurrently, normalize,
// merge, sort, validate, dedup, fold in live synthetics, publish.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.lastPoll = c.now()
	c.mu.Unlock()

	current, history, err := c.fetchBoth(ctx)
	if err != nil {
		c.recordFailure(err)
		metrics.PollCycles.WithLabelValues("failure").Inc()
		return err
	}

	now := c.now()
	merged := history
	if current != nil {
		merged = append(c.normalizeCurrent(*current, now), history...)
	}

	alert.Sort(merged)
	c.validateAreas(merged)
	merged = alert.Dedup(merged, dedupTolerance)

	c.mu.Lock()
	c.merged = merged
	c.ready = true
	c.lastOK = now
	c.failures = 0
	c.lastErr = ""
	c.mu.Unlock()

	c.publish()
	metrics.PollCycles.WithLabelValues("success").Inc()
	return nil
}

// fetchBoth issues both feed requests concurrently so cycle latency is
// bounded by the slower feed, not the sum.
func (c *Coordinator) fetchBoth(ctx context.Context) (*alert.CurrentAlert, []alert.Record, error) {
	var (
		wg         sync.WaitGroup
		current    *alert.CurrentAlert
		currentErr error
		history    []alert.Record
		historyErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = c.fetcher.FetchCurrent(ctx)
	}()
	go func() {
		defer wg.Done()
		history, historyErr = c.fetcher.FetchHistory(ctx)
	}()
	wg.Wait()

	if currentErr != nil {
		return nil, nil, fmt.Errorf("current feed: %w", currentErr)
	}
	if historyErr != nil {
		return nil, nil, fmt.Errorf("history feed: %w", historyErr)
	}
	return current, history, nil
}

// normalizeCurrent expands the real-time payload into history-shaped
// records, translating the real-time category code where a mapping exists.
// An unmapped code is kept as-is and logged; dropping the record would hide
// a live alert.
func (c *Coordinator) normalizeCurrent(cur alert.CurrentAlert, now time.Time) []alert.Record {
	if mapped, ok := category.RealTimeToHistory(cur.Category); ok {
		cur.Category = mapped
	} else {
		c.logger.Warn("No history mapping for real-time category, keeping raw code", "category", cur.Category)
	}
	return alert.Normalize(cur, now)
}

// validateAreas logs every record whose area is missing from the known-area
// table. This is a schema-drift signal, not a correctness gate: the record
// stays in the snapshot.
func (c *Coordinator) validateAreas(records []alert.Record) {
	for _, r := range records {
		if !areas.Known(r.Area) {
			c.logger.Warn("Record area not in known-area table", "area", r.Area, "category", r.Category)
		}
	}
}

func (c *Coordinator) recordFailure(err error) {
	c.mu.Lock()
	c.failures++
	c.lastErr = err.Error()
	failures := c.failures
	ready := c.ready
	c.mu.Unlock()

	if !ready {
		c.logger.Error("Refresh failed before first snapshot, not ready", "error", err)
		return
	}
	c.logger.Warn("Refresh failed, serving previous snapshot",
		"consecutiveFailures", failures,
		"error", err)
}

// publish assembles the snapshot from the last merge result plus live
// synthetic alerts and notifies every listener exactly once.
func (c *Coordinator) publish() {
	c.mu.Lock()
	now := c.now()
	records := make([]alert.Record, 0, len(c.merged)+len(c.synthetics))
	records = append(records, c.merged...)
	for _, s := range c.liveSyntheticsLocked(now) {
		records = append(records, s.record)
	}
	alert.Sort(records)

	snap := Snapshot{
		Records: records,
		MaxAge:  c.maxAge,
		Taken:   now,
	}
	c.snapshot = snap
	listeners := c.listeners
	c.mu.Unlock()

	metrics.ActiveAlerts.Set(float64(len(snap.Active(now))))

	for _, l := range listeners {
		l(snap)
	}
}

// Snapshot returns the latest published snapshot.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// ActiveAlerts is the convenience accessor filtering the latest snapshot
// by the active window at call time.
func (c *Coordinator) ActiveAlerts() []alert.Record {
	snap := c.Snapshot()
	return snap.Active(c.now())
}

// Status reports current health.
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	snap := c.snapshot
	st := Status{
		Ready:               c.ready,
		LastPoll:            c.lastPoll,
		LastSuccess:         c.lastOK,
		ConsecutiveFailures: c.failures,
		LastError:           c.lastErr,
		SnapshotSize:        len(snap.Records),
	}
	c.mu.RUnlock()

	st.ActiveAlerts = len(snap.Active(c.now()))
	return st
}

// ShelterCountdown returns the seconds remaining to reach shelter for the
// most recent active alert in the given area. The countdown continues to
// -60 after the shelter time elapses, then reports false.
func (c *Coordinator) ShelterCountdown(area string) (int, bool) {
	ref, ok := areas.Lookup(area)
	if !ok {
		return 0, false
	}

	now := c.now()
	for _, r := range c.Snapshot().Active(now) {
		if r.Area != area && !areas.IsWholeCountry(r.Area) {
			continue
		}
		if !category.IsAlertCategory(r.Category) {
			continue
		}
		t, err := r.Time()
		if err != nil {
			continue
		}
		remaining := ref.ShelterSeconds - int(now.Sub(t).Seconds())
		if remaining < -60 {
			return 0, false
		}
		return remaining, true
	}
	return 0, false
}
