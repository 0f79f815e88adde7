package coordinator

import (
	"fmt"
	"time"

	"github.com/oref-monitor/orefmon/internal/alert"
)

// syntheticEntry is a locally injected alert with its own expiry. The
// record carries the Synthetic tag so overlap dedup and notification logic
// can treat it specially; in every other way it is indistinguishable from
// a fetched record.
type syntheticEntry struct {
	id        int
	record    alert.Record
	expiresAt time.Time
}

// AddSynthetic injects a synthetic alert visible for the given duration.
// The snapshot is republished immediately and again when the alert
// expires, so listeners see both transitions without waiting for a poll
// cycle. Returns an id usable with RemoveSynthetic.
func (c *Coordinator) AddSynthetic(area, title string, categoryCode int, duration time.Duration) int {
	now := c.now()

	c.mu.Lock()
	c.synthSeq++
	id := c.synthSeq
	c.synthetics = append(c.synthetics, syntheticEntry{
		id: id,
		record: alert.Record{
			Date:      now.In(alert.LocalZone).Format(alert.TimeLayout),
			Title:     title,
			Area:      area,
			Category:  categoryCode,
			Synthetic: true,
		},
		expiresAt: now.Add(duration),
	})
	c.mu.Unlock()

	c.logger.Info("Synthetic alert injected",
		"id", id,
		"area", area,
		"category", categoryCode,
		"duration", duration.String())

	c.publish()

	time.AfterFunc(duration, func() {
		select {
		case <-c.stop:
			return
		default:
		}
		c.publish()
	})

	return id
}

// RemoveSynthetic withdraws a synthetic alert before its expiry and
// republishes. Unknown ids are a no-op error.
func (c *Coordinator) RemoveSynthetic(id int) error {
	c.mu.Lock()
	found := false
	kept := c.synthetics[:0]
	for _, s := range c.synthetics {
		if s.id == id {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	c.synthetics = kept
	c.mu.Unlock()

	if !found {
		return fmt.Errorf("no synthetic alert with id %d", id)
	}

	c.publish()
	return nil
}

// liveSyntheticsLocked drops expired entries and returns the live ones.
// Expiry is inclusive: an entry is gone at exactly its expiry instant.
// Callers must hold mu.
func (c *Coordinator) liveSyntheticsLocked(now time.Time) []syntheticEntry {
	kept := c.synthetics[:0]
	for _, s := range c.synthetics {
		if now.Before(s.expiresAt) {
			kept = append(kept, s)
		}
	}
	c.synthetics = kept
	return kept
}
