// Package alert defines the normalized alert record model shared by the
// coordinator and every downstream consumer, together with the pure
// operations on it: wire-shape normalization, merge ordering, overlap
// deduplication and the active-window check.
package alert

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"
)

// TimeLayout is the wall-clock timestamp format used by the history feed
// and stamped onto normalized current-feed records.
const TimeLayout = "2006-01-02 15:04:05"

// LocalZone is the fixed-offset zone all record timestamps are expressed in.
// The upstream feeds publish wall-clock times in this zone, never UTC.
var LocalZone = time.FixedZone("IST", 2*60*60)

// Record represents a normalized alert in the history-feed shape:
// exactly one area per record.
type Record struct {
	// Date is the alert timestamp formatted as TimeLayout in LocalZone
	Date string `json:"alertDate"`

	// Title is the human-readable alert title from the feed
	Title string `json:"title"`

	// Area is the geographic area name this record applies to
	Area string `json:"data"`

	// Category is the numeric alert category code
	Category int `json:"category"`

	// Synthetic marks locally injected records. It never comes off the
	// wire and is excluded from the current/history overlap dedup.
	Synthetic bool `json:"-"`
}

// Time parses the record timestamp in LocalZone.
func (r Record) Time() (time.Time, error) {
	return time.ParseInLocation(TimeLayout, r.Date, LocalZone)
}

// IsActive reports whether the record is inside the active window at now.
// A record stamped ahead of the local clock counts as active right away,
// so upstream clock skew cannot hide a live alert; activity then only
// ever flips from true to false as the record ages out. A record with an
// unparseable timestamp is never active.
func (r Record) IsActive(maxAge time.Duration, now time.Time) bool {
	t, err := r.Time()
	if err != nil {
		return false
	}
	return now.Sub(t) < maxAge
}

// CurrentAlert is the wire shape of the real-time feed: a single payload
// carrying one title/category and the full list of affected areas.
type CurrentAlert struct {
	Title    string
	Category int
	Areas    []string
}

// UnmarshalJSON implements custom JSON unmarshaling for CurrentAlert.
// The feed serializes the category as a quoted string ("cat": "1"), so it
// is accepted as either a string or a number.
func (c *CurrentAlert) UnmarshalJSON(data []byte) error {
	aux := struct {
		Title string      `json:"title"`
		Cat   json.Number `json:"cat"`
		Data  []string    `json:"data"`
	}{}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.Title = aux.Title
	c.Areas = aux.Data

	if aux.Cat != "" {
		cat, err := strconv.Atoi(aux.Cat.String())
		if err != nil {
			return err
		}
		c.Category = cat
	}

	return nil
}

// Normalize expands a current-feed payload into one history-shaped record
// per area, stamped with now in LocalZone.
func Normalize(cur CurrentAlert, now time.Time) []Record {
	stamp := now.In(LocalZone).Format(TimeLayout)

	records := make([]Record, 0, len(cur.Areas))
	for _, area := range cur.Areas {
		records = append(records, Record{
			Date:     stamp,
			Title:    cur.Title,
			Area:     area,
			Category: cur.Category,
		})
	}
	return records
}

// Sort orders records by descending timestamp, then ascending area name.
// The timestamp format is lexicographically ordered, so string comparison
// on Date is chronological and the result is deterministic for identical
// inputs.
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].Area < records[j].Area
	})
}

// SameEvent reports whether two records describe the same event for the
// purpose of current/history overlap dedup: same area, timestamps within
// tolerance. Synthetic records never match anything.
func SameEvent(a, b Record, tolerance time.Duration) bool {
	if a.Synthetic || b.Synthetic {
		return false
	}
	if a.Area != b.Area {
		return false
	}

	ta, err := a.Time()
	if err != nil {
		return false
	}
	tb, err := b.Time()
	if err != nil {
		return false
	}

	diff := ta.Sub(tb)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// Dedup collapses records that are the same event under SameEvent, keeping
// the first occurrence. The input is expected to be sorted; order is
// preserved.
func Dedup(records []Record, tolerance time.Duration) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		dup := false
		for _, kept := range out {
			if SameEvent(r, kept, tolerance) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// Active filters records to those inside the active window at now.
func Active(records []Record, maxAge time.Duration, now time.Time) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.IsActive(maxAge, now) {
			out = append(out, r)
		}
	}
	return out
}
