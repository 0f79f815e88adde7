package alert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentAlert_UnmarshalJSON(t *testing.T) {
	t.Run("category as quoted string", func(t *testing.T) {
		var cur CurrentAlert
		err := json.Unmarshal([]byte(`{"title":"T","cat":"1","data":["Tel Aviv"]}`), &cur)
		require.NoError(t, err)

		assert.Equal(t, "T", cur.Title)
		assert.Equal(t, 1, cur.Category)
		assert.Equal(t, []string{"Tel Aviv"}, cur.Areas)
	})

	t.Run("category as number", func(t *testing.T) {
		var cur CurrentAlert
		err := json.Unmarshal([]byte(`{"title":"T","cat":14,"data":["Haifa","Akko"]}`), &cur)
		require.NoError(t, err)

		assert.Equal(t, 14, cur.Category)
		assert.Len(t, cur.Areas, 2)
	})

	t.Run("non-numeric category is an error", func(t *testing.T) {
		var cur CurrentAlert
		err := json.Unmarshal([]byte(`{"title":"T","cat":"abc","data":[]}`), &cur)
		assert.Error(t, err)
	})
}

func TestNormalize(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC)

	records := Normalize(CurrentAlert{
		Title:    "Rocket fire",
		Category: 1,
		Areas:    []string{"Tel Aviv", "Ramat Gan"},
	}, now)

	require.Len(t, records, 2)
	for _, r := range records {
		// 12:30:45 UTC is 14:30:45 at UTC+2
		assert.Equal(t, "2026-03-01 14:30:45", r.Date)
		assert.Equal(t, "Rocket fire", r.Title)
		assert.Equal(t, 1, r.Category)
		assert.False(t, r.Synthetic)
	}
	assert.Equal(t, "Tel Aviv", records[0].Area)
	assert.Equal(t, "Ramat Gan", records[1].Area)
}

func TestSort(t *testing.T) {
	records := []Record{
		{Date: "2026-03-01 10:00:00", Area: "Haifa"},
		{Date: "2026-03-01 12:00:00", Area: "Tel Aviv"},
		{Date: "2026-03-01 12:00:00", Area: "Ashdod"},
		{Date: "2026-03-01 11:00:00", Area: "Eilat"},
	}

	Sort(records)

	// Descending time, ascending area as tie-break
	assert.Equal(t, "Ashdod", records[0].Area)
	assert.Equal(t, "Tel Aviv", records[1].Area)
	assert.Equal(t, "Eilat", records[2].Area)
	assert.Equal(t, "Haifa", records[3].Area)
}

func TestSort_Deterministic(t *testing.T) {
	build := func() []Record {
		return []Record{
			{Date: "2026-03-01 12:00:00", Area: "B", Category: 1},
			{Date: "2026-03-01 12:00:00", Area: "A", Category: 2},
			{Date: "2026-03-01 13:00:00", Area: "C", Category: 3},
		}
	}

	a, b := build(), build()
	Sort(a)
	Sort(b)
	assert.Equal(t, a, b)
}

func TestIsActive(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, LocalZone)
	rec := Record{Date: "2026-03-01 12:00:00", Area: "Tel Aviv"}

	t.Run("inside window", func(t *testing.T) {
		assert.True(t, rec.IsActive(10*time.Minute, base.Add(9*time.Minute)))
	})

	t.Run("outside window", func(t *testing.T) {
		assert.False(t, rec.IsActive(10*time.Minute, base.Add(10*time.Minute)))
	})

	t.Run("monotonic in now", func(t *testing.T) {
		// Once inactive, later instants only age the record further
		now := base.Add(10 * time.Minute)
		require.False(t, rec.IsActive(10*time.Minute, now))
		for i := 1; i <= 5; i++ {
			assert.False(t, rec.IsActive(10*time.Minute, now.Add(time.Duration(i)*time.Minute)))
		}
	})

	t.Run("future timestamp is active immediately", func(t *testing.T) {
		// Upstream clocks run ahead of ours at times; a record stamped
		// in the near future is live now, not once we catch up.
		skewed := Record{Date: "2026-03-01 12:00:05", Area: "Tel Aviv"}
		assert.True(t, skewed.IsActive(10*time.Minute, base))
		assert.True(t, skewed.IsActive(10*time.Minute, base.Add(5*time.Second)))
	})

	t.Run("unparseable timestamp is never active", func(t *testing.T) {
		bad := Record{Date: "not-a-time", Area: "Tel Aviv"}
		assert.False(t, bad.IsActive(10*time.Minute, base))
	})
}

func TestSameEvent(t *testing.T) {
	a := Record{Date: "2026-03-01 12:00:00", Area: "Tel Aviv", Category: 1}

	t.Run("same area within tolerance", func(t *testing.T) {
		b := Record{Date: "2026-03-01 12:00:03", Area: "Tel Aviv", Category: 1}
		assert.True(t, SameEvent(a, b, 5*time.Second))
	})

	t.Run("same area outside tolerance", func(t *testing.T) {
		b := Record{Date: "2026-03-01 12:00:10", Area: "Tel Aviv", Category: 1}
		assert.False(t, SameEvent(a, b, 5*time.Second))
	})

	t.Run("different area", func(t *testing.T) {
		b := Record{Date: "2026-03-01 12:00:00", Area: "Haifa", Category: 1}
		assert.False(t, SameEvent(a, b, 5*time.Second))
	})

	t.Run("synthetic never matches", func(t *testing.T) {
		b := a
		b.Synthetic = true
		assert.False(t, SameEvent(a, b, 5*time.Second))
		assert.False(t, SameEvent(b, a, 5*time.Second))
	})
}

func TestDedup(t *testing.T) {
	t.Run("overlap collapses to one record", func(t *testing.T) {
		records := []Record{
			{Date: "2026-03-01 12:00:00", Area: "Tel Aviv", Category: 1, Title: "current"},
			{Date: "2026-03-01 12:00:02", Area: "Tel Aviv", Category: 1, Title: "history"},
		}

		out := Dedup(records, 5*time.Second)
		require.Len(t, out, 1)
		assert.Equal(t, "current", out[0].Title)
	})

	t.Run("distinct events survive", func(t *testing.T) {
		records := []Record{
			{Date: "2026-03-01 12:00:00", Area: "Tel Aviv", Category: 1},
			{Date: "2026-03-01 11:00:00", Area: "Tel Aviv", Category: 1},
			{Date: "2026-03-01 12:00:00", Area: "Haifa", Category: 1},
		}

		out := Dedup(records, 5*time.Second)
		assert.Len(t, out, 3)
	})

	t.Run("synthetic records are never collapsed", func(t *testing.T) {
		records := []Record{
			{Date: "2026-03-01 12:00:00", Area: "Tel Aviv", Category: 1},
			{Date: "2026-03-01 12:00:00", Area: "Tel Aviv", Category: 1, Synthetic: true},
		}

		out := Dedup(records, 5*time.Second)
		assert.Len(t, out, 2)
	})
}

func TestActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, LocalZone)
	records := []Record{
		{Date: "2026-03-01 11:55:00", Area: "Tel Aviv"},
		{Date: "2026-03-01 11:00:00", Area: "Haifa"},
	}

	active := Active(records, 10*time.Minute, now)
	require.Len(t, active, 1)
	assert.Equal(t, "Tel Aviv", active[0].Area)
}
