// Package window provides a bounded, time-pruned collection used to
// remember recently seen items, typically for notification dedup.
package window

import (
	"container/list"
	"sync"
	"time"
)

type entry[T any] struct {
	at      time.Time
	payload T
}

// Window is a TTL-bound ordered collection, most-recent at the front.
// Expiry is lazy: entries are pruned from the tail on access, never by a
// background timer. Safe for concurrent use.
type Window[T any] struct {
	mu  sync.Mutex
	ttl time.Duration
	ll  *list.List

	now func() time.Time // overridable for tests
}

// New creates a window with a fixed TTL.
func New[T any](ttl time.Duration) *Window[T] {
	return &Window[T]{
		ttl: ttl,
		ll:  list.New(),
		now: time.Now,
	}
}

// Add inserts an item at the head with the current timestamp, then prunes
// expired entries from the tail.
func (w *Window[T]) Add(item T) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.ll.PushFront(entry[T]{at: w.now(), payload: item})
	w.prune()
}

// Items prunes, then returns all live items, most-recent first.
func (w *Window[T]) Items() []T {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune()

	items := make([]T, 0, w.ll.Len())
	for el := w.ll.Front(); el != nil; el = el.Next() {
		items = append(items, el.Value.(entry[T]).payload)
	}
	return items
}

// Changed prunes, then returns the timestamp of the most-recent item, or
// the zero time if the window is empty.
func (w *Window[T]) Changed() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune()

	front := w.ll.Front()
	if front == nil {
		return time.Time{}
	}
	return front.Value.(entry[T]).at
}

// prune removes entries from the tail while their age meets or exceeds the
// TTL. Callers must hold mu. Repeated calls with nothing expired are no-ops.
func (w *Window[T]) prune() {
	now := w.now()
	for {
		back := w.ll.Back()
		if back == nil {
			return
		}
		if now.Sub(back.Value.(entry[T]).at) < w.ttl {
			return
		}
		w.ll.Remove(back)
	}
}
