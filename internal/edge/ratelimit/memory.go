package ratelimit

import (
	"sync"
	"time"
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// memoryWindow is the in-process fallback: same fixed-window semantics as
// the shared store, but per-process. Strictly worse than Redis (counts
// are not shared), yet it preserves fail-secure behaviour when Redis is
// down. Bounded; when full, the oldest-inserted key is evicted (FIFO).
type memoryWindow struct {
	window      time.Duration
	maxRequests int
	maxEntries  int
	metrics     Metrics
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*windowEntry
	// insertion order for FIFO eviction; stale keys are skipped on pop
	order []string
}

func newMemoryWindow(window time.Duration, maxRequests, maxEntries int, metrics Metrics, now func() time.Time) *memoryWindow {
	return &memoryWindow{
		window:      window,
		maxRequests: maxRequests,
		maxEntries:  maxEntries,
		metrics:     metrics,
		now:         now,
		entries:     make(map[string]*windowEntry),
	}
}

func (m *memoryWindow) checkAndIncrement(key string, now time.Time) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok || now.After(entry.resetAt) {
		if !ok && len(m.entries) >= m.maxEntries {
			m.evictOldestLocked()
		}
		if !ok {
			m.order = append(m.order, key)
		}
		m.entries[key] = &windowEntry{count: 1, resetAt: now.Add(m.window)}
		return Result{Allowed: true}
	}

	entry.count++
	if entry.count > m.maxRequests {
		return Result{
			Allowed:           false,
			RetryAfterSeconds: max(int(entry.resetAt.Sub(now).Seconds()+0.999), 1),
		}
	}
	return Result{Allowed: true}
}

// evictOldestLocked removes the oldest-inserted live key. Entries already
// deleted by the sweeper leave stale order slots behind; those are
// skipped without counting as an eviction.
func (m *memoryWindow) evictOldestLocked() {
	for len(m.order) > 0 {
		oldest := m.order[0]
		m.order = m.order[1:]

		if _, live := m.entries[oldest]; live {
			delete(m.entries, oldest)
			m.metrics.Eviction()
			return
		}
	}
}

// sweep removes entries whose window has already elapsed, bounding
// steady-state memory independent of lookups.
func (m *memoryWindow) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, entry := range m.entries {
		if now.After(entry.resetAt) {
			delete(m.entries, key)
		}
	}

	// Compact the order slice so it can't grow past the live set forever.
	live := m.order[:0]
	for _, key := range m.order {
		if _, ok := m.entries[key]; ok {
			live = append(live, key)
		}
	}
	m.order = live
}

func (m *memoryWindow) reportSize() {
	m.mu.Lock()
	size := len(m.entries)
	m.mu.Unlock()

	m.metrics.SizeSnapshot(size, m.maxEntries)
}

func (m *memoryWindow) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
