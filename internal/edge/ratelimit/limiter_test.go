package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeCounter scripts the primary store: a fixed error, or an in-memory
// fixed window that mimics redis INCR+EXPIRE semantics.
type fakeCounter struct {
	mu      sync.Mutex
	err     error
	counts  map[string]int64
	resets  map[string]time.Time
	window  time.Duration
	clock   func() time.Time
	incrs   int
}

func newFakeCounter(clock func() time.Time) *fakeCounter {
	return &fakeCounter{
		counts: make(map[string]int64),
		resets: make(map[string]time.Time),
		clock:  clock,
	}
}

func (f *fakeCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.incrs++
	if f.err != nil {
		return 0, 0, f.err
	}

	now := f.clock()
	if reset, ok := f.resets[key]; !ok || now.After(reset) {
		f.counts[key] = 0
		f.resets[key] = now.Add(window)
	}
	f.counts[key]++
	return f.counts[key], f.resets[key].Sub(now), nil
}

type recordingMetrics struct {
	mu        sync.Mutex
	activated int
	sustained int
	recovered int
	denied    int
	evictions int
}

func (m *recordingMetrics) FallbackActivated(error) { m.mu.Lock(); m.activated++; m.mu.Unlock() }
func (m *recordingMetrics) FallbackSustained(time.Duration) {
	m.mu.Lock()
	m.sustained++
	m.mu.Unlock()
}
func (m *recordingMetrics) FallbackRecovered(time.Duration) {
	m.mu.Lock()
	m.recovered++
	m.mu.Unlock()
}
func (m *recordingMetrics) Denied(string)      { m.mu.Lock(); m.denied++; m.mu.Unlock() }
func (m *recordingMetrics) Eviction()          { m.mu.Lock(); m.evictions++; m.mu.Unlock() }
func (m *recordingMetrics) SizeSnapshot(int, int) {}

func TestLimiterFixedWindow(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	counter := newFakeCounter(clock)
	metrics := &recordingMetrics{}
	l := New(Config{}, counter, metrics)
	l.now = clock

	ctx := context.Background()

	t.Run("six requests allowed, seventh denied", func(t *testing.T) {
		for i := 0; i < 6; i++ {
			res := l.CheckAndIncrement(ctx, "1.2.3.4")
			require.True(t, res.Allowed, "request %d", i+1)
		}

		res := l.CheckAndIncrement(ctx, "1.2.3.4")
		require.False(t, res.Allowed)
		require.GreaterOrEqual(t, res.RetryAfterSeconds, 1)
		require.LessOrEqual(t, res.RetryAfterSeconds, 60)
		require.Equal(t, 1, metrics.denied)
	})

	t.Run("independent keys have independent windows", func(t *testing.T) {
		res := l.CheckAndIncrement(ctx, "5.6.7.8")
		require.True(t, res.Allowed)
	})

	t.Run("window elapse resets the count", func(t *testing.T) {
		current = current.Add(61 * time.Second)
		res := l.CheckAndIncrement(ctx, "1.2.3.4")
		require.True(t, res.Allowed)
	})
}

func TestLimiterFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	counter := newFakeCounter(clock)
	counter.err = errors.New("connection refused")

	metrics := &recordingMetrics{}
	l := New(Config{}, counter, metrics)
	l.now = clock
	l.fallback.now = clock

	ctx := context.Background()

	// Enforcement continues from the in-memory window.
	for i := 0; i < 6; i++ {
		require.True(t, l.CheckAndIncrement(ctx, "k").Allowed)
	}
	require.False(t, l.CheckAndIncrement(ctx, "k").Allowed)
	require.Equal(t, 1, metrics.activated)

	// Sustained outage past the alert threshold fires the sustained hook.
	current = current.Add(6 * time.Minute)
	l.CheckAndIncrement(ctx, "other")
	require.Equal(t, 1, metrics.sustained)

	// Primary comes back: recovery hook fires once.
	counter.err = nil
	l.CheckAndIncrement(ctx, "k")
	require.Equal(t, 1, metrics.recovered)
}

func TestLimiterWithoutPrimaryUsesMemoryOnly(t *testing.T) {
	t.Parallel()

	l := New(Config{Window: time.Minute, MaxRequests: 2}, nil, nil)
	ctx := context.Background()

	require.True(t, l.CheckAndIncrement(ctx, "k").Allowed)
	require.True(t, l.CheckAndIncrement(ctx, "k").Allowed)
	require.False(t, l.CheckAndIncrement(ctx, "k").Allowed)
}

func TestMemoryWindowEviction(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	metrics := &recordingMetrics{}
	m := newMemoryWindow(time.Minute, 6, 3, metrics, clock)

	for i := 0; i < 3; i++ {
		m.checkAndIncrement(fmt.Sprintf("key-%d", i), current)
	}
	require.Equal(t, 3, m.size())

	// A fourth key evicts the oldest insert, capping the map.
	m.checkAndIncrement("key-3", current)
	require.Equal(t, 3, m.size())
	require.Equal(t, 1, metrics.evictions)

	// key-0 is gone: counting it again starts a fresh window.
	res := m.checkAndIncrement("key-0", current)
	require.True(t, res.Allowed)
}

func TestMemoryWindowSweep(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	m := newMemoryWindow(time.Minute, 6, 100, &recordingMetrics{}, clock)

	m.checkAndIncrement("stale", current)
	current = current.Add(30 * time.Second)
	m.checkAndIncrement("fresh", current)

	// Past the first window but not the second.
	m.sweep(current.Add(45 * time.Second))
	require.Equal(t, 1, m.size())
}

func TestClientKey(t *testing.T) {
	t.Parallel()

	secret := []byte("salt")

	t.Run("ip only when email absent", func(t *testing.T) {
		require.Equal(t, "1.2.3.4", ClientKey("1.2.3.4", "", secret))
	})

	t.Run("email is hashed, never embedded raw", func(t *testing.T) {
		key := ClientKey("1.2.3.4", "user@example.com", secret)
		require.NotContains(t, key, "user@example.com")
		require.Contains(t, key, "1.2.3.4:")
	})

	t.Run("same email yields a stable key, case-insensitive", func(t *testing.T) {
		a := ClientKey("1.2.3.4", "User@Example.com", secret)
		b := ClientKey("1.2.3.4", "user@example.com", secret)
		require.Equal(t, a, b)
	})
}
