package ratelimit

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// Metrics is the observability hook surface. The policy is "always
// observable, never silently degraded without a signal": the limiter
// reports fallback transitions, denials, evictions and size snapshots,
// and the implementation decides where they go.
type Metrics interface {
	// FallbackActivated fires once when the primary store becomes
	// unreachable and the in-memory path takes over.
	FallbackActivated(cause error)

	// FallbackSustained fires while the fallback stays active beyond the
	// configured alert threshold.
	FallbackSustained(activeFor time.Duration)

	// FallbackRecovered fires once when the primary store answers again.
	FallbackRecovered(wasActiveFor time.Duration)

	// Denied fires for every rejected request.
	Denied(clientKey string)

	// Eviction fires when the bounded fallback map drops its oldest key.
	Eviction()

	// SizeSnapshot reports the fallback map occupancy periodically.
	SizeSnapshot(size, capacity int)
}

// NopMetrics discards everything. Useful in tests.
type NopMetrics struct{}

func (NopMetrics) FallbackActivated(error)          {}
func (NopMetrics) FallbackSustained(time.Duration)  {}
func (NopMetrics) FallbackRecovered(time.Duration)  {}
func (NopMetrics) Denied(string)                    {}
func (NopMetrics) Eviction()                        {}
func (NopMetrics) SizeSnapshot(int, int)            {}

// LogMetrics forwards the hooks to slog, escalating the sustained
// fallback and near-capacity conditions to Sentry.
type LogMetrics struct {
	Log *slog.Logger
}

func (m LogMetrics) FallbackActivated(cause error) {
	m.Log.Error("rate limit: primary store unavailable, using in-memory fallback", "err", cause)
}

func (m LogMetrics) FallbackSustained(activeFor time.Duration) {
	m.Log.Error("rate limit: fallback sustained", "active_for", activeFor.Round(time.Second))
	sentry.CaptureMessage(fmt.Sprintf(
		"rate limit fallback sustained for %s", activeFor.Round(time.Minute)))
}

func (m LogMetrics) FallbackRecovered(wasActiveFor time.Duration) {
	m.Log.Warn("rate limit: primary store recovered", "fallback_duration", wasActiveFor.Round(time.Second))
}

func (m LogMetrics) Denied(clientKey string) {
	// clientKey carries only the IP and a keyed email hash, never a raw email.
	m.Log.Warn("rate limit: request denied", "key", clientKey)
}

func (m LogMetrics) Eviction() {
	m.Log.Warn("rate limit: memory cap reached, evicted oldest entry")
}

func (m LogMetrics) SizeSnapshot(size, capacity int) {
	m.Log.Debug("rate limit: fallback map size", "size", size, "capacity", capacity)

	if capacity > 0 && size*100 >= capacity*80 {
		m.Log.Warn("rate limit: fallback map near capacity", "size", size, "capacity", capacity)
		sentry.CaptureMessage(fmt.Sprintf(
			"rate limit fallback map at %d/%d entries", size, capacity))
	}
}
