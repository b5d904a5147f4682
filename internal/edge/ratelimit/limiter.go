// Package ratelimit implements fixed-window rate limiting for the form
// endpoints: a shared Redis counter is the authoritative path, with a
// bounded in-process fallback when Redis is unreachable. Enforcement is
// never skipped; a dead store degrades the limiter, it does not disable it.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/discoveruz/edge/pkg/cryptox"
)

// Defaults match the contact form profile: 6 requests per rolling-fixed
// 60 second window. The fixed-window boundary burst (up to 2x across a
// reset) is a known, accepted characteristic of the design.
const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxRequests = 6
)

// Result is the outcome of a single check-and-increment.
type Result struct {
	Allowed bool
	// RetryAfterSeconds is the time until the window resets. Only set
	// when the request was denied.
	RetryAfterSeconds int
}

// Counter is the external store dependency. Increment must be atomic at
// the store; the first increment of a window starts the expiry clock.
// Errors are returned as values so the caller can choose the fallback
// path explicitly.
type Counter interface {
	// Incr increments key, setting it to expire after window if this is
	// the first increment. It returns the post-increment count and the
	// remaining time to live.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// Config holds limiter parameters. Zero values take the defaults above.
type Config struct {
	Window      time.Duration
	MaxRequests int

	// MaxFallbackEntries bounds the in-memory fallback map (default 10000).
	MaxFallbackEntries int

	// SustainedFallbackAlert is how long the fallback may stay active
	// before the sustained alert fires (default 5 minutes).
	SustainedFallbackAlert time.Duration
}

func (c *Config) fillDefaults() {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.MaxRequests <= 0 {
		c.MaxRequests = DefaultMaxRequests
	}
	if c.MaxFallbackEntries <= 0 {
		c.MaxFallbackEntries = 10000
	}
	if c.SustainedFallbackAlert <= 0 {
		c.SustainedFallbackAlert = 5 * time.Minute
	}
}

// Limiter is an explicitly constructed, dependency-injected instance: it
// owns its fallback map and configuration, so lifecycle and test
// isolation never depend on process-wide singletons.
type Limiter struct {
	cfg     Config
	primary Counter // nil means fallback-only (no Redis configured)
	metrics Metrics

	fallback *memoryWindow

	mu            sync.Mutex
	fallbackSince time.Time // zero when the primary path is healthy

	now func() time.Time
}

// New builds a Limiter. primary may be nil when no shared store is
// configured; metrics may be nil for silent operation.
func New(cfg Config, primary Counter, metrics Metrics) *Limiter {
	cfg.fillDefaults()
	if metrics == nil {
		metrics = NopMetrics{}
	}

	now := time.Now
	return &Limiter{
		cfg:      cfg,
		primary:  primary,
		metrics:  metrics,
		fallback: newMemoryWindow(cfg.Window, cfg.MaxRequests, cfg.MaxFallbackEntries, metrics, now),
		now:      now,
	}
}

// CheckAndIncrement counts one request against clientKey and reports
// whether it is allowed within the current window.
func (l *Limiter) CheckAndIncrement(ctx context.Context, clientKey string) Result {
	if l.primary != nil {
		count, ttl, err := l.primary.Incr(ctx, "rl:contact:"+clientKey, l.cfg.Window)
		if err == nil {
			l.notePrimaryHealthy()

			res := Result{Allowed: count <= int64(l.cfg.MaxRequests)}
			if !res.Allowed {
				res.RetryAfterSeconds = max(int(ttl.Seconds()), 1)
				l.metrics.Denied(clientKey)
			}
			return res
		}

		l.notePrimaryDown(err)
	}

	res := l.fallback.checkAndIncrement(clientKey, l.now())
	if !res.Allowed {
		l.metrics.Denied(clientKey)
	}
	return res
}

// StartSweeper launches the background sweep that removes expired
// fallback entries independent of lookup-triggered cleanup. It returns
// when ctx is done.
func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.fallback.sweep(l.now())
			l.fallback.reportSize()
		}
	}
}

func (l *Limiter) notePrimaryHealthy() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.fallbackSince.IsZero() {
		l.metrics.FallbackRecovered(l.now().Sub(l.fallbackSince))
		l.fallbackSince = time.Time{}
	}
}

func (l *Limiter) notePrimaryDown(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fallbackSince.IsZero() {
		l.fallbackSince = l.now()
		l.metrics.FallbackActivated(err)
		return
	}

	if d := l.now().Sub(l.fallbackSince); d > l.cfg.SustainedFallbackAlert {
		l.metrics.FallbackSustained(d)
	}
}

// ClientKey builds the composite rate-limit key: the client network
// identity, optionally joined with a keyed hash of the email so one IP
// cannot split itself across fake addresses, and so raw emails never
// appear in keys or logs.
func ClientKey(ip, email string, emailSecret []byte) string {
	if email == "" {
		return ip
	}
	return ip + ":" + cryptox.HashIdentifier(emailSecret, email)
}
