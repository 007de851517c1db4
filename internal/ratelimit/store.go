// Package ratelimit implements a per-client sliding-window quota.
//
// A client may have at most Policy.Limit accepted requests within any
// trailing Policy.Window. Rejected attempts are never recorded, so a client
// that keeps retrying while over quota does not extend its own lockout.
package ratelimit

import (
	"context"
	"math"
	"time"

	"github.com/nulzo/neurix/internal/config"
)

type Policy struct {
	Limit  int
	Window time.Duration
	// MaxClients bounds the in-memory table; exceeding it clears every entry.
	MaxClients int
}

func PolicyFromConfig(cfg config.RateLimitConfig) Policy {
	return Policy{Limit: cfg.Limit, Window: cfg.Window, MaxClients: cfg.MaxClients}
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until the oldest accepted request leaves the
	// window. Zero when Allowed.
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below 1.
func (d Decision) RetryAfterSeconds() int {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// Store prunes, checks and records for one key as a single atomic step.
type Store interface {
	Allow(ctx context.Context, key string, now time.Time) (Decision, error)
	// Clients reports how many keys are currently tracked.
	Clients(ctx context.Context) (int, error)
}

// Limiter binds a Store to a clock.
type Limiter struct {
	store Store
	now   func() time.Time
}

func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	return l.store.Allow(ctx, key, l.now())
}
