// Package ratelimit provides per-client admission control with fixed
// wall-clock windows, applied before any query work is performed.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/calder-labs/prizedex/internal/domain"
)

// Default budgets: 200/day and 50/hour overall, 10/minute per search
// endpoint per client.
const (
	DefaultPerMinute = 10
	DefaultPerHour   = 50
	DefaultPerDay    = 200
)

// Quota holds the per-window budgets. Zero disables a window.
type Quota struct {
	PerMinute int
	PerHour   int
	PerDay    int
}

// DefaultQuota returns the default budgets.
func DefaultQuota() Quota {
	return Quota{
		PerMinute: DefaultPerMinute,
		PerHour:   DefaultPerHour,
		PerDay:    DefaultPerDay,
	}
}

type window struct {
	start time.Time
	count int
}

// Limiter counts requests per client in fixed windows that reset on
// wall-clock boundaries. The per-minute window is additionally keyed by
// endpoint so each search route has its own tight budget.
type Limiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	quota     Quota
	now       func() time.Time
	lastSweep time.Time
}

// New creates a limiter with the given quota.
func New(quota Quota) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		quota:   quota,
		now:     time.Now,
	}
}

// WithClock overrides the time source (tests only).
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow admits one request from client against endpoint, or returns a
// rate-limit error naming the exhausted window. Rejected requests still
// consume budget in the wider windows, matching fixed-window semantics.
func (l *Limiter) Allow(client, endpoint string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	checks := []struct {
		key    string
		budget int
		unit   time.Duration
		label  string
	}{
		{client + "|" + endpoint + "|m", l.quota.PerMinute, time.Minute, "per-minute"},
		{client + "|h", l.quota.PerHour, time.Hour, "per-hour"},
		{client + "|d", l.quota.PerDay, 24 * time.Hour, "per-day"},
	}

	var exceeded string
	for _, c := range checks {
		if c.budget <= 0 {
			continue
		}
		if l.bump(c.key, now.Truncate(c.unit)) > c.budget {
			if exceeded == "" {
				exceeded = c.label
			}
		}
	}

	if exceeded != "" {
		return fmt.Errorf("%w: %s quota exceeded for %s", domain.ErrRateLimited, exceeded, client)
	}
	return nil
}

// sweep drops windows that started more than a day ago, so counters for
// departed clients do not accumulate forever. Runs at most once per hour.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < time.Hour {
		return
	}
	l.lastSweep = now

	cutoff := now.Add(-24 * time.Hour)
	for key, w := range l.windows {
		if w.start.Before(cutoff) {
			delete(l.windows, key)
		}
	}
}

// bump increments the counter for key within the window starting at
// windowStart, resetting it when the window has rolled over.
func (l *Limiter) bump(key string, windowStart time.Time) int {
	w := l.windows[key]
	if w == nil || !w.start.Equal(windowStart) {
		w = &window{start: windowStart}
		l.windows[key] = w
	}
	w.count++
	return w.count
}
