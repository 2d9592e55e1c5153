package ratelimit

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/calder-labs/prizedex/internal/domain"
)

// fakeClock is a settable time source.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	// mid-window start so Truncate actually truncates
	return &fakeClock{t: time.Date(2024, 6, 1, 10, 30, 30, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(q Quota) (*Limiter, *fakeClock) {
	clock := newFakeClock()
	return New(q).WithClock(clock.now), clock
}

func TestAllow_UnderBudget(t *testing.T) {
	l, _ := newTestLimiter(DefaultQuota())

	for i := 0; i < DefaultPerMinute; i++ {
		if err := l.Allow("client-a", "name"); err != nil {
			t.Fatalf("request %d rejected: %v", i+1, err)
		}
	}
}

func TestAllow_MinuteBudgetExhausted(t *testing.T) {
	l, _ := newTestLimiter(Quota{PerMinute: 3, PerHour: 100, PerDay: 100})

	for i := 0; i < 3; i++ {
		if err := l.Allow("client-a", "name"); err != nil {
			t.Fatalf("request %d rejected: %v", i+1, err)
		}
	}

	err := l.Allow("client-a", "name")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestAllow_MinuteWindowPerEndpoint(t *testing.T) {
	l, _ := newTestLimiter(Quota{PerMinute: 1, PerHour: 100, PerDay: 100})

	if err := l.Allow("client-a", "name"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a different endpoint has its own minute budget
	if err := l.Allow("client-a", "category"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Allow("client-a", "name"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestAllow_ClientsIndependent(t *testing.T) {
	l, _ := newTestLimiter(Quota{PerMinute: 1, PerHour: 100, PerDay: 100})

	if err := l.Allow("client-a", "name"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Allow("client-b", "name"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAllow_MinuteWindowResets(t *testing.T) {
	l, clock := newTestLimiter(Quota{PerMinute: 1, PerHour: 100, PerDay: 100})

	if err := l.Allow("client-a", "name"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Allow("client-a", "name"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	clock.advance(time.Minute)
	if err := l.Allow("client-a", "name"); err != nil {
		t.Fatalf("expected fresh window after a minute, got %v", err)
	}
}

func TestAllow_HourWindowSpansEndpoints(t *testing.T) {
	// hour budget counts all endpoints of a client together
	l, _ := newTestLimiter(Quota{PerMinute: 100, PerHour: 2, PerDay: 100})

	if err := l.Allow("client-a", "name"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Allow("client-a", "category"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Allow("client-a", "year"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestAllow_DayWindowOutlivesHour(t *testing.T) {
	l, clock := newTestLimiter(Quota{PerMinute: 100, PerHour: 100, PerDay: 2})

	if err := l.Allow("client-a", "name"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock.advance(2 * time.Hour)
	if err := l.Allow("client-a", "name"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock.advance(2 * time.Hour)
	if err := l.Allow("client-a", "name"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestAllow_ZeroBudgetDisablesWindow(t *testing.T) {
	l, _ := newTestLimiter(Quota{PerMinute: 0, PerHour: 0, PerDay: 1})

	if err := l.Allow("client-a", "name"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Allow("client-a", "name"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestAllow_ErrorNamesWindow(t *testing.T) {
	l, _ := newTestLimiter(Quota{PerMinute: 1, PerHour: 100, PerDay: 100})

	_ = l.Allow("client-a", "name")
	err := l.Allow("client-a", "name")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "per-minute") {
		t.Errorf("error %q does not name the exhausted window", got)
	}
}

func TestDefaultQuota(t *testing.T) {
	q := DefaultQuota()
	if q.PerMinute != 10 || q.PerHour != 50 || q.PerDay != 200 {
		t.Errorf("unexpected defaults: %+v", q)
	}
}

func TestAllow_SweepsDepartedClients(t *testing.T) {
	l, clock := newTestLimiter(DefaultQuota())

	if err := l.Allow("old-client", "name"); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}

	// a day later the old client's windows are all expired and the next
	// admission check drops them
	clock.advance(25 * time.Hour)
	if err := l.Allow("new-client", "name"); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.windows {
		if strings.HasPrefix(key, "old-client|") {
			t.Errorf("expired window %q still tracked", key)
		}
	}
}
