package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"

	"github.com/calder-labs/prizedex/internal/domain"
)

// Default probe schedule: 5 attempts, 5 seconds apart.
const (
	DefaultProbeAttempts = 5
	DefaultProbeDelay    = 5 * time.Second
)

// Feed fetches the source dataset.
type Feed interface {
	Fetch(ctx context.Context) ([]domain.Prize, error)
}

// Repository is the record-store surface the loader needs.
type Repository interface {
	Exists(ctx context.Context) (bool, error)
	Count(ctx context.Context) (int, error)
	BulkInsert(ctx context.Context, prizes []domain.Prize) error
}

// Prober checks store reachability.
type Prober interface {
	Ping(ctx context.Context) error
}

// LoadResult reports what a Load invocation did.
type LoadResult struct {
	Loaded      bool
	RecordCount int
}

// Loader populates the store once. Safe to run on every process start:
// it inserts only when the store holds no data. The check-then-insert is
// best effort; two instances racing an empty store can both insert, which
// only inflates counts since the dataset is read-only afterward.
type Loader struct {
	feed   Feed
	repo   Repository
	probe  Prober
	logger *zap.Logger

	probeAttempts uint
	probeDelay    time.Duration
}

// NewLoader creates a loader with the default probe schedule.
func NewLoader(feed Feed, repo Repository, probe Prober, logger *zap.Logger) *Loader {
	return &Loader{
		feed:          feed,
		repo:          repo,
		probe:         probe,
		logger:        logger,
		probeAttempts: DefaultProbeAttempts,
		probeDelay:    DefaultProbeDelay,
	}
}

// WithProbeSchedule overrides the reachability probe attempts and delay.
func (l *Loader) WithProbeSchedule(attempts uint, delay time.Duration) *Loader {
	if attempts > 0 {
		l.probeAttempts = attempts
	}
	if delay > 0 {
		l.probeDelay = delay
	}
	return l
}

// Load probes the store, checks whether data is already present, and
// performs the bulk insert when the store is empty. Insert failures are
// reported, not retried: the fetch already succeeded, so a full retry
// cycle is left to a process restart.
func (l *Loader) Load(ctx context.Context) (LoadResult, error) {
	if err := l.waitForStore(ctx); err != nil {
		return LoadResult{}, err
	}

	exists, err := l.repo.Exists(ctx)
	if err != nil {
		return LoadResult{}, fmt.Errorf("check index: %w", err)
	}
	if exists {
		count, err := l.repo.Count(ctx)
		if err != nil {
			return LoadResult{}, fmt.Errorf("count records: %w", err)
		}
		if count > 0 {
			l.logger.Info("Data already loaded, skipping",
				zap.Int("record_count", count))
			return LoadResult{Loaded: false, RecordCount: count}, nil
		}
	}

	prizes, err := l.feed.Fetch(ctx)
	if err != nil {
		return LoadResult{}, err
	}

	if err := l.repo.BulkInsert(ctx, prizes); err != nil {
		return LoadResult{}, fmt.Errorf("bulk insert: %w", err)
	}

	l.logger.Info("Loaded prize dataset", zap.Int("record_count", len(prizes)))
	return LoadResult{Loaded: true, RecordCount: len(prizes)}, nil
}

// waitForStore pings with a fixed delay between bounded attempts.
func (l *Loader) waitForStore(ctx context.Context) error {
	err := retry.Do(
		func() error {
			return l.probe.Ping(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(l.probeAttempts),
		retry.Delay(l.probeDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			l.logger.Warn("Store not ready, retrying",
				zap.Uint("attempt", n+1),
				zap.Uint("max_attempts", l.probeAttempts),
				zap.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
