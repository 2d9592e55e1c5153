package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calder-labs/prizedex/internal/domain"
)

type stubFeed struct {
	prizes []domain.Prize
	err    error
	calls  int
}

func (s *stubFeed) Fetch(_ context.Context) ([]domain.Prize, error) {
	s.calls++
	return s.prizes, s.err
}

type stubRepo struct {
	exists    bool
	existsErr error
	count     int
	countErr  error
	insertErr error

	inserted []domain.Prize
}

func (s *stubRepo) Exists(_ context.Context) (bool, error) { return s.exists, s.existsErr }
func (s *stubRepo) Count(_ context.Context) (int, error) { return s.count, s.countErr }
func (s *stubRepo) BulkInsert(_ context.Context, prizes []domain.Prize) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = prizes
	return nil
}

type stubProber struct {
	errs  []error // consumed per call; empty means success
	calls int
}

func (s *stubProber) Ping(_ context.Context) error {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return err
	}
	return nil
}

func newTestLoader(feed Feed, repo Repository, probe Prober) *Loader {
	return NewLoader(feed, repo, probe, zap.NewNop()).
		WithProbeSchedule(3, time.Millisecond)
}

func TestLoad_EmptyStore(t *testing.T) {
	feed := &stubFeed{prizes: []domain.Prize{{Year: 1990, Category: "physics"}}}
	repo := &stubRepo{}
	l := newTestLoader(feed, repo, &stubProber{})

	result, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Loaded)
	assert.Equal(t, 1, result.RecordCount)
	assert.Len(t, repo.inserted, 1)
}

func TestLoad_AlreadyLoaded(t *testing.T) {
	// second start against a populated store: no fetch, no insert
	feed := &stubFeed{}
	repo := &stubRepo{exists: true, count: 590}
	l := newTestLoader(feed, repo, &stubProber{})

	result, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Loaded)
	assert.Equal(t, 590, result.RecordCount)
	assert.Zero(t, feed.calls)
	assert.Nil(t, repo.inserted)
}

func TestLoad_IndexExistsButEmpty(t *testing.T) {
	// an index with zero documents still gets loaded
	feed := &stubFeed{prizes: []domain.Prize{{Year: 1990, Category: "peace"}}}
	repo := &stubRepo{exists: true, count: 0}
	l := newTestLoader(feed, repo, &stubProber{})

	result, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Loaded)
	assert.Len(t, repo.inserted, 1)
}

func TestLoad_ProbeRecovers(t *testing.T) {
	// first two pings fail, third succeeds within the schedule
	probe := &stubProber{errs: []error{errors.New("refused"), errors.New("refused")}}
	feed := &stubFeed{prizes: []domain.Prize{{Year: 1990, Category: "physics"}}}
	repo := &stubRepo{}
	l := newTestLoader(feed, repo, probe)

	_, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, probe.calls)
}

func TestLoad_StoreUnavailable(t *testing.T) {
	probe := &stubProber{errs: []error{
		errors.New("refused"), errors.New("refused"), errors.New("refused"),
	}}
	feed := &stubFeed{}
	l := newTestLoader(feed, &stubRepo{}, probe)

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.Equal(t, 3, probe.calls)
	assert.Zero(t, feed.calls, "feed must not be fetched when the store is unreachable")
}

func TestLoad_FetchError(t *testing.T) {
	feed := &stubFeed{err: domain.ErrIngestion}
	repo := &stubRepo{}
	l := newTestLoader(feed, repo, &stubProber{})

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIngestion))
	assert.Nil(t, repo.inserted)
}

func TestLoad_InsertError(t *testing.T) {
	feed := &stubFeed{prizes: []domain.Prize{{Year: 1990, Category: "physics"}}}
	repo := &stubRepo{insertErr: errors.New("write failed")}
	l := newTestLoader(feed, repo, &stubProber{})

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, feed.calls, "fetch happens once; no retry after a failed insert")
}

func TestLoad_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe := &stubProber{errs: []error{errors.New("refused"), errors.New("refused"), errors.New("refused")}}
	l := newTestLoader(&stubFeed{}, &stubRepo{}, probe)

	_, err := l.Load(ctx)
	require.Error(t, err)
}
