// Package search orchestrates query execution: admission, cache lookup,
// query build, store call, cache fill.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/calder-labs/prizedex/internal/domain"
	"github.com/calder-labs/prizedex/internal/domain/search/intent"
	"github.com/calder-labs/prizedex/internal/logger"
)

// DefaultQueryTimeout bounds a single store call.
const DefaultQueryTimeout = 10 * time.Second

// Service is the query executor. Cache and limiter are optional; a nil
// interface disables the layer.
type Service struct {
	repo    Repository
	builder Builder
	cache   ResultCache
	limiter Limiter

	queryTimeout time.Duration
}

// New creates a query executor without cache or limiter.
func New(repo Repository, builder Builder) *Service {
	return &Service{
		repo:         repo,
		builder:      builder,
		queryTimeout: DefaultQueryTimeout,
	}
}

// WithCache attaches a result cache.
func (s *Service) WithCache(c ResultCache) *Service {
	s.cache = c
	return s
}

// WithLimiter attaches an admission-control limiter.
func (s *Service) WithLimiter(l Limiter) *Service {
	s.limiter = l
	return s
}

// WithQueryTimeout overrides the per-call store timeout.
func (s *Service) WithQueryTimeout(d time.Duration) *Service {
	if d > 0 {
		s.queryTimeout = d
	}
	return s
}

// Search runs one request: admit, cache lookup, build, execute, cache
// fill. Rate limiting runs first so rejected traffic never touches the
// cache or the store. No retries at this layer; only the loader's
// reachability probe retries.
func (s *Service) Search(ctx context.Context, client string, in intent.Intent) ([]domain.Prize, error) {
	if s.limiter != nil {
		if err := s.limiter.Allow(client, string(in.Kind())); err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		if prizes, ok := s.cache.Get(ctx, in); ok {
			logger.FromContext(ctx).Debug("Result cache hit",
				zap.String("kind", string(in.Kind())))
			return prizes, nil
		}
	}

	q, err := s.builder.Build(in)
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	prizes, _, err := s.repo.Search(queryCtx, q)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(ctx, in, prizes)
	}

	return prizes, nil
}
