// Package cache memoizes query results in the key-value store. Entries
// carry a fixed TTL; the dataset is immutable after load, so there is no
// invalidation path.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/calder-labs/prizedex/internal/db"
	"github.com/calder-labs/prizedex/internal/domain"
	"github.com/calder-labs/prizedex/internal/domain/search/intent"
)

var cacheKeyPrefix = domain.KeyPrefix + "results:"

// DefaultTTL matches the original deployment's 300-second window.
const DefaultTTL = 5 * time.Minute

// kv is the consumer interface for the result cache (ISP).
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store caches search results keyed by canonical intent serialization.
// Concurrent fills of the same key race last-writer-wins; no single-flight
// lock, the tested scale does not warrant one.
type Store struct {
	kv         kv
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a result cache. cacheTotal is a counter vec with label
// "result" ("hit"/"miss"), passed explicitly.
func New(kvStore kv, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		kv:         kvStore,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Get returns the cached result set for the intent, if present and
// unexpired. Expired entries are absent, never stale-but-usable: the
// store drops them at TTL.
func (c *Store) Get(ctx context.Context, in intent.Intent) ([]domain.Prize, bool) {
	key := cacheKey(in)

	data, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read result cache", zap.String("key", key), zap.Error(err))
		}
		c.incCache("miss")
		return nil, false
	}

	var prizes []domain.Prize
	if err := json.Unmarshal(data, &prizes); err != nil {
		c.logger.Warn("Failed to decode cached results", zap.String("key", key), zap.Error(err))
		c.incCache("miss")
		return nil, false
	}

	c.incCache("hit")
	return prizes, true
}

// Put stores the result set for the intent with the configured TTL.
// Write failures are logged, not surfaced: the cache is an optimization.
func (c *Store) Put(ctx context.Context, in intent.Intent, prizes []domain.Prize) {
	key := cacheKey(in)

	data, err := json.Marshal(prizes)
	if err != nil {
		c.logger.Warn("Failed to encode results for cache", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.kv.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to write result cache", zap.String("key", key), zap.Error(err))
	}
}

func (c *Store) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the canonical intent serialization, so two requests
// expressing the same logical query share one entry regardless of query
// string ordering.
func cacheKey(in intent.Intent) string {
	h := sha256.Sum256([]byte(in.CacheKey()))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}
