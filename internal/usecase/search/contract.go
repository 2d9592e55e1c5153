package search

import (
	"context"

	"github.com/calder-labs/prizedex/internal/db"
	"github.com/calder-labs/prizedex/internal/domain"
	"github.com/calder-labs/prizedex/internal/domain/search/intent"
)

// Repository executes built queries against the record store.
type Repository interface {
	Search(ctx context.Context, q *db.SearchQuery) ([]domain.Prize, int, error)
}

// Builder translates intents into store queries.
type Builder interface {
	Build(in intent.Intent) (*db.SearchQuery, error)
}

// ResultCache memoizes result sets per intent. Optional.
type ResultCache interface {
	Get(ctx context.Context, in intent.Intent) ([]domain.Prize, bool)
	Put(ctx context.Context, in intent.Intent, prizes []domain.Prize)
}

// Limiter admits or rejects a request before any query work. Optional.
type Limiter interface {
	Allow(client, endpoint string) error
}
