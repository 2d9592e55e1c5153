// Package prize persists and queries award records. It exposes the
// minimal record-store contract (exists/count, bulk insert, query) so the
// rest of the service stays independent of the backing engine.
package prize

import (
	"context"
	"errors"
	"fmt"

	"github.com/calder-labs/prizedex/internal/db"
	"github.com/calder-labs/prizedex/internal/domain"
)

// store is the consumer interface for prize persistence (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements prize storage over a db.Store.
type Repo struct {
	store store
}

// New creates a prize repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Exists reports whether the prize index has been created.
func (r *Repo) Exists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return false, fmt.Errorf("index exists: %w", err)
	}
	return ok, nil
}

// Count returns the number of indexed prize documents. A missing index
// counts as zero.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("count prizes: %w", err)
	}
	return n, nil
}

// BulkInsert creates the index if needed and writes all prizes in one
// pipelined round-trip.
func (r *Repo) BulkInsert(ctx context.Context, prizes []domain.Prize) error {
	if err := r.store.CreateIndex(ctx, indexDefinition()); err != nil {
		if !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index: %w", err)
		}
	}

	items := make([]db.JSONSetItem, len(prizes))
	for i := range prizes {
		data, err := marshalPrize(&prizes[i])
		if err != nil {
			return fmt.Errorf("marshal prize %d: %w", i, err)
		}
		items[i] = db.JSONSetItem{
			Key:  documentKey(i),
			Path: "$",
			Data: data,
		}
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("bulk insert %d prizes: %w", len(prizes), err)
	}
	return nil
}

// Search executes a built query and decodes the matching documents.
// Returns the page of prizes and the total match count before pagination.
func (r *Repo) Search(ctx context.Context, q *db.SearchQuery) ([]domain.Prize, int, error) {
	q.Index = IndexName
	q.ReturnFields = []string{"$"}

	sr, err := r.store.Search(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, 0, domain.ErrIndexNotFound
		}
		return nil, 0, fmt.Errorf("search prizes: %w", err)
	}

	prizes := make([]domain.Prize, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		p, err := unmarshalEntry(entry)
		if err != nil {
			return nil, 0, fmt.Errorf("decode document %s: %w", entry.Key, err)
		}
		prizes = append(prizes, p)
	}

	return prizes, sr.Total, nil
}
