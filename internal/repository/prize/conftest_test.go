package prize

import (
	"context"
	"testing"

	"github.com/calder-labs/prizedex/internal/db"
	"github.com/calder-labs/prizedex/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
	searchFn       func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	searchCountFn  func(ctx context.Context, index, query string) (int, error)
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, query)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms)
	return repo, ms
}

func testPrizes(t *testing.T) []domain.Prize {
	t.Helper()
	return []domain.Prize{
		{
			Year:     1990,
			Category: "physics",
			Laureates: []domain.Laureate{
				{ID: "1", Firstname: "Jerome", Surname: "Friedman", Motivation: "quark structure", Share: "3"},
			},
		},
		{
			Year:      1990,
			Category:  "peace",
			Laureates: []domain.Laureate{},
		},
		{
			Year:     1991,
			Category: "physics",
			Laureates: []domain.Laureate{
				{ID: "2", Firstname: "Pierre", Surname: "de Gennes", Motivation: "order phenomena", Share: "1"},
			},
		},
	}
}
