package intent

import (
	"errors"
	"strings"
	"testing"

	"github.com/calder-labs/prizedex/internal/domain"
)

func TestNewName_Defaults(t *testing.T) {
	in, err := NewName("Jerome", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Kind() != KindName {
		t.Errorf("Kind() = %q", in.Kind())
	}
	if in.Query() != "Jerome" {
		t.Errorf("Query() = %q", in.Query())
	}
	if !in.Fuzzy() {
		t.Error("Fuzzy() = false")
	}
	if in.Page() != DefaultPage {
		t.Errorf("Page() = %d, want %d", in.Page(), DefaultPage)
	}
	if in.PageSize() != DefaultPageSize {
		t.Errorf("PageSize() = %d, want %d", in.PageSize(), DefaultPageSize)
	}
	if in.SortField() != "year" || in.SortOrder() != Asc {
		t.Errorf("sort = %s:%s, want year:asc", in.SortField(), in.SortOrder())
	}
}

func TestNewName_Blank(t *testing.T) {
	for _, q := range []string{"", "   ", "\t"} {
		_, err := NewName(q, false)
		if !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("NewName(%q): expected ErrInvalidQuery, got %v", q, err)
		}
	}
}

func TestNewCategory(t *testing.T) {
	in, err := NewCategory("physics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Category() != "physics" {
		t.Errorf("Category() = %q", in.Category())
	}

	if _, err := NewCategory(" "); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestNewYear(t *testing.T) {
	in, err := NewYear(1990)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.YearFrom() != 1990 || in.YearTo() != 1990 {
		t.Errorf("bounds = [%d, %d], want [1990, 1990]", in.YearFrom(), in.YearTo())
	}

	for _, y := range []int{0, -1} {
		if _, err := NewYear(y); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("NewYear(%d): expected ErrInvalidQuery, got %v", y, err)
		}
	}
}

func TestNewYearRange(t *testing.T) {
	in, err := NewYearRange(1990, 1991)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Kind() != KindYearRange {
		t.Errorf("Kind() = %q", in.Kind())
	}
	if in.YearFrom() != 1990 || in.YearTo() != 1991 {
		t.Errorf("bounds = [%d, %d]", in.YearFrom(), in.YearTo())
	}

	if _, err := NewYearRange(0, 1991); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
	if _, err := NewYearRange(1990, 0); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestNewMotivation(t *testing.T) {
	in, err := NewMotivation("semiconductor research")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Kind() != KindMotivation || in.Query() != "semiconductor research" {
		t.Errorf("unexpected intent: %q %q", in.Kind(), in.Query())
	}

	if _, err := NewMotivation(""); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestNewComposite(t *testing.T) {
	in, err := NewComposite(" Pierre ", "physics", "1991", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.CompositeName() != "Pierre" {
		t.Errorf("CompositeName() = %q, want trimmed", in.CompositeName())
	}
	if in.CompositeCategory() != "physics" || in.CompositeYear() != "1991" {
		t.Errorf("unexpected constraints: %q %q", in.CompositeCategory(), in.CompositeYear())
	}
	if in.SortField() != "year" || in.SortOrder() != Asc {
		t.Errorf("default sort = %s:%s, want year:asc", in.SortField(), in.SortOrder())
	}
}

func TestNewComposite_Unconstrained(t *testing.T) {
	in, err := NewComposite("", "", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.CompositeName() != "" || in.CompositeCategory() != "" || in.CompositeYear() != "" {
		t.Error("expected all constraints empty")
	}
}

func TestNewComposite_SortSpecs(t *testing.T) {
	tests := []struct {
		spec      string
		wantField string
		wantOrder SortOrder
		wantErr   bool
	}{
		{"", "year", Asc, false},
		{"year", "year", Asc, false},
		{"year:desc", "year", Desc, false},
		{"category:asc", "category", Asc, false},
		{"category:desc", "category", Desc, false},
		{"motivation:asc", "", "", true},
		{"year:sideways", "", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.spec, func(t *testing.T) {
			in, err := NewComposite("", "", "", tc.spec)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidQuery) {
					t.Fatalf("expected ErrInvalidQuery, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.SortField() != tc.wantField || in.SortOrder() != tc.wantOrder {
				t.Errorf("sort = %s:%s, want %s:%s",
					in.SortField(), in.SortOrder(), tc.wantField, tc.wantOrder)
			}
		})
	}
}

func TestWithPagination(t *testing.T) {
	base, _ := NewYear(1990)

	in, err := base.WithPagination(3, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Page() != 3 || in.PageSize() != 25 {
		t.Errorf("pagination = (%d, %d), want (3, 25)", in.Page(), in.PageSize())
	}
	// the receiver is untouched
	if base.Page() != DefaultPage || base.PageSize() != DefaultPageSize {
		t.Error("WithPagination mutated the receiver")
	}
}

func TestWithPagination_Rejected(t *testing.T) {
	base, _ := NewYear(1990)

	tests := []struct {
		name string
		page int
		size int
	}{
		{"zero page", 0, 10},
		{"negative page", -1, 10},
		{"zero size", 1, 0},
		{"negative size", 1, -5},
		{"oversize", 1, MaxPageSize + 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := base.WithPagination(tc.page, tc.size)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestCacheKey_Canonical(t *testing.T) {
	// two intents built from the same logical parameters serialize identically
	a, _ := NewComposite("Pierre", "physics", "1991", "year:desc")
	b, _ := NewComposite("Pierre", "physics", "1991", "year:desc")
	if a.CacheKey() != b.CacheKey() {
		t.Errorf("equal intents produced different keys:\n%s\n%s", a.CacheKey(), b.CacheKey())
	}
}

func TestCacheKey_Distinguishes(t *testing.T) {
	name, _ := NewName("physics", false)
	cat, _ := NewCategory("physics")
	if name.CacheKey() == cat.CacheKey() {
		t.Error("different kinds share a cache key")
	}

	fuzzy, _ := NewName("Jerome", true)
	exact, _ := NewName("Jerome", false)
	if fuzzy.CacheKey() == exact.CacheKey() {
		t.Error("fuzzy flag not part of the cache key")
	}

	p1, _ := NewYear(1990)
	p2, _ := p1.WithPagination(2, 10)
	if p1.CacheKey() == p2.CacheKey() {
		t.Error("pagination not part of the cache key")
	}
}

func TestCacheKey_SeparatorsInValues(t *testing.T) {
	// a term containing "&" or "=" must not collide with the key syntax,
	// or two distinct queries would share one cache entry
	a, _ := NewComposite("a&category=b", "c", "", "")
	b, _ := NewComposite("a", "b&category=c", "", "")
	if a.CacheKey() == b.CacheKey() {
		t.Errorf("distinct composites share a cache key: %s", a.CacheKey())
	}

	m, _ := NewMotivation("laser&fuzzy=true")
	if !strings.Contains(m.CacheKey(), "laser%26fuzzy%3Dtrue") {
		t.Errorf("term not escaped in cache key: %s", m.CacheKey())
	}
}

func TestCacheKey_ContainsIntentFields(t *testing.T) {
	in, _ := NewYearRange(1990, 1991)
	key := in.CacheKey()
	for _, want := range []string{"kind=year_range", "from=1990", "to=1991", "sort=year:asc", "page=1", "size=10"} {
		if !strings.Contains(key, want) {
			t.Errorf("CacheKey() = %q, missing %q", key, want)
		}
	}
}
