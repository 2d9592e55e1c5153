// Package intent models a typed search intent: what the client wants to
// match, independent of how any particular store executes it.
package intent

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/calder-labs/prizedex/internal/domain"
)

// Pagination limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Kind discriminates the intent variants.
type Kind string

const (
	// KindName matches laureate first names, optionally fuzzily.
	KindName Kind = "name"
	// KindCategory matches the prize category exactly.
	KindCategory Kind = "category"
	// KindYear matches one exact year.
	KindYear Kind = "year"
	// KindYearRange matches an inclusive year interval.
	KindYearRange Kind = "year_range"
	// KindMotivation matches the citation text.
	KindMotivation Kind = "motivation"
	// KindComposite conjoins name, category, and year constraints.
	KindComposite Kind = "composite"
)

// SortOrder is the direction of a composite sort.
type SortOrder string

const (
	// Asc sorts ascending.
	Asc SortOrder = "asc"
	// Desc sorts descending.
	Desc SortOrder = "desc"
)

// sortableFields are the fields a composite query may sort by.
var sortableFields = map[string]struct{}{
	"year":     {},
	"category": {},
}

// Intent is a validated search intent. Construct via the New* functions;
// the zero value is not valid.
type Intent struct {
	kind Kind

	query string // name / motivation term
	fuzzy bool

	category string

	yearFrom int
	yearTo   int

	compName     string
	compCategory string
	compYear     string

	sortField string
	sortOrder SortOrder

	page     int
	pageSize int
}

// NewName builds a laureate first-name match.
func NewName(query string, fuzzy bool) (Intent, error) {
	if strings.TrimSpace(query) == "" {
		return Intent{}, fmt.Errorf("%w: name query is required", domain.ErrInvalidQuery)
	}
	i := defaultIntent(KindName)
	i.query = query
	i.fuzzy = fuzzy
	return i, nil
}

// NewCategory builds an exact category match. Matching is case-sensitive:
// categories in the dataset are proper nouns ("physics" != "Physics").
func NewCategory(category string) (Intent, error) {
	if strings.TrimSpace(category) == "" {
		return Intent{}, fmt.Errorf("%w: category is required", domain.ErrInvalidQuery)
	}
	i := defaultIntent(KindCategory)
	i.category = category
	return i, nil
}

// NewYear builds an exact-year match.
func NewYear(year int) (Intent, error) {
	if year <= 0 {
		return Intent{}, fmt.Errorf("%w: year must be positive", domain.ErrInvalidQuery)
	}
	i := defaultIntent(KindYear)
	i.yearFrom = year
	i.yearTo = year
	return i, nil
}

// NewYearRange builds an inclusive year-range match. Both bounds are
// required together; a request carrying only one of start/end is rejected
// upstream as a malformed range rather than treated as open-ended.
func NewYearRange(from, to int) (Intent, error) {
	if from <= 0 || to <= 0 {
		return Intent{}, fmt.Errorf("%w: year bounds must be positive", domain.ErrInvalidQuery)
	}
	i := defaultIntent(KindYearRange)
	i.yearFrom = from
	i.yearTo = to
	return i, nil
}

// NewMotivation builds a free-text match over the citation text.
func NewMotivation(query string) (Intent, error) {
	if strings.TrimSpace(query) == "" {
		return Intent{}, fmt.Errorf("%w: motivation query is required", domain.ErrInvalidQuery)
	}
	i := defaultIntent(KindMotivation)
	i.query = query
	return i, nil
}

// NewComposite builds a conjunctive match over whichever of name, category,
// and year are non-empty. No constraints matches everything. sortSpec is
// "field:order" ("year:desc"); empty defaults to "year:asc".
func NewComposite(name, category, year, sortSpec string) (Intent, error) {
	i := defaultIntent(KindComposite)
	i.compName = strings.TrimSpace(name)
	i.compCategory = strings.TrimSpace(category)
	i.compYear = strings.TrimSpace(year)

	field, order, err := parseSortSpec(sortSpec)
	if err != nil {
		return Intent{}, err
	}
	i.sortField = field
	i.sortOrder = order
	return i, nil
}

// WithPagination returns a copy of the intent with explicit pagination.
// Page and size below 1 are rejected, not clamped, so that pagination
// stays deterministic for clients.
func (i Intent) WithPagination(page, size int) (Intent, error) {
	if page < 1 {
		return Intent{}, fmt.Errorf("%w: page must be >= 1, got %d", domain.ErrInvalidQuery, page)
	}
	if size < 1 {
		return Intent{}, fmt.Errorf("%w: page size must be >= 1, got %d", domain.ErrInvalidQuery, size)
	}
	if size > MaxPageSize {
		return Intent{}, fmt.Errorf("%w: page size must be <= %d, got %d", domain.ErrInvalidQuery, MaxPageSize, size)
	}
	i.page = page
	i.pageSize = size
	return i, nil
}

func defaultIntent(k Kind) Intent {
	return Intent{
		kind:      k,
		sortField: "year",
		sortOrder: Asc,
		page:      DefaultPage,
		pageSize:  DefaultPageSize,
	}
}

func parseSortSpec(spec string) (string, SortOrder, error) {
	if spec == "" {
		return "year", Asc, nil
	}
	field, order, found := strings.Cut(spec, ":")
	if !found {
		field, order = spec, string(Asc)
	}
	if _, ok := sortableFields[field]; !ok {
		return "", "", fmt.Errorf("%w: unsortable field %q", domain.ErrInvalidQuery, field)
	}
	switch SortOrder(order) {
	case Asc, Desc:
		return field, SortOrder(order), nil
	default:
		return "", "", fmt.Errorf("%w: sort order must be asc or desc, got %q", domain.ErrInvalidQuery, order)
	}
}

// Kind returns the intent variant.
func (i Intent) Kind() Kind { return i.kind }

// Query returns the name or motivation search term.
func (i Intent) Query() string { return i.query }

// Fuzzy reports whether name matching tolerates edit-distance deviations.
func (i Intent) Fuzzy() bool { return i.fuzzy }

// Category returns the exact category constraint.
func (i Intent) Category() string { return i.category }

// YearFrom returns the lower (inclusive) year bound.
func (i Intent) YearFrom() int { return i.yearFrom }

// YearTo returns the upper (inclusive) year bound.
func (i Intent) YearTo() int { return i.yearTo }

// CompositeName returns the composite name constraint ("" = unconstrained).
func (i Intent) CompositeName() string { return i.compName }

// CompositeCategory returns the composite category constraint.
func (i Intent) CompositeCategory() string { return i.compCategory }

// CompositeYear returns the composite year constraint as text.
func (i Intent) CompositeYear() string { return i.compYear }

// SortField returns the sort field (default "year").
func (i Intent) SortField() string { return i.sortField }

// SortOrder returns the sort direction (default ascending).
func (i Intent) SortOrder() SortOrder { return i.sortOrder }

// Page returns the 1-based page number.
func (i Intent) Page() int { return i.page }

// PageSize returns the page size.
func (i Intent) PageSize() int { return i.pageSize }

// CacheKey returns a canonical serialization of the intent. Field order is
// fixed, so two intents parsed from differently-ordered query strings
// serialize identically and share one cache entry. Free-text values are
// percent-escaped so "&" and "=" inside a term cannot collide with the
// separators.
func (i Intent) CacheKey() string {
	var b strings.Builder
	b.WriteString("kind=")
	b.WriteString(string(i.kind))

	switch i.kind {
	case KindName:
		fmt.Fprintf(&b, "&q=%s&fuzzy=%t", url.QueryEscape(i.query), i.fuzzy)
	case KindCategory:
		fmt.Fprintf(&b, "&category=%s", url.QueryEscape(i.category))
	case KindYear, KindYearRange:
		fmt.Fprintf(&b, "&from=%d&to=%d", i.yearFrom, i.yearTo)
	case KindMotivation:
		fmt.Fprintf(&b, "&q=%s", url.QueryEscape(i.query))
	case KindComposite:
		fmt.Fprintf(&b, "&name=%s&category=%s&year=%s",
			url.QueryEscape(i.compName), url.QueryEscape(i.compCategory), url.QueryEscape(i.compYear))
	}

	fmt.Fprintf(&b, "&sort=%s:%s&page=%d&size=%d", i.sortField, i.sortOrder, i.page, i.pageSize)
	return b.String()
}
