package db

// SortSpec orders search results by a single sortable field.
type SortSpec struct {
	Field string
	Desc  bool
}

// SearchQuery is the input for a paginated FT.SEARCH call. Query is a
// dialect-2 query string produced by the query builder.
type SearchQuery struct {
	Index        string
	Query        string
	Sort         *SortSpec
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation. Total is the full
// match count before pagination.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
