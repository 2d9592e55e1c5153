package prize

import (
	"github.com/calder-labs/prizedex/internal/db"
	"github.com/calder-labs/prizedex/internal/domain"
)

// IndexName is the FT index holding all prize documents.
const IndexName = domain.KeyPrefix + "prize:idx"

// keyPrefix prefixes every prize document key.
const keyPrefix = domain.KeyPrefix + "prize:"

// indexDefinition declares the searchable fields over the JSON documents.
// category is CASESENSITIVE: matching is exact, not normalized. year and
// category are SORTABLE so every query can carry a deterministic SORTBY.
func indexDefinition() *db.IndexDefinition {
	return db.NewIndex(IndexName).
		OnJSON().
		Prefix(keyPrefix).
		Numeric("$.year", "year", true).
		Tag("$.category", "category", true, true).
		Text("$.laureates[*].firstname", "firstname").
		Text("$.laureates[*].motivation", "motivation").
		MustBuild()
}
