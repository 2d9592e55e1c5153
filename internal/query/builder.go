// Package query translates search intents into store queries. The builder
// is pure: no I/O, no side effects, one FT.SEARCH dialect-2 query string
// per intent.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calder-labs/prizedex/internal/db"
	"github.com/calder-labs/prizedex/internal/domain"
	"github.com/calder-labs/prizedex/internal/domain/search/intent"
)

// MatchMode selects how name matching behaves. The two modes are not
// equivalent: fuzzy tolerates typos and transpositions within a scaled
// edit distance, substring requires exact contiguous overlap. The active
// mode is configured per deployment since it changes result sets.
type MatchMode string

const (
	// ModeFuzzy uses analyzed fuzzy matching with auto-scaled edit distance.
	ModeFuzzy MatchMode = "fuzzy"
	// ModeSubstring uses case-insensitive wildcard containment.
	ModeSubstring MatchMode = "substring"
)

// Valid reports whether m is a known match mode.
func (m MatchMode) Valid() bool {
	return m == ModeFuzzy || m == ModeSubstring
}

// Builder builds db.SearchQuery values for one index.
type Builder struct {
	index string
	mode  MatchMode
}

// NewBuilder creates a builder for the given index and name-match mode.
func NewBuilder(index string, mode MatchMode) *Builder {
	return &Builder{index: index, mode: mode}
}

// Mode returns the active name-match mode.
func (b *Builder) Mode() MatchMode { return b.mode }

// Build translates an intent into a store query. All queries carry an
// explicit SORTBY so pagination stays deterministic across pages.
func (b *Builder) Build(in intent.Intent) (*db.SearchQuery, error) {
	queryStr, err := b.buildQueryString(in)
	if err != nil {
		return nil, err
	}

	return &db.SearchQuery{
		Index: b.index,
		Query: queryStr,
		Sort: &db.SortSpec{
			Field: in.SortField(),
			Desc:  in.SortOrder() == intent.Desc,
		},
		Offset: (in.Page() - 1) * in.PageSize(),
		Limit:  in.PageSize(),
	}, nil
}

func (b *Builder) buildQueryString(in intent.Intent) (string, error) {
	switch in.Kind() {
	case intent.KindName:
		return b.nameClause(in.Query(), in.Fuzzy()), nil

	case intent.KindCategory:
		return categoryClause(in.Category()), nil

	case intent.KindYear, intent.KindYearRange:
		return yearClause(in.YearFrom(), in.YearTo()), nil

	case intent.KindMotivation:
		return motivationClause(in.Query()), nil

	case intent.KindComposite:
		return b.compositeClause(in)

	default:
		return "", fmt.Errorf("%w: unknown intent kind %q", domain.ErrInvalidQuery, in.Kind())
	}
}

// nameClause matches laureate first names. Fuzzy intent falls back to
// substring containment when the builder runs in substring mode.
func (b *Builder) nameClause(q string, fuzzy bool) string {
	if fuzzy && b.mode == ModeFuzzy {
		return "@firstname:(" + fuzzyTerms(q) + ")"
	}
	return "@firstname:(" + wildcardTerms(q) + ")"
}

func categoryClause(category string) string {
	return "@category:{" + escapeTag(category) + "}"
}

// yearClause is inclusive on both bounds: from <= year <= to.
func yearClause(from, to int) string {
	return fmt.Sprintf("@year:[%d %d]", from, to)
}

func motivationClause(q string) string {
	return "@motivation:(" + escapeTerms(q) + ")"
}

// compositeClause conjoins whichever of name, category, and year are
// present; an intent with none of the three matches everything.
func (b *Builder) compositeClause(in intent.Intent) (string, error) {
	var parts []string

	if name := in.CompositeName(); name != "" {
		parts = append(parts, b.nameClause(name, false))
	}
	if category := in.CompositeCategory(); category != "" {
		parts = append(parts, categoryClause(category))
	}
	if yearText := in.CompositeYear(); yearText != "" {
		year, err := strconv.Atoi(yearText)
		if err != nil {
			return "", fmt.Errorf("%w: year must be an integer, got %q", domain.ErrInvalidQuery, yearText)
		}
		parts = append(parts, yearClause(year, year))
	}

	if len(parts) == 0 {
		return "*", nil
	}
	return strings.Join(parts, " "), nil
}

// fuzzyTerms wraps each token in the fuzzy operator with the edit distance
// scaled by term length, mirroring analyzed auto-fuzziness: short terms
// match exactly, mid-length terms tolerate one edit, long terms two.
func fuzzyTerms(q string) string {
	tokens := strings.Fields(q)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		esc := escapeTerm(tok)
		switch {
		case len(tok) < 3:
			out = append(out, esc)
		case len(tok) <= 5:
			out = append(out, "%"+esc+"%")
		default:
			out = append(out, "%%"+esc+"%%")
		}
	}
	return strings.Join(out, " ")
}

// wildcardTerms wraps each token in infix wildcards for substring
// containment; the TEXT analyzer lowercases both sides, so matching is
// case-insensitive.
func wildcardTerms(q string) string {
	tokens := strings.Fields(q)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, "w'*"+escapeWildcard(tok)+"*'")
	}
	return strings.Join(out, " ")
}

func escapeTerms(q string) string {
	tokens := strings.Fields(q)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, escapeTerm(tok))
	}
	return strings.Join(out, " ")
}

var termEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)

func escapeTerm(s string) string {
	return termEscaper.Replace(s)
}

// escapeWildcard escapes for the w'...' wildcard syntax, where only the
// quote and backslash are meta besides * and ?.
var wildcardEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`*`, `\*`,
	`?`, `\?`,
)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

var tagEscaper = strings.NewReplacer(
	`,`, `\,`,
	`.`, `\.`,
	`<`, `\<`,
	`>`, `\>`,
	`{`, `\{`,
	`}`, `\}`,
	`"`, `\"`,
	`'`, `\'`,
	`:`, `\:`,
	`;`, `\;`,
	`!`, `\!`,
	`@`, `\@`,
	`#`, `\#`,
	`$`, `\$`,
	`%`, `\%`,
	`^`, `\^`,
	`&`, `\&`,
	`*`, `\*`,
	`(`, `\(`,
	`)`, `\)`,
	`-`, `\-`,
	`+`, `\+`,
	`=`, `\=`,
	`~`, `\~`,
	` `, `\ `,
)

func escapeTag(s string) string {
	return tagEscaper.Replace(s)
}
