// Package query turns free-text search input into a structured Filter.
package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/shopdex/internal/domain/term"
)

// MinorUnitsPerWhole converts whole currency amounts in queries to minor units.
const MinorUnitsPerWhole = 100

var (
	underPattern   = regexp.MustCompile(`\b(under|below|less than)\s+(\d+)\b`)
	betweenPattern = regexp.MustCompile(`\bbetween\s+(\d+)\s+and\s+(\d+)\b`)
)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"under": {}, "below": {}, "above": {}, "between": {},
	"less": {}, "more": {}, "than": {},
	"dollars": {}, "dollar": {}, "$": {},
}

// Filter is the structured form of a search query.
// Price bounds are inclusive minor-currency amounts; an inverted range is kept as is.
type Filter struct {
	minPrice    int64
	maxPrice    int64
	hasMinPrice bool
	hasMaxPrice bool
	keywords    []string
}

// MinPrice returns the lower price bound and whether it is set.
func (f Filter) MinPrice() (int64, bool) { return f.minPrice, f.hasMinPrice }

// MaxPrice returns the upper price bound and whether it is set.
func (f Filter) MaxPrice() (int64, bool) { return f.maxPrice, f.hasMaxPrice }

// Keywords returns the keyword terms in query order, duplicates included.
func (f Filter) Keywords() []string {
	out := make([]string, len(f.keywords))
	copy(out, f.keywords)
	return out
}

// Accepts reports whether price lies within the filter's bounds.
func (f Filter) Accepts(price int64) bool {
	if f.hasMinPrice && price < f.minPrice {
		return false
	}
	if f.hasMaxPrice && price > f.maxPrice {
		return false
	}
	return true
}

// Parser extracts filters from raw queries.
type Parser struct {
	tok term.Tokenizer
}

// NewParser creates a parser that folds queries with tok.
func NewParser(tok term.Tokenizer) Parser {
	return Parser{tok: tok}
}

// Parse parses q with the default tokenizer.
func Parse(q string) Filter {
	return NewParser(term.NewTokenizer()).Parse(q)
}

// Parse never fails: unrecognized input simply yields no bounds and/or no keywords.
//
// The "under" pattern is applied before "between", so when a query contains
// both the "between" upper bound replaces the "under" one. When a pattern
// occurs several times its last occurrence wins.
func (p Parser) Parse(q string) Filter {
	q = p.tok.Fold(q)

	var f Filter
	if m := lastMatch(underPattern, q); m != nil {
		f.maxPrice, f.hasMaxPrice = toMinor(m[2])
	}
	if m := lastMatch(betweenPattern, q); m != nil {
		f.minPrice, f.hasMinPrice = toMinor(m[1])
		f.maxPrice, f.hasMaxPrice = toMinor(m[2])
	}

	for _, raw := range strings.Fields(q) {
		tok := term.Clean(raw)
		if tok == "" || isNumeric(tok) {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		f.keywords = append(f.keywords, tok)
	}
	return f
}

func lastMatch(re *regexp.Regexp, s string) []string {
	all := re.FindAllStringSubmatch(s, -1)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// toMinor converts a whole amount to minor units. Values that do not fit
// in int64 leave the bound unset.
func toMinor(digits string) (int64, bool) {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > math.MaxInt64/MinorUnitsPerWhole {
		return 0, false
	}
	return n * MinorUnitsPerWhole, true
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
