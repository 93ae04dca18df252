package search

import (
	"math"
	"strings"

	"github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/domain/search/query"
	"github.com/kailas-cloud/shopdex/internal/domain/search/result"
	"github.com/kailas-cloud/shopdex/internal/domain/term"
)

// relevanceScorer ranks products against a parsed query.
type relevanceScorer struct {
	tok term.Tokenizer
}

// rank keeps products inside the price bounds with a positive score,
// sorted by score (id ascending on ties) and truncated to limit.
func (s relevanceScorer) rank(catalog []product.Product, f query.Filter, limit int) []result.Result {
	keywords := f.Keywords()
	if len(keywords) == 0 || limit <= 0 {
		return []result.Result{}
	}

	out := make([]result.Result, 0)
	for _, p := range catalog {
		if !f.Accepts(p.Price()) {
			continue
		}
		if score := s.score(p, keywords); score > 0 {
			out = append(out, result.New(p.ID(), score))
		}
	}
	return result.Rank(out, limit)
}

// score sums ln(1+count) of non-overlapping keyword occurrences in the
// product text and boosts the sum by (1 + rating/10).
func (s relevanceScorer) score(p product.Product, keywords []string) float64 {
	haystack := s.haystack(p)

	var base float64
	for _, kw := range keywords {
		if n := strings.Count(haystack, kw); n > 0 {
			base += math.Log1p(float64(n))
		}
	}
	return base * (1 + p.Rating()/10)
}

func (s relevanceScorer) haystack(p product.Product) string {
	return s.tok.Join(p.Title(), p.Description(), strings.Join(p.TagsView(), " "))
}
