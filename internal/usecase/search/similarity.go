package search

import (
	"github.com/kailas-cloud/shopdex/internal/domain"
	"github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/domain/search/result"
	"github.com/kailas-cloud/shopdex/internal/domain/term"
)

// similarityEngine ranks products by term-vector cosine similarity over title and tags.
type similarityEngine struct {
	tok term.Tokenizer
}

func (e similarityEngine) vector(p product.Product) term.Vector {
	fields := make([]string, 0, 1+len(p.TagsView()))
	fields = append(fields, p.Title())
	fields = append(fields, p.TagsView()...)
	return e.tok.Build(fields...)
}

// similar scores every catalog product other than target and keeps those
// strictly above domain.SimilarityThreshold.
func (e similarityEngine) similar(target product.Product, catalog []product.Product, limit int) []result.Result {
	if limit <= 0 {
		return []result.Result{}
	}
	tv := e.vector(target)

	out := make([]result.Result, 0)
	for _, p := range catalog {
		if p.ID() == target.ID() {
			continue
		}
		if sim := term.Cosine(tv, e.vector(p)); sim > domain.SimilarityThreshold {
			out = append(out, result.New(p.ID(), sim))
		}
	}
	return result.Rank(out, limit)
}
