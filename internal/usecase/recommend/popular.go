package recommend

import (
	"context"

	"github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/domain/search/result"
)

// Kind names a recommendation strategy.
type Kind string

// Strategy kinds.
const (
	KindPopular      Kind = "popular"
	KindPersonalized Kind = "personalized"
)

// Strategy ranks a catalog snapshot for a user.
type Strategy interface {
	Kind() Kind
	Recommend(ctx context.Context, catalog []product.Product, userID string, limit int) ([]result.Result, error)
}

// Popular ranks products by rating. It is the placeholder used until
// behavior data is available and ignores the user entirely.
type Popular struct{}

// Kind implements Strategy.
func (Popular) Kind() Kind { return KindPopular }

// Recommend implements Strategy. It never fails.
func (Popular) Recommend(
	_ context.Context, catalog []product.Product, _ string, limit int,
) ([]result.Result, error) {
	return RankPopular(catalog, limit), nil
}

// RankPopular sorts products by rating descending, then identifier ascending,
// and truncates to limit. Each score is the product rating.
func RankPopular(catalog []product.Product, limit int) []result.Result {
	if limit <= 0 {
		return []result.Result{}
	}
	out := make([]result.Result, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, result.New(p.ID(), p.Rating()))
	}
	return result.Rank(out, limit)
}
