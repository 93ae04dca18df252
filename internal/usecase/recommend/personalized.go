package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
	"github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/domain/search/result"
)

// DefaultTopTags is how many preferred tags drive a personalized ranking.
const DefaultTopTags = 5

// Personalized recommends unseen products that share the user's most
// weighted tags, ordered by rating.
type Personalized struct {
	behaviors BehaviorReader
	topTags   int
}

// NewPersonalized creates a personalized strategy. topTags <= 0 uses DefaultTopTags.
func NewPersonalized(behaviors BehaviorReader, topTags int) *Personalized {
	if topTags <= 0 {
		topTags = DefaultTopTags
	}
	return &Personalized{behaviors: behaviors, topTags: topTags}
}

// Kind implements Strategy.
func (p *Personalized) Kind() Kind { return KindPersonalized }

// Recommend implements Strategy. An unknown user yields an empty result.
func (p *Personalized) Recommend(
	ctx context.Context, catalog []product.Product, userID string, limit int,
) ([]result.Result, error) {
	profile, err := p.behaviors.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load behavior profile: %w", err)
	}
	return p.rank(catalog, profile, limit), nil
}

func (p *Personalized) rank(catalog []product.Product, profile behavior.Profile, limit int) []result.Result {
	if limit <= 0 || profile.IsEmpty() {
		return []result.Result{}
	}

	preferred := topTags(catalog, profile, p.topTags)
	if len(preferred) == 0 {
		return []result.Result{}
	}

	out := make([]result.Result, 0)
	for _, prod := range catalog {
		if profile.Has(prod.ID()) {
			continue
		}
		for _, tag := range prod.TagsView() {
			if _, ok := preferred[tag]; ok {
				out = append(out, result.New(prod.ID(), prod.Rating()))
				break
			}
		}
	}
	return result.Rank(out, limit)
}

// topTags weights each tag by the profile weight of every interacted product
// carrying it and returns the n heaviest (ties by tag name).
func topTags(catalog []product.Product, profile behavior.Profile, n int) map[string]struct{} {
	weights := make(map[string]int64)
	for _, prod := range catalog {
		w := profile.Weight(prod.ID())
		if w == 0 {
			continue
		}
		for _, tag := range prod.TagsView() {
			weights[tag] += w
		}
	}

	tags := make([]string, 0, len(weights))
	for tag := range weights {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if weights[tags[i]] != weights[tags[j]] {
			return weights[tags[i]] > weights[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > n {
		tags = tags[:n]
	}

	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}
