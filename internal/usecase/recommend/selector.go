package recommend

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/domain/search/result"
	"github.com/kailas-cloud/shopdex/internal/logger"
	"github.com/kailas-cloud/shopdex/internal/metrics"
)

// Selector picks a strategy per call based on the availability of behavior data.
// It serves Popular without a behavior store, for anonymous users and for
// users with no recorded behavior. It also falls back to Popular when
// personalization finds nothing or the behavior store fails.
type Selector struct {
	popular      Popular
	personalized *Personalized
}

// NewSelector creates a selector. personalized may be nil.
func NewSelector(personalized *Personalized) *Selector {
	return &Selector{personalized: personalized}
}

// Kind implements Strategy.
func (s *Selector) Kind() Kind {
	if s.personalized != nil {
		return KindPersonalized
	}
	return KindPopular
}

// Recommend implements Strategy. It never fails.
func (s *Selector) Recommend(
	ctx context.Context, catalog []product.Product, userID string, limit int,
) ([]result.Result, error) {
	res, kind := s.Select(ctx, catalog, userID, limit)
	metrics.RecommendStrategyTotal.WithLabelValues(string(kind)).Inc()
	logger.FromContext(ctx).Debug("Recommendation strategy selected",
		zap.String("strategy", string(kind)),
		zap.Int("results", len(res)),
	)
	return res, nil
}

// Select runs the chosen strategy and reports which one produced the result.
func (s *Selector) Select(
	ctx context.Context, catalog []product.Product, userID string, limit int,
) ([]result.Result, Kind) {
	if s.personalized != nil && userID != "" {
		profile, err := s.personalized.behaviors.Profile(ctx, userID)
		switch {
		case err != nil:
			logger.FromContext(ctx).Warn("Behavior profile unavailable, serving popular",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		case !profile.IsEmpty():
			if res := s.personalized.rank(catalog, profile, limit); len(res) > 0 {
				return res, KindPersonalized
			}
		}
	}
	return RankPopular(catalog, limit), KindPopular
}
