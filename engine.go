package shopdex

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
	"github.com/kailas-cloud/shopdex/internal/domain/term"
	"github.com/kailas-cloud/shopdex/internal/repository/snapshot"
	"github.com/kailas-cloud/shopdex/internal/usecase/recommend"
	searchuc "github.com/kailas-cloud/shopdex/internal/usecase/search"
)

// Engine is the shopdex entry point. It is safe for concurrent use.
type Engine struct {
	svc   *searchuc.Service
	cache *snapshot.Cache
	obs   *observer
}

// New creates an Engine over catalog.
func New(catalog Catalog, opts ...Option) (*Engine, error) {
	cfg := &engineConfig{topTags: recommend.DefaultTopTags}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var (
		source = adaptCatalog(catalog)
		cat    searchuc.Catalog = source
		cache  *snapshot.Cache
	)
	if cfg.cacheTTL > 0 {
		cache = snapshot.New(source, cfg.cacheTTL, nil, zap.NewNop(), snapshot.WithFetchTimeout(cfg.fetchTimeout))
		cat = cache
	}

	svcOpts := []searchuc.Option{
		searchuc.WithTokenizer(term.NewTokenizer(term.WithUnicodeFolding(cfg.unicodeFold))),
		searchuc.WithFetchTimeout(cfg.fetchTimeout),
	}
	if cfg.behaviors != nil {
		b := &behaviorAdapter{inner: cfg.behaviors}
		svcOpts = append(svcOpts,
			searchuc.WithBehaviors(b),
			searchuc.WithRecommender(recommend.NewSelector(recommend.NewPersonalized(b, cfg.topTags))),
		)
	}

	return &Engine{
		svc:   searchuc.New(cat, svcOpts...),
		cache: cache,
		obs:   obs,
	}, nil
}

// Search returns up to 20 products matching a free-text query, best first.
// An empty or keyword-less query returns an empty list.
func (e *Engine) Search(ctx context.Context, query string) ([]Ranked, error) {
	start := time.Now()
	res, err := e.svc.Search(ctx, query)
	e.obs.observe("search", start, len(res), err)
	if err != nil {
		return nil, err //nolint:wrapcheck // sentinels are part of the API
	}
	return rankedFromResults(res), nil
}

// SimilarProducts returns up to 10 products similar to productID.
// Returns ErrNotFound if productID is not in the catalog.
func (e *Engine) SimilarProducts(ctx context.Context, productID string) ([]Ranked, error) {
	start := time.Now()
	res, err := e.svc.SimilarProducts(ctx, productID)
	e.obs.observe("similar", start, len(res), err)
	if err != nil {
		return nil, err //nolint:wrapcheck // sentinels are part of the API
	}
	return rankedFromResults(res), nil
}

// Recommendations returns up to 10 products for userID. An empty userID,
// or a user without behavior data, gets the highest rated products.
func (e *Engine) Recommendations(ctx context.Context, userID string) ([]Ranked, error) {
	start := time.Now()
	res, err := e.svc.Recommendations(ctx, userID)
	e.obs.observe("recommendations", start, len(res), err)
	if err != nil {
		return nil, err //nolint:wrapcheck // sentinels are part of the API
	}
	return rankedFromResults(res), nil
}

// TrackBehavior records a user interaction with a catalog product.
// Returns ErrBehaviorTrackingDisabled without WithBehaviors.
func (e *Engine) TrackBehavior(ctx context.Context, userID, productID string, action Action) error {
	start := time.Now()
	err := e.svc.TrackBehavior(ctx, userID, productID, behavior.Action(action))
	e.obs.observe("track_behavior", start, 0, err)
	return err //nolint:wrapcheck // sentinels are part of the API
}

// Invalidate drops the cached catalog snapshot, if caching is enabled.
// Call it after writing to a catalog that has no version counter.
func (e *Engine) Invalidate() {
	if e.cache != nil {
		e.cache.Invalidate()
	}
}
