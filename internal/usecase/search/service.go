package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/shopdex/internal/domain"
	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
	"github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/domain/search/query"
	"github.com/kailas-cloud/shopdex/internal/domain/search/result"
	"github.com/kailas-cloud/shopdex/internal/domain/term"
	"github.com/kailas-cloud/shopdex/internal/usecase/recommend"
)

// Service is the search engine facade: relevance search, similar products
// and recommendations over a catalog snapshot fetched per call.
type Service struct {
	catalog      Catalog
	parser       query.Parser
	relevance    relevanceScorer
	similarity   similarityEngine
	recommender  Recommender
	behaviors    BehaviorRecorder
	fetchTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithTokenizer sets the tokenizer shared by query parsing, scoring and similarity.
func WithTokenizer(tok term.Tokenizer) Option {
	return func(s *Service) {
		s.parser = query.NewParser(tok)
		s.relevance = relevanceScorer{tok: tok}
		s.similarity = similarityEngine{tok: tok}
	}
}

// WithFetchTimeout bounds every catalog fetch. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) { s.fetchTimeout = d }
}

// WithRecommender replaces the popularity fallback.
func WithRecommender(r Recommender) Option {
	return func(s *Service) { s.recommender = r }
}

// WithBehaviors enables behavior tracking.
func WithBehaviors(b BehaviorRecorder) Option {
	return func(s *Service) { s.behaviors = b }
}

// New creates a search service over catalog.
func New(catalog Catalog, opts ...Option) *Service {
	s := &Service{
		catalog:     catalog,
		recommender: recommend.Popular{},
	}
	WithTokenizer(term.NewTokenizer())(s)
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search ranks the catalog against a free-text query. Malformed queries
// never fail; a query without keywords matches nothing.
func (s *Service) Search(ctx context.Context, q string) ([]result.Result, error) {
	filter := s.parser.Parse(q)

	// Fetched even when no keyword survives parsing, so a failing store is
	// reported for every query.
	view, err := s.pin(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.list(ctx, view)
	if err != nil {
		return nil, err
	}
	return s.relevance.rank(products, filter, domain.SearchLimit), nil
}

// SimilarProducts ranks products by textual similarity to the given one.
// Unknown identifiers fail with domain.ErrNotFound before any scoring.
func (s *Service) SimilarProducts(ctx context.Context, id string) ([]result.Result, error) {
	view, err := s.pin(ctx)
	if err != nil {
		return nil, err
	}
	target, err := s.find(ctx, view, id)
	if err != nil {
		return nil, err
	}
	products, err := s.list(ctx, view)
	if err != nil {
		return nil, err
	}
	return s.similarity.similar(target, products, domain.SimilarLimit), nil
}

// Recommendations returns products for userID, which may be empty.
func (s *Service) Recommendations(ctx context.Context, userID string) ([]result.Result, error) {
	view, err := s.pin(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.list(ctx, view)
	if err != nil {
		return nil, err
	}
	res, err := s.recommender.Recommend(ctx, products, userID, domain.RecommendationLimit)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return res, nil
}

// TrackBehavior records a user interaction with an existing product.
func (s *Service) TrackBehavior(ctx context.Context, userID, productID string, action behavior.Action) error {
	if s.behaviors == nil {
		return domain.ErrBehaviorTrackingDisabled
	}
	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if !action.IsValid() {
		return fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action)
	}
	if _, err := s.find(ctx, s.catalog, productID); err != nil {
		return err
	}
	if err := s.behaviors.Record(ctx, userID, productID, action); err != nil {
		return fmt.Errorf("record behavior: %w", err)
	}
	return nil
}

// pin fixes one snapshot version for the whole call when the catalog supports it.
func (s *Service) pin(ctx context.Context) (Catalog, error) {
	p, ok := s.catalog.(Pinner)
	if !ok {
		return s.catalog, nil
	}
	ctx, cancel := s.fetchContext(ctx)
	defer cancel()

	view, err := p.Pin(ctx)
	if err != nil {
		return nil, unavailable("pin snapshot", err)
	}
	return view, nil
}

func (s *Service) list(ctx context.Context, c Catalog) ([]product.Product, error) {
	ctx, cancel := s.fetchContext(ctx)
	defer cancel()

	products, err := c.ListProducts(ctx)
	if err != nil {
		return nil, unavailable("list products", err)
	}
	return products, nil
}

func (s *Service) find(ctx context.Context, c Catalog, id string) (product.Product, error) {
	ctx, cancel := s.fetchContext(ctx)
	defer cancel()

	p, err := c.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return product.Product{}, fmt.Errorf("product %q: %w", id, err)
		}
		return product.Product{}, unavailable("find product", err)
	}
	return p, nil
}

func (s *Service) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.fetchTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.fetchTimeout)
}

// unavailable classifies a catalog failure, keeping the cause reachable via errors.Is.
func unavailable(op string, err error) error {
	if errors.Is(err, domain.ErrCollaboratorUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrCollaboratorUnavailable, op, err)
}
