package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopdex/internal/domain"
	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/logger"
)

// Service handles catalog writes and keeps cached snapshots coherent.
type Service struct {
	repo  Repository
	cache Invalidator
	now   func() time.Time
}

// New creates a catalog service. cache can be nil.
func New(repo Repository, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Upsert validates and stores a product.
// Returns true if the product was created, false if replaced.
func (s *Service) Upsert(ctx context.Context, id string, attrs domprod.Attrs) (bool, error) {
	p, err := s.build(id, attrs)
	if err != nil {
		return false, err
	}
	if attrs.CreatedAt.IsZero() {
		if p, err = s.keepCreatedAt(ctx, p, attrs); err != nil {
			return false, err
		}
	}

	// The store may hold the write even when the call fails part way.
	created, err := s.repo.Upsert(ctx, &p)
	s.invalidate()
	if err != nil {
		return false, fmt.Errorf("upsert product: %w", err)
	}

	logger.FromContext(ctx).Debug("Product stored",
		zap.String("product_id", id),
		zap.Bool("created", created),
	)
	return created, nil
}

// UpsertMany validates all products first and stores them only if every one is valid.
func (s *Service) UpsertMany(ctx context.Context, items []Item) (int, error) {
	products := make([]domprod.Product, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if _, dup := seen[it.ID]; dup {
			return 0, fmt.Errorf("item %d: duplicate product id %q: %w", i, it.ID, domain.ErrInvalidInput)
		}
		seen[it.ID] = struct{}{}

		p, err := s.build(it.ID, it.Attrs)
		if err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
		products = append(products, p)
	}
	if len(products) == 0 {
		return 0, nil
	}

	err := s.repo.UpsertMany(ctx, products)
	s.invalidate()
	if err != nil {
		return 0, fmt.Errorf("upsert products: %w", err)
	}
	return len(products), nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	s.invalidate()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *Service) build(id string, attrs domprod.Attrs) (domprod.Product, error) {
	now := s.now().UTC()
	if attrs.CreatedAt.IsZero() {
		attrs.CreatedAt = now
	}
	attrs.UpdatedAt = now

	p, err := domprod.New(id, attrs)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return p, nil
}

// keepCreatedAt carries the stored creation time over to a replacement.
func (s *Service) keepCreatedAt(ctx context.Context, p domprod.Product, attrs domprod.Attrs) (domprod.Product, error) {
	existing, err := s.repo.FindProduct(ctx, p.ID())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return p, nil
	case err != nil:
		return domprod.Product{}, fmt.Errorf("lookup product %s: %w", p.ID(), err)
	}
	attrs.CreatedAt = existing.CreatedAt()
	return s.build(p.ID(), attrs)
}

func (s *Service) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}
