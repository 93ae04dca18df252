package shopdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/shopdex/internal/domain"
	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/repository/memory"
)

// MemoryCatalog is a concurrency-safe in-memory VersionedCatalog.
type MemoryCatalog struct {
	inner *memory.Catalog
}

var _ VersionedCatalog = (*MemoryCatalog)(nil)

// NewMemoryCatalog creates a catalog holding products. Products are stored
// as given, without validation.
func NewMemoryCatalog(products ...Product) *MemoryCatalog {
	ps := make([]domprod.Product, len(products))
	for i := range products {
		ps[i] = products[i].toDomain()
	}
	return &MemoryCatalog{inner: memory.NewCatalog(ps...)}
}

// ListProducts returns all products ordered by id.
func (c *MemoryCatalog) ListProducts(ctx context.Context) ([]Product, error) {
	ps, err := c.inner.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]Product, len(ps))
	for i := range ps {
		out[i] = productFromDomain(&ps[i])
	}
	return out, nil
}

// FindProduct returns a product by id or ErrNotFound.
func (c *MemoryCatalog) FindProduct(ctx context.Context, id string) (Product, error) {
	p, err := c.inner.FindProduct(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("product %q: %w", id, err)
	}
	return productFromDomain(&p), nil
}

// Upsert validates and stores p. Returns true if the product was new.
func (c *MemoryCatalog) Upsert(ctx context.Context, p Product) (bool, error) {
	dp, err := domprod.New(p.ID, domprod.Attrs{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Rating:      p.Rating,
		Tags:        p.Tags,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	created, err := c.inner.Upsert(ctx, &dp)
	if err != nil {
		return false, fmt.Errorf("upsert product: %w", err)
	}
	return created, nil
}

// Delete removes a product or returns ErrNotFound.
func (c *MemoryCatalog) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return fmt.Errorf("product %q: %w", id, err)
	}
	return nil
}

// Version returns the write counter.
func (c *MemoryCatalog) Version(ctx context.Context) (int64, error) {
	return c.inner.Version(ctx) //nolint:wrapcheck // in-memory, never fails
}

// MemoryBehaviors is an in-memory BehaviorSource with per-user sliding expiry.
type MemoryBehaviors struct {
	inner *memory.Behaviors
}

var _ BehaviorSource = (*MemoryBehaviors)(nil)

// NewMemoryBehaviors creates a behavior store. A user's interactions expire
// ttl after their last one; zero keeps them forever.
func NewMemoryBehaviors(ttl time.Duration) *MemoryBehaviors {
	return &MemoryBehaviors{inner: memory.NewBehaviors(ttl)}
}

// Record adds an interaction.
func (b *MemoryBehaviors) Record(ctx context.Context, userID, productID string, action Action) error {
	if err := b.inner.Record(ctx, userID, productID, behavior.Action(action)); err != nil {
		return fmt.Errorf("record behavior: %w", err)
	}
	return nil
}

// Profile returns accumulated weight per product for userID.
func (b *MemoryBehaviors) Profile(ctx context.Context, userID string) (map[string]int64, error) {
	p, err := b.inner.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("behavior profile: %w", err)
	}
	out := make(map[string]int64, p.Products())
	p.Each(func(productID string, weight int64) {
		out[productID] = weight
	})
	return out, nil
}
