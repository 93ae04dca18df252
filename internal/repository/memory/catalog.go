// Package memory provides mutex-guarded in-process stores for the memory
// driver, tests and embedded use.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kailas-cloud/shopdex/internal/domain"
	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
)

// Catalog is an in-memory product store.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]domprod.Product
	version  int64
}

// NewCatalog creates a catalog holding products.
func NewCatalog(products ...domprod.Product) *Catalog {
	c := &Catalog{products: make(map[string]domprod.Product, len(products))}
	for _, p := range products {
		c.products[p.ID()] = p
	}
	return c
}

// ListProducts returns every product ordered by ID.
func (c *Catalog) ListProducts(_ context.Context) ([]domprod.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domprod.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// FindProduct returns a product by ID or domain.ErrNotFound.
func (c *Catalog) FindProduct(_ context.Context, id string) (domprod.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return domprod.Product{}, domain.ErrNotFound
	}
	return p, nil
}

// Upsert creates or replaces a product. Returns true if created.
func (c *Catalog) Upsert(_ context.Context, p *domprod.Product) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.products[p.ID()]
	c.products[p.ID()] = *p
	c.version++
	return !exists, nil
}

// UpsertMany creates or replaces several products at once.
func (c *Catalog) UpsertMany(_ context.Context, products []domprod.Product) error {
	if len(products) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range products {
		c.products[p.ID()] = p
	}
	c.version++
	return nil
}

// Delete removes a product.
func (c *Catalog) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(c.products, id)
	c.version++
	return nil
}

// Version returns a counter bumped by every write.
func (c *Catalog) Version(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version, nil
}

// Ping always succeeds.
func (c *Catalog) Ping(_ context.Context) error { return nil }
