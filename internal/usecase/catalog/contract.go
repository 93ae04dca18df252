package catalog

import (
	"context"

	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
)

// Repository defines the storage contract for catalog writes.
type Repository interface {
	FindProduct(ctx context.Context, id string) (domprod.Product, error)
	Upsert(ctx context.Context, p *domprod.Product) (created bool, err error)
	UpsertMany(ctx context.Context, products []domprod.Product) error
	Delete(ctx context.Context, id string) error
}

// Invalidator drops cached catalog snapshots after a write.
type Invalidator interface {
	Invalidate()
}
