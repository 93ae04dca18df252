package search

import (
	"context"

	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
	"github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/domain/search/result"
)

// Catalog is the read-only product store the engine ranks over.
// FindProduct returns domain.ErrNotFound for unknown identifiers.
type Catalog interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
	FindProduct(ctx context.Context, id string) (product.Product, error)
}

// Pinner is implemented by catalogs that can fix a single snapshot version
// for the duration of one engine call.
type Pinner interface {
	Pin(ctx context.Context) (product.Catalog, error)
}

// Recommender ranks a catalog snapshot for a (possibly anonymous) user.
type Recommender interface {
	Recommend(ctx context.Context, catalog []product.Product, userID string, limit int) ([]result.Result, error)
}

// BehaviorRecorder stores user interactions.
type BehaviorRecorder interface {
	Record(ctx context.Context, userID, productID string, action behavior.Action) error
}
