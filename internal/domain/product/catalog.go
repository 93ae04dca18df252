package product

import "context"

// Catalog is read access to a set of products.
// FindProduct returns domain.ErrNotFound for unknown identifiers.
type Catalog interface {
	ListProducts(ctx context.Context) ([]Product, error)
	FindProduct(ctx context.Context, id string) (Product, error)
}
