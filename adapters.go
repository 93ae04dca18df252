package shopdex

import (
	"context"

	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
)

// catalogAdapter exposes a public Catalog as the internal product catalog.
// Errors pass through unwrapped so callers' sentinels survive.
type catalogAdapter struct {
	inner Catalog
}

func (a *catalogAdapter) ListProducts(ctx context.Context) ([]domprod.Product, error) {
	ps, err := a.inner.ListProducts(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck // caller-supplied catalog
	}
	out := make([]domprod.Product, len(ps))
	for i := range ps {
		out[i] = ps[i].toDomain()
	}
	return out, nil
}

func (a *catalogAdapter) FindProduct(ctx context.Context, id string) (domprod.Product, error) {
	p, err := a.inner.FindProduct(ctx, id)
	if err != nil {
		return domprod.Product{}, err //nolint:wrapcheck // caller-supplied catalog
	}
	return p.toDomain(), nil
}

// versionedAdapter additionally passes the catalog version through.
type versionedAdapter struct {
	catalogAdapter
	versioned VersionedCatalog
}

func (a *versionedAdapter) Version(ctx context.Context) (int64, error) {
	return a.versioned.Version(ctx) //nolint:wrapcheck // caller-supplied catalog
}

func adaptCatalog(c Catalog) domprod.Catalog {
	if vc, ok := c.(VersionedCatalog); ok {
		return &versionedAdapter{catalogAdapter: catalogAdapter{inner: c}, versioned: vc}
	}
	return &catalogAdapter{inner: c}
}

// behaviorAdapter exposes a public BehaviorSource to the recommenders.
type behaviorAdapter struct {
	inner BehaviorSource
}

func (a *behaviorAdapter) Record(ctx context.Context, userID, productID string, action behavior.Action) error {
	return a.inner.Record(ctx, userID, productID, Action(action)) //nolint:wrapcheck // caller-supplied store
}

func (a *behaviorAdapter) Profile(ctx context.Context, userID string) (behavior.Profile, error) {
	weights, err := a.inner.Profile(ctx, userID)
	if err != nil {
		return behavior.Profile{}, err //nolint:wrapcheck // caller-supplied store
	}
	return behavior.NewProfile(weights), nil
}
