package shopdex

import (
	"context"
	"time"

	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/domain/search/result"
)

// Product is a catalog record. Price is in minor currency units (cents).
type Product struct {
	ID          string
	Title       string
	Description string
	Price       int64
	Rating      float64
	Tags        []string
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ranked is one ranked result.
type Ranked struct {
	ID    string
	Score float64
}

// Catalog supplies the products the engine ranks.
// FindProduct must return an error wrapping ErrNotFound for unknown ids.
type Catalog interface {
	ListProducts(ctx context.Context) ([]Product, error)
	FindProduct(ctx context.Context, id string) (Product, error)
}

// VersionedCatalog is a Catalog that bumps a counter on every write.
// The snapshot cache refetches as soon as the counter moves.
type VersionedCatalog interface {
	Catalog
	Version(ctx context.Context) (int64, error)
}

// Action is a kind of user interaction.
type Action string

// Actions, weighted 1, 2 and 3.
const (
	ActionView      Action = Action(behavior.View)
	ActionAddToCart Action = Action(behavior.AddToCart)
	ActionPurchase  Action = Action(behavior.Purchase)
)

// BehaviorSource records user interactions and returns per-user profiles:
// accumulated action weight per product id.
type BehaviorSource interface {
	Record(ctx context.Context, userID, productID string, action Action) error
	Profile(ctx context.Context, userID string) (map[string]int64, error)
}

func (p *Product) toDomain() domprod.Product {
	return domprod.Reconstruct(p.ID, domprod.Attrs{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Rating:      p.Rating,
		Tags:        p.Tags,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
}

func productFromDomain(p *domprod.Product) Product {
	a := p.Attrs()
	return Product{
		ID:          p.ID(),
		Title:       a.Title,
		Description: a.Description,
		Price:       a.Price,
		Rating:      a.Rating,
		Tags:        a.Tags,
		Stock:       a.Stock,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func rankedFromResults(res []result.Result) []Ranked {
	out := make([]Ranked, len(res))
	for i, r := range res {
		out[i] = Ranked{ID: r.ID(), Score: r.Score()}
	}
	return out
}
