package product

import (
	"fmt"
	"regexp"
	"slices"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Rating bounds.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Product is a catalog record (immutable value object).
// Price is stored in minor currency units (cents).
type Product struct {
	id          string
	title       string
	description string
	price       int64
	rating      float64
	tags        []string
	stock       int
	createdAt   time.Time
	updatedAt   time.Time
}

// Attrs holds the field values of a Product.
type Attrs struct {
	Title       string
	Description string
	Price       int64
	Rating      float64
	Tags        []string
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New validates and creates a Product.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Title non-empty, price and stock non-negative,
// rating within [0, 5].
func New(id string, a Attrs) (Product, error) {
	if id == "" {
		return Product{}, fmt.Errorf("product ID is required")
	}
	if len(id) > 256 {
		return Product{}, fmt.Errorf("product ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Product{}, fmt.Errorf("product ID must be alphanumeric with underscores and hyphens")
	}
	if a.Title == "" {
		return Product{}, fmt.Errorf("title is required")
	}
	if a.Price < 0 {
		return Product{}, fmt.Errorf("price must not be negative")
	}
	if a.Stock < 0 {
		return Product{}, fmt.Errorf("stock must not be negative")
	}
	if a.Rating < MinRating || a.Rating > MaxRating {
		return Product{}, fmt.Errorf("rating must be between %.0f and %.0f, got %v", MinRating, MaxRating, a.Rating)
	}
	return Reconstruct(id, a), nil
}

// Reconstruct creates a Product without validation (storage hydration).
func Reconstruct(id string, a Attrs) Product {
	return Product{
		id:          id,
		title:       a.Title,
		description: a.Description,
		price:       a.Price,
		rating:      a.Rating,
		tags:        slices.Clone(a.Tags),
		stock:       a.Stock,
		createdAt:   a.CreatedAt,
		updatedAt:   a.UpdatedAt,
	}
}

// ID returns the product identifier.
func (p *Product) ID() string { return p.id }

// Title returns the product title.
func (p *Product) Title() string { return p.title }

// Description returns the product description.
func (p *Product) Description() string { return p.description }

// Price returns the price in minor currency units.
func (p *Product) Price() int64 { return p.price }

// Rating returns the average rating in [0, 5].
func (p *Product) Rating() float64 { return p.rating }

// Tags returns a copy of the ordered tag list.
func (p *Product) Tags() []string { return slices.Clone(p.tags) }

// TagsView returns the tag list without copying. Callers must not modify it.
func (p *Product) TagsView() []string { return p.tags }

// Stock returns the number of units in stock.
func (p *Product) Stock() int { return p.stock }

// CreatedAt returns the creation timestamp.
func (p *Product) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last update timestamp.
func (p *Product) UpdatedAt() time.Time { return p.updatedAt }

// Attrs returns the construction arguments of p.
func (p *Product) Attrs() Attrs {
	return Attrs{
		Title:       p.title,
		Description: p.description,
		Price:       p.price,
		Rating:      p.rating,
		Tags:        slices.Clone(p.tags),
		Stock:       p.stock,
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
	}
}
