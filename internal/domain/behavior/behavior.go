// Package behavior models recorded user interactions with catalog products.
package behavior

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/shopdex/internal/domain"
)

// Action is a kind of user interaction.
type Action string

// Supported actions.
const (
	View      Action = "view"
	AddToCart Action = "add_to_cart"
	Purchase  Action = "purchase"
)

// Weight returns the preference weight of the action, 0 for unknown actions.
func (a Action) Weight() int64 {
	switch a {
	case View:
		return 1
	case AddToCart:
		return 2
	case Purchase:
		return 3
	default:
		return 0
	}
}

// IsValid reports whether a is a supported action.
func (a Action) IsValid() bool { return a.Weight() > 0 }

// ParseAction parses a case-insensitive action name.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, s)
	}
	return a, nil
}

// Profile is a user's accumulated interaction weight per product.
type Profile struct {
	weights map[string]int64
}

// NewProfile creates a profile from product weights. Non-positive weights are dropped.
func NewProfile(weights map[string]int64) Profile {
	w := make(map[string]int64, len(weights))
	for id, v := range weights {
		if v > 0 {
			w[id] = v
		}
	}
	return Profile{weights: w}
}

// Weight returns the accumulated weight for a product.
func (p Profile) Weight(productID string) int64 { return p.weights[productID] }

// Has reports whether the user interacted with the product.
func (p Profile) Has(productID string) bool {
	_, ok := p.weights[productID]
	return ok
}

// Products returns the number of products the user interacted with.
func (p Profile) Products() int { return len(p.weights) }

// IsEmpty reports whether the profile carries no interactions.
func (p Profile) IsEmpty() bool { return len(p.weights) == 0 }

// Each calls fn for every product in the profile, in no particular order.
func (p Profile) Each(fn func(productID string, weight int64)) {
	for id, w := range p.weights {
		fn(id, w)
	}
}
