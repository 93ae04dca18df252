package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
)

// Behaviors is an in-memory behavior store with a sliding per-user TTL.
type Behaviors struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	users map[string]*userBehavior
}

type userBehavior struct {
	weights   map[string]int64
	expiresAt time.Time
}

// NewBehaviors creates a behavior store. ttl <= 0 keeps data forever.
func NewBehaviors(ttl time.Duration) *Behaviors {
	return &Behaviors{ttl: ttl, now: time.Now, users: make(map[string]*userBehavior)}
}

// Record adds the action weight to the user's score for the product.
func (b *Behaviors) Record(_ context.Context, userID, productID string, action behavior.Action) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.live(userID)
	if u == nil {
		u = &userBehavior{weights: make(map[string]int64)}
		b.users[userID] = u
	}
	u.weights[productID] += action.Weight()
	if b.ttl > 0 {
		u.expiresAt = b.now().Add(b.ttl)
	}
	return nil
}

// Profile returns the user's accumulated weights; empty for unknown or expired users.
func (b *Behaviors) Profile(_ context.Context, userID string) (behavior.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.live(userID)
	if u == nil {
		return behavior.NewProfile(nil), nil
	}
	return behavior.NewProfile(u.weights), nil
}

// live returns the user's entry, dropping it when expired. Caller holds mu.
func (b *Behaviors) live(userID string) *userBehavior {
	u, ok := b.users[userID]
	if !ok {
		return nil
	}
	if b.ttl > 0 && !b.now().Before(u.expiresAt) {
		delete(b.users, userID)
		return nil
	}
	return u
}
