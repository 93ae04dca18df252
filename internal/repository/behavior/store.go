package behavior

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/shopdex/internal/domain"
	dombeh "github.com/kailas-cloud/shopdex/internal/domain/behavior"
)

// DefaultTTL is how long a user's behavior survives without new activity.
const DefaultTTL = 30 * 24 * time.Hour

// store is the consumer interface for behavior operations (ISP).
type store interface {
	HIncrBy(ctx context.Context, key, field string, val int64) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store keeps one hash per user (<prefix>behavior:<user>) mapping product ID
// to accumulated action weight (HINCRBY + sliding EXPIRE).
type Store struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates a behavior store. Zero ttl uses DefaultTTL, empty prefix uses domain.KeyPrefix.
func New(s store, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{store: s, prefix: prefix, ttl: ttl}
}

// Record atomically adds the action weight and refreshes the user's TTL.
func (s *Store) Record(ctx context.Context, userID, productID string, action dombeh.Action) error {
	key := s.key(userID)
	if _, err := s.store.HIncrBy(ctx, key, productID, action.Weight()); err != nil {
		return fmt.Errorf("behavior HINCRBY %s: %w", key, err)
	}

	// Sliding expiry: every interaction extends the window.
	if err := s.store.Expire(ctx, key, s.ttl, false); err != nil {
		return fmt.Errorf("behavior EXPIRE %s: %w", key, err)
	}
	return nil
}

// Profile returns the user's accumulated weights. Unknown users get an empty profile.
func (s *Store) Profile(ctx context.Context, userID string) (dombeh.Profile, error) {
	key := s.key(userID)
	m, err := s.store.HGetAll(ctx, key)
	if err != nil {
		return dombeh.Profile{}, fmt.Errorf("behavior HGETALL %s: %w", key, err)
	}

	weights := make(map[string]int64, len(m))
	for productID, raw := range m {
		w, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return dombeh.Profile{}, fmt.Errorf("behavior %s field %s parse: %w", key, productID, err)
		}
		weights[productID] = w
	}
	return dombeh.NewProfile(weights), nil
}

func (s *Store) key(userID string) string {
	return s.prefix + "behavior:" + userID
}
