package recommend

import (
	"context"

	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
)

// BehaviorReader loads a user's accumulated interactions.
type BehaviorReader interface {
	Profile(ctx context.Context, userID string) (behavior.Profile, error)
}
