package domain

import (
	"errors"
)

var (
	// ErrNotFound signals a missing product.
	ErrNotFound = errors.New("not found")
	// ErrCollaboratorUnavailable signals that the catalog store failed or timed out.
	ErrCollaboratorUnavailable = errors.New("catalog unavailable")
	// ErrInvalidInput signals a malformed request argument (e.g. unknown behavior action).
	ErrInvalidInput = errors.New("invalid input")
	// ErrBehaviorTrackingDisabled signals that no behavior store is configured.
	ErrBehaviorTrackingDisabled = errors.New("behavior tracking disabled")
)
