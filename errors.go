package shopdex

import "github.com/kailas-cloud/shopdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound                 = domain.ErrNotFound
	ErrCollaboratorUnavailable  = domain.ErrCollaboratorUnavailable
	ErrInvalidInput             = domain.ErrInvalidInput
	ErrBehaviorTrackingDisabled = domain.ErrBehaviorTrackingDisabled
)
