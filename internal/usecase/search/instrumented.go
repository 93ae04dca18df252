package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopdex/internal/domain"
	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
	"github.com/kailas-cloud/shopdex/internal/domain/search/result"
	"github.com/kailas-cloud/shopdex/internal/logger"
	"github.com/kailas-cloud/shopdex/internal/metrics"
)

// Engine is the operation set exposed to transports.
type Engine interface {
	Search(ctx context.Context, q string) ([]result.Result, error)
	SimilarProducts(ctx context.Context, id string) ([]result.Result, error)
	Recommendations(ctx context.Context, userID string) ([]result.Result, error)
	TrackBehavior(ctx context.Context, userID, productID string, action behavior.Action) error
}

// Instrumented wraps an Engine with Prometheus metrics and debug logging.
type Instrumented struct {
	inner Engine
}

// NewInstrumented wraps inner with observability.
func NewInstrumented(inner Engine) *Instrumented {
	return &Instrumented{inner: inner}
}

// Search implements Engine.
func (i *Instrumented) Search(ctx context.Context, q string) ([]result.Result, error) {
	start := time.Now()
	res, err := i.inner.Search(ctx, q)
	i.observe(ctx, "search", start, len(res), err, zap.String("query", q))
	return res, err //nolint:wrapcheck // transparent decorator
}

// SimilarProducts implements Engine.
func (i *Instrumented) SimilarProducts(ctx context.Context, id string) ([]result.Result, error) {
	start := time.Now()
	res, err := i.inner.SimilarProducts(ctx, id)
	i.observe(ctx, "similar", start, len(res), err, zap.String("product_id", id))
	return res, err //nolint:wrapcheck // transparent decorator
}

// Recommendations implements Engine.
func (i *Instrumented) Recommendations(ctx context.Context, userID string) ([]result.Result, error) {
	start := time.Now()
	res, err := i.inner.Recommendations(ctx, userID)
	i.observe(ctx, "recommendations", start, len(res), err, zap.Bool("anonymous", userID == ""))
	return res, err //nolint:wrapcheck // transparent decorator
}

// TrackBehavior implements Engine.
func (i *Instrumented) TrackBehavior(
	ctx context.Context, userID, productID string, action behavior.Action,
) error {
	start := time.Now()
	err := i.inner.TrackBehavior(ctx, userID, productID, action)
	i.observe(ctx, "track_behavior", start, -1, err,
		zap.String("product_id", productID), zap.String("action", string(action)))
	return err //nolint:wrapcheck // transparent decorator
}

// observe records metrics for one operation. n < 0 skips the result-size histogram.
func (i *Instrumented) observe(
	ctx context.Context, op string, start time.Time, n int, err error, fields ...zap.Field,
) {
	duration := time.Since(start)
	status := statusOf(err)

	metrics.EngineRequestsTotal.WithLabelValues(op, status).Inc()
	metrics.EngineRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err == nil && n >= 0 {
		metrics.EngineResults.WithLabelValues(op).Observe(float64(n))
	}

	fields = append(fields,
		zap.String("operation", op),
		zap.String("status", status),
		zap.Duration("duration", duration),
	)
	log := logger.FromContext(ctx)
	if status == "unavailable" || status == "error" {
		log.Warn("Engine operation failed", append(fields, zap.Error(err))...)
		return
	}
	log.Debug("Engine operation completed", append(fields, zap.Int("results", n))...)
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrBehaviorTrackingDisabled):
		return "rejected"
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
