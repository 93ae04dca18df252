// Package breaker guards the catalog store with a circuit breaker so a failing
// store is rejected fast instead of being hammered by every engine call.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopdex/internal/domain"
	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/metrics"
)

// Defaults applied to zero Settings fields.
const (
	DefaultFailureThreshold = 5
	DefaultOpenTimeout      = 30 * time.Second
	DefaultHalfOpenRequests = 1
)

// source is the guarded catalog (ISP).
type source interface {
	ListProducts(ctx context.Context) ([]domprod.Product, error)
	FindProduct(ctx context.Context, id string) (domprod.Product, error)
}

// versioner is implemented by sources exposing a catalog version counter.
type versioner interface {
	Version(ctx context.Context) (int64, error)
}

// Settings configures the breaker.
type Settings struct {
	Name             string
	FailureThreshold uint32        // consecutive failures that open the circuit
	OpenTimeout      time.Duration // time spent open before probing
	HalfOpenRequests uint32        // probes allowed while half-open
}

// Catalog decorates a catalog source with a circuit breaker. It never retries.
type Catalog struct {
	inner  source
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger *zap.Logger
}

// New wraps inner with a circuit breaker.
func New(inner source, st Settings, logger *zap.Logger) *Catalog {
	if st.Name == "" {
		st.Name = "catalog"
	}
	if st.FailureThreshold == 0 {
		st.FailureThreshold = DefaultFailureThreshold
	}
	if st.OpenTimeout <= 0 {
		st.OpenTimeout = DefaultOpenTimeout
	}
	if st.HalfOpenRequests == 0 {
		st.HalfOpenRequests = DefaultHalfOpenRequests
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics.CatalogBreakerState.WithLabelValues(st.Name).Set(0)

	threshold := st.FailureThreshold
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        st.Name,
		MaxRequests: st.HalfOpenRequests,
		Timeout:     st.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Catalog circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CatalogBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Catalog{inner: inner, cb: cb, name: st.Name, logger: logger}
}

// ListProducts implements the catalog contract.
func (c *Catalog) ListProducts(ctx context.Context) ([]domprod.Product, error) {
	res, err := c.execute(func() (any, error) {
		return c.inner.ListProducts(ctx)
	})
	if err != nil {
		return nil, err
	}
	products, _ := res.([]domprod.Product)
	return products, nil
}

// FindProduct implements the catalog contract.
func (c *Catalog) FindProduct(ctx context.Context, id string) (domprod.Product, error) {
	res, err := c.execute(func() (any, error) {
		return c.inner.FindProduct(ctx, id)
	})
	if err != nil {
		return domprod.Product{}, err
	}
	p, _ := res.(domprod.Product)
	return p, nil
}

// Version passes through to the source when it keeps a version counter; 0 otherwise.
func (c *Catalog) Version(ctx context.Context) (int64, error) {
	v, ok := c.inner.(versioner)
	if !ok {
		return 0, nil
	}
	res, err := c.execute(func() (any, error) {
		return v.Version(ctx)
	})
	if err != nil {
		return 0, err
	}
	n, _ := res.(int64)
	return n, nil
}

// Open reports whether the circuit currently rejects calls.
func (c *Catalog) Open() bool {
	return c.cb.State() == gobreaker.StateOpen
}

// State returns the breaker state name: closed, half-open or open.
func (c *Catalog) State() string {
	return c.cb.State().String()
}

func (c *Catalog) execute(fn func() (any, error)) (any, error) {
	res, err := c.cb.Execute(fn)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: breaker %s: %w", domain.ErrCollaboratorUnavailable, c.name, err)
	}
	return nil, err //nolint:wrapcheck // store errors pass through unchanged
}

// isSuccessful keeps lookups of unknown products and caller cancellations
// from counting against the store.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, context.Canceled)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
