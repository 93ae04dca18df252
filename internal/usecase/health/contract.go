package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// BreakerChecker reports whether the catalog circuit breaker is open.
type BreakerChecker interface {
	Open() bool
}
