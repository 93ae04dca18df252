package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckOpen indicates a circuit breaker that is rejecting calls.
	CheckOpen CheckResult = "open"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	breaker BreakerChecker
}

// New creates a Service. Both arguments can be nil: the in-memory catalog
// has no database, and the breaker is optional.
func New(db DBPinger, breaker BreakerChecker) *Service {
	return &Service{db: db, breaker: breaker}
}

// Check runs health checks against all components.
// A failed database with an open breaker means the engine cannot serve
// anything, which is reported as Unhealthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			checks["database"] = CheckError
		} else {
			checks["database"] = CheckOK
		}
	}

	if s.breaker != nil {
		if s.breaker.Open() {
			checks["catalog_breaker"] = CheckOpen
		} else {
			checks["catalog_breaker"] = CheckOK
		}
	}

	failed := 0
	for _, v := range checks {
		if v != CheckOK {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(checks) && len(checks) > 1:
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
