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
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	cache   CachePinger
	backend BackendPinger
}

// New creates a Service. cache can be nil when caching is disabled.
func New(cache CachePinger, backend BackendPinger) *Service {
	return &Service{cache: cache, backend: backend}
}

// Check runs health checks against all components. Cache failure degrades
// but the service keeps answering queries, so it never reports Unhealthy
// on its own.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.backend.Ping(ctx); err != nil {
		checks["backend"] = CheckError
	} else {
		checks["backend"] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	status := Healthy
	if checks["backend"] == CheckError {
		status = Unhealthy
	} else if checks["cache"] == CheckError {
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
