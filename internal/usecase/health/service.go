// Package health aggregates component availability checks for the health
// endpoint.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
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
	db         DBPinger
	embedding  ProviderChecker
	generation ProviderChecker
}

// New creates a Service. embedding and generation can be nil.
func New(db DBPinger, embedding, generation ProviderChecker) *Service {
	return &Service{db: db, embedding: embedding, generation: generation}
}

// Check runs health checks against all components. The service stays up
// with degraded answers when providers fail, so provider errors never make
// the whole report fatal.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		checks["embedding"] = providerCheck(ctx, s.embedding)
	}
	if s.generation != nil {
		checks["generation"] = providerCheck(ctx, s.generation)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func providerCheck(ctx context.Context, p ProviderChecker) CheckResult {
	if err := p.HealthCheck(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
