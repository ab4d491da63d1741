package health

import (
	"context"
	"sort"
)

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

// Component names reported by Check.
const (
	ComponentContextIndex = "context_index"
	ComponentDatabase     = "database"
	ComponentLLM          = "llm"
	ComponentEmbedding    = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type check func(ctx context.Context) error

// Service coordinates health checks.
type Service struct {
	checks map[string]check
}

// New creates a Service. llm and embedding can be nil.
func New(contextIndex, database Pinger, llm, embedding Checker) *Service {
	s := &Service{checks: map[string]check{
		ComponentContextIndex: contextIndex.Ping,
		ComponentDatabase:     database.Ping,
	}}
	if llm != nil {
		s.checks[ComponentLLM] = llm.HealthCheck
	}
	if embedding != nil {
		s.checks[ComponentEmbedding] = embedding.HealthCheck
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]CheckResult, len(names))
	failed := 0
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			results[name] = CheckError
			failed++
			continue
		}
		results[name] = CheckOK
	}

	status := Healthy
	switch {
	case failed == len(names):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: results}
}
