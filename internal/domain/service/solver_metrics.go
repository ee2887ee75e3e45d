package service

import "evroute/internal/domain/entity"

// SolverMetrics defines the interface for recording dispatch outcomes
type SolverMetrics interface {
	// ObserveInstance counts one dispatched instance
	ObserveInstance()

	// ObserveOutcome records one algorithm run
	ObserveOutcome(o entity.Outcome)

	// Flush exports the collected metrics
	Flush() error
}
