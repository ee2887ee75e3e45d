package usecase

import (
	"context"
	"time"

	"evroute/internal/domain/entity"
)

// DispatchRequest is one instance document to run through a set of algorithms
type DispatchRequest struct {
	// InputFile names the source of the document in logs and output
	InputFile string

	// Document is the raw instance as parsed from JSON, YAML or CSV
	Document map[string]any

	// Algorithms to run; empty falls back to configuration, then to every registered algorithm
	Algorithms []string
}

// DispatchReport collects the outcome of every requested algorithm in request order
type DispatchReport struct {
	RunID     string
	InputFile string
	Outcomes  []entity.Outcome
	Warnings  []string
	Elapsed   time.Duration
}

// Results returns the serialized outcomes
func (r *DispatchReport) Results() []entity.OutcomeDocument {
	docs := make([]entity.OutcomeDocument, len(r.Outcomes))
	for i, o := range r.Outcomes {
		docs[i] = o.Document()
	}

	return docs
}

// DispatchUsecase defines the interface for running solvers against an instance
type DispatchUsecase interface {
	// Run validates the document, runs the selected algorithms concurrently and
	// returns their outcomes. A malformed base instance or an unknown algorithm
	// fails the whole run before any solver starts; per-algorithm failures are
	// reported inside the outcomes.
	Run(ctx context.Context, req DispatchRequest) (*DispatchReport, error)

	// Algorithms returns the registered algorithm names
	Algorithms() []string
}
