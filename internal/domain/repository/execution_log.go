package repository

import (
	"context"
	"time"

	"evroute/internal/domain/entity"
)

// ExecutionEntry is one algorithm run as recorded in the execution log
type ExecutionEntry struct {
	RunID     string                 `json:"run_id"`
	Timestamp time.Time              `json:"timestamp"`
	InputFile string                 `json:"input_file"`
	Algorithm string                 `json:"algoritmo"`
	Input     map[string]any         `json:"input"`
	Output    entity.OutcomeDocument `json:"output"`
	ElapsedMS int64                  `json:"elapsed_ms"`
}

// ExecutionLog defines the interface for the append-only run history
type ExecutionLog interface {
	// Append records entries in order
	Append(ctx context.Context, entries ...ExecutionEntry) error

	// List returns every recorded entry, oldest first
	List(ctx context.Context) ([]ExecutionEntry, error)
}
