package logs

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// KeyRunID is the key for storing the dispatch run ID in context.
	KeyRunID ContextKey = "run_id"

	// KeyLogger is the key for storing a run-scoped logger in context.
	KeyLogger ContextKey = "logger"
)

// NewRunID returns a fresh run identifier
func NewRunID() string {
	return uuid.New().String()
}

// RunIDFromContext extracts the run ID from ctx, or returns an empty string.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(KeyRunID).(string); ok {
		return id
	}

	return ""
}

// WithRunID returns a new context with the run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, KeyRunID, runID)
}

// FromContext extracts the run-scoped logger, falling back when none is set.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

// WithLogger returns a new context with the logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, KeyLogger, logger)
}
