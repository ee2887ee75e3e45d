package executionlog

import (
	"context"
	"sync"

	"evroute/internal/domain/repository"
)

// MemoryLog keeps entries in memory; used when the file log is disabled and in tests
type MemoryLog struct {
	mu      sync.Mutex
	entries []repository.ExecutionEntry
}

var _ repository.ExecutionLog = (*MemoryLog)(nil)

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (l *MemoryLog) Append(_ context.Context, entries ...repository.ExecutionEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entries...)

	return nil
}

func (l *MemoryLog) List(_ context.Context) ([]repository.ExecutionEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]repository.ExecutionEntry, len(l.entries))
	copy(out, l.entries)

	return out, nil
}
