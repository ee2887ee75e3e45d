// Package executionlog stores the append-only history of algorithm runs.
package executionlog

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"evroute/internal/domain/repository"

	"github.com/pkg/errors"
)

const maxLineBytes = 64 << 20

// FileLog writes one JSON document per line to a file
type FileLog struct {
	path string
	mu   sync.Mutex
}

var _ repository.ExecutionLog = (*FileLog)(nil)

// NewFileLog creates a log at path; the file and its directory are created on first append
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

func (l *FileLog) Append(_ context.Context, entries ...repository.ExecutionEntry) error {
	if len(entries) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create execution log directory")
		}
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "failed to open execution log")
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, entry := range entries {
		if err := encoder.Encode(entry); err != nil {
			return errors.Wrapf(err, "failed to encode entry for %s", entry.Algorithm)
		}
	}

	return errors.Wrap(writer.Flush(), "failed to write execution log")
}

func (l *FileLog) List(_ context.Context) ([]repository.ExecutionEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open execution log")
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var entries []repository.ExecutionEntry
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var entry repository.ExecutionEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, errors.Wrapf(err, "execution log line %d", line)
		}
		entries = append(entries, entry)
	}

	return entries, errors.Wrap(scanner.Err(), "failed to read execution log")
}
