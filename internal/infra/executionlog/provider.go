package executionlog

import (
	"evroute/config"
	"evroute/internal/domain/repository"
)

// New returns the file log when enabled in config, otherwise an in-memory log
func New(cfg *config.Config) repository.ExecutionLog {
	if cfg.ExecutionLog != nil && cfg.ExecutionLog.Enabled && cfg.ExecutionLog.Path != "" {
		return NewFileLog(cfg.ExecutionLog.Path)
	}

	return NewMemoryLog()
}
