// Package matrix selects the external road-network matrix provider.
package matrix

import (
	"log/slog"
	"strings"

	"evroute/config"
	"evroute/internal/domain/service"
	"evroute/internal/infra/matrix/osrm"

	"github.com/pkg/errors"
)

// Provider names accepted in matrix.provider
const (
	ProviderNone = "none"
	ProviderOSRM = "osrm"
)

// New returns the configured provider, or nil when distances come from coordinates only
func New(cfg *config.Config, logger *slog.Logger) (service.MatrixProvider, error) {
	if cfg.Matrix == nil {
		return nil, nil
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Matrix.Provider)) {
	case "", ProviderNone:
		return nil, nil
	case ProviderOSRM:
		client, err := osrm.NewClient(cfg.Matrix.OSRM, logger.With(slog.String("component", "osrm")))
		if err != nil {
			return nil, err
		}

		return client, nil
	default:
		return nil, errors.Errorf("unknown matrix provider %q", cfg.Matrix.Provider)
	}
}
