package service

import (
	"context"

	"github.com/paulmach/orb"
)

// Table holds pairwise road distances (km) and travel times (s) between points
type Table struct {
	Distances [][]float64
	Durations [][]float64
}

// MatrixProvider defines the interface for external road-network matrices.
// Points are (longitude, latitude).
type MatrixProvider interface {
	// Table returns the full distance and duration matrices for points
	Table(ctx context.Context, points []orb.Point) (*Table, error)
}
