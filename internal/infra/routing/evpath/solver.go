package evpath

import (
	"context"
	"log/slog"

	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"
	"evroute/internal/infra/routing/solver"
)

// Solver exposes the energy-aware shortest path as a dispatchable algorithm.
// It routes from start_id (default: first node) to end_id (default: last node).
type Solver struct{}

// NewSolver creates the shortest path solver
func NewSolver() *Solver {
	return &Solver{}
}

// Name returns the algorithm name
func (s *Solver) Name() string { return entity.AlgorithmDijkstra }

// Solve finds the path and reports its distance and energy. A travel-time
// matrix only changes which path is chosen; custo stays in distance units.
func (s *Solver) Solve(ctx context.Context, p *solver.Problem) (*entity.Result, error) {
	start, end, err := endpoints(p.Instance)
	if err != nil {
		return nil, err
	}

	path, err := NewPathfinder(p.Model).FindPath(ctx, start, end, p.Battery)
	if err != nil {
		return nil, err
	}

	p.Logger.Debug("Energy-aware path found",
		slog.Int("hops", len(path.Nodes)-1),
		slog.Int("recharges", len(path.Recharges)),
		slog.Float64("objective", path.Cost),
		slog.Float64("final_soc", path.FinalSoC))

	result := &entity.Result{
		Algorithm: s.Name(),
		Rota:      p.Model.IDs(path.Nodes),
		Custo:     path.Distance,
	}
	result.SetEnergy(path.Energy)

	return result, nil
}

func endpoints(inst *entity.Instance) (int, int, error) {
	start, end := 0, len(inst.Nodes)-1

	if inst.StartID != nil {
		idx, ok := inst.IndexOf(*inst.StartID)
		if !ok {
			return 0, 0, domainerrors.ErrMalformedInstance.WithDetailsf("start_id %d is not a node", *inst.StartID)
		}
		start = idx
	}

	if inst.EndID != nil {
		idx, ok := inst.IndexOf(*inst.EndID)
		if !ok {
			return 0, 0, domainerrors.ErrMalformedInstance.WithDetailsf("end_id %d is not a node", *inst.EndID)
		}
		end = idx
	}

	return start, end, nil
}
