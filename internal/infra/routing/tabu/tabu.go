// Package tabu implements Tabu Search over one route per vehicle with
// single-customer relocation moves.
package tabu

import (
	"context"
	"log/slog"

	"evroute/internal/domain/entity"
	"evroute/internal/infra/routing/solver"
)

// Solver is the tabu search over one route per vehicle
type Solver struct{}

// NewSolver creates the tabu search solver
func NewSolver() *Solver {
	return &Solver{}
}

// Name returns the algorithm name
func (s *Solver) Name() string { return entity.AlgorithmTabuSearch }

// Solve runs until the iteration cap, the time limit or an empty
// neighborhood. Iterations where every move is tabu are spent waiting for
// the tabu list to expire. Only routes that visit a customer are reported.
func (s *Solver) Solve(ctx context.Context, p *solver.Problem) (*entity.Result, error) {
	cfg := p.Config.Tabu
	k := max(1, len(p.Instance.Vehicles))

	ts := newSearch(p.Model, p.Depot, p.Customers(), k, cfg.Tenure, cfg.Aspiration, solver.NewRand(cfg.Seed))
	deadline := solver.NewDeadline(ctx, cfg.TimeLimit)

	canceled := false
loop:
	for ts.it < cfg.MaxIterations {
		if deadline.Canceled() {
			canceled = true

			break
		}
		if deadline.BudgetExhausted() {
			break
		}

		switch ts.step() {
		case stepNoMoves:
			break loop
		case stepAllTabu:
			p.Logger.Debug("Every move is tabu", slog.Int("iteration", ts.it))
		}
	}

	p.Logger.Debug("Tabu search finished",
		slog.Int("iterations", ts.it),
		slog.Float64("cost", ts.bestCost),
		slog.Int("routes", k))

	routes := make([][]int, 0, len(ts.best))
	for _, r := range ts.best {
		if len(r) > 2 {
			routes = append(routes, r)
		}
	}
	if len(routes) == 0 {
		routes = append(routes, []int{p.Depot, p.Depot})
	}

	for _, r := range routes {
		if err := p.CheckRoute(r); err != nil {
			p.Logger.Warn("Tabu route exceeds vehicle limits", slog.Any("error", err))
		}
	}

	result := p.MultiResult(s.Name(), routes)
	if canceled {
		return solver.TimeoutResult(ctx, result)
	}

	return result, nil
}
