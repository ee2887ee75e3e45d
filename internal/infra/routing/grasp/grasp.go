// Package grasp implements a greedy randomized adaptive search over single
// routes: randomized nearest-first construction followed by 2-opt.
package grasp

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"

	"evroute/internal/domain/entity"
	"evroute/internal/infra/routing/localsearch"
	"evroute/internal/infra/routing/solver"
)

// Solver is the randomized greedy construction with local search
type Solver struct{}

// NewSolver creates the GRASP solver
func NewSolver() *Solver {
	return &Solver{}
}

// Name returns the algorithm name
func (s *Solver) Name() string { return entity.AlgorithmGRASP }

// Solve keeps the shortest route over all iterations. Construction places
// every customer without looking at capacity or battery; a best route that
// breaks either limit is still returned and logged as a warning.
func (s *Solver) Solve(ctx context.Context, p *solver.Problem) (*entity.Result, error) {
	cfg := p.Config.GRASP
	rng := solver.NewRand(cfg.Seed)
	deadline := solver.NewDeadline(ctx, cfg.TimeLimit)

	var (
		best     []int
		bestCost = math.Inf(1)
		iter     int
	)

	for iter = 0; iter < cfg.MaxIterations; iter++ {
		if deadline.Canceled() {
			p.Logger.Info("GRASP canceled", slog.Int("iterations", iter))

			var result *entity.Result
			if best != nil {
				result = p.Result(s.Name(), best)
			}

			return solver.TimeoutResult(ctx, result)
		}
		if deadline.BudgetExhausted() {
			break
		}

		route := localsearch.TwoOpt(Construct(p, cfg.Alpha, rng), p.Model)
		if cost := p.Model.RouteDistance(route); cost < bestCost {
			best, bestCost = route, cost
		}
	}

	p.Logger.Debug("GRASP finished", slog.Int("iterations", iter), slog.Float64("cost", bestCost))

	if best == nil {
		best = localsearch.TwoOpt(Construct(p, cfg.Alpha, rng), p.Model)
	}
	if err := p.CheckRoute(best); err != nil {
		p.Logger.Warn("GRASP route exceeds vehicle limits", slog.Any("error", err))
	}

	return p.Result(s.Name(), best), nil
}

// Construct builds one closed route. At every step the k = max(1, ceil(alpha*r))
// customers nearest to the route tail, r being the number still unplaced, form
// the candidate list and one of them is picked uniformly.
func Construct(p *solver.Problem, alpha float64, rng *rand.Rand) []int {
	remaining := p.Customers()
	route := make([]int, 0, len(remaining)+2)
	route = append(route, p.Depot)

	tail := p.Depot
	for len(remaining) > 0 {
		sort.SliceStable(remaining, func(a, b int) bool {
			return p.Model.Distance(tail, remaining[a]) < p.Model.Distance(tail, remaining[b])
		})

		k := max(1, int(math.Ceil(alpha*float64(len(remaining)))))
		k = min(k, len(remaining))

		pick := rng.IntN(k)
		tail = remaining[pick]
		route = append(route, tail)
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}

	return append(route, p.Depot)
}
