// Package nearest builds a single route greedily from the depot.
package nearest

import (
	"context"
	"log/slog"

	"evroute/internal/domain/entity"
	"evroute/internal/infra/routing/localsearch"
	"evroute/internal/infra/routing/solver"
)

// Solver is the greedy nearest neighbor construction
type Solver struct{}

// NewSolver creates the nearest neighbor solver
func NewSolver() *Solver {
	return &Solver{}
}

// Name returns the algorithm name
func (s *Solver) Name() string { return entity.AlgorithmNearestNeighbor }

// Solve extends the route to the closest customer that keeps load and energy
// within limits, including the energy needed to get back to the depot. The
// first time no such customer exists the route is closed as is, so customers
// may be left out.
func (s *Solver) Solve(_ context.Context, p *solver.Problem) (*entity.Result, error) {
	route := Build(p)

	if skipped := len(p.Customers()) - (len(route) - 2); skipped > 0 {
		p.Logger.Info("Nearest neighbor stopped early", slog.Int("unvisited", skipped))
	}

	if p.Config.NearestNeighbor.TwoOpt {
		// an asymmetric energy matrix can make a shorter order draw more energy
		if improved := localsearch.TwoOpt(route, p.Model); p.CheckRoute(improved) == nil {
			route = improved
		}
	}

	return p.Result(s.Name(), route), nil
}

// Build returns the greedy closed route as node indexes
func Build(p *solver.Problem) []int {
	customers := p.Customers()
	visited := make(map[int]bool, len(customers))

	route := make([]int, 0, len(customers)+2)
	route = append(route, p.Depot)

	cur := p.Depot
	load, energy := 0.0, 0.0

	for len(visited) < len(customers) {
		next := -1
		for _, j := range customers {
			if visited[j] {
				continue
			}
			if next >= 0 && p.Model.Distance(cur, j) >= p.Model.Distance(cur, next) {
				continue
			}
			if load+p.Demand(j) > p.Capacity {
				continue
			}
			if energy+p.Model.Energy(cur, j)+p.Model.Energy(j, p.Depot) > p.Battery {
				continue
			}
			next = j
		}
		if next < 0 {
			break
		}

		load += p.Demand(next)
		energy += p.Model.Energy(cur, next)
		visited[next] = true
		route = append(route, next)
		cur = next
	}

	return append(route, p.Depot)
}
