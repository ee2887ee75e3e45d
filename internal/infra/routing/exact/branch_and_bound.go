// Package exact implements a depth-first branch-and-bound search over customer
// permutations for small single-vehicle instances.
//
// The search runs on an explicit stack of frames rather than recursion, so its
// depth is bounded only by memory. Pruning: a partial tour is abandoned when its
// cost plus a spanning-tree lower bound on the remaining work reaches the best
// complete tour found so far. There is no internal time limit; a context
// deadline is honoured with sparse checks.
package exact

import (
	"context"
	"log/slog"
	"math"

	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"
	"evroute/internal/infra/routing/costmodel"
	"evroute/internal/infra/routing/solver"
)

// cancelCheckMask makes the engine look at the context every 4096 node events
const cancelCheckMask = 4095

// Solver is the branch-and-bound algorithm
type Solver struct{}

// NewSolver creates the exact solver
func NewSolver() *Solver {
	return &Solver{}
}

// Name returns the algorithm name
func (s *Solver) Name() string { return entity.AlgorithmBranchAndBound }

// Solve returns the cheapest closed tour through every customer that respects
// capacity and battery, or Infeasible when none exists.
func (s *Solver) Solve(ctx context.Context, p *solver.Problem) (*entity.Result, error) {
	customers := p.Customers()
	if limit := p.Config.Exact.MaxCustomers; limit > 0 && len(customers) > limit {
		return nil, domainerrors.ErrMalformedInstance.WithDetailsf(
			"exact search accepts at most %d customers, instance has %d", limit, len(customers))
	}

	engine := newEngine(p, customers, BoundMode(p.Config.Exact.Bound))
	engine.run(ctx)

	p.Logger.Debug("Branch and bound finished",
		slog.Int("expanded", engine.steps),
		slog.Int("pruned", engine.pruned),
		slog.Bool("found", engine.found))

	var best *entity.Result
	if engine.found {
		best = p.Result(s.Name(), engine.bestTour)
	}

	if engine.canceled {
		return solver.TimeoutResult(ctx, best)
	}
	if best == nil {
		return nil, domainerrors.ErrInfeasible.WithDetails("no complete tour satisfies capacity and battery")
	}

	return best, nil
}

// frame is one level of the depth-first search
type frame struct {
	node    int     // last node of the partial tour
	cost    float64 // accumulated distance
	load    float64 // accumulated demand
	energy  float64 // accumulated energy
	cursor  int     // next position in candidates to try
	entered bool    // bound already evaluated
}

// bbEngine holds all search data
type bbEngine struct {
	model    *costmodel.Model
	depot    int
	capacity float64
	battery  float64
	bound    BoundMode

	candidates []int  // customer node indexes in branching order
	visited    []bool // by position in candidates
	remaining  int

	frames []frame
	path   []int // path[0] is the depot, path[d] is frames[d].node

	bestTour []int
	bestCost float64
	found    bool

	// scratch buffers for the bound
	spanNodes []int
	spanCost  []float64

	steps    int
	pruned   int
	canceled bool
}

func newEngine(p *solver.Problem, customers []int, bound BoundMode) *bbEngine {
	k := len(customers)

	return &bbEngine{
		model:      p.Model,
		depot:      p.Depot,
		capacity:   p.Capacity,
		battery:    p.Battery,
		bound:      bound,
		candidates: customers,
		visited:    make([]bool, k),
		remaining:  k,
		frames:     make([]frame, 0, k+1),
		path:       make([]int, 0, k+2),
		bestCost:   math.Inf(1),
		spanNodes:  make([]int, 0, k+2),
		spanCost:   make([]float64, k+2),
	}
}

func (e *bbEngine) run(ctx context.Context) {
	e.push(frame{node: e.depot})

	for len(e.frames) > 0 {
		e.steps++
		if e.steps&cancelCheckMask == 0 && ctx.Err() != nil {
			e.canceled = true

			return
		}

		top := &e.frames[len(e.frames)-1]

		if !top.entered {
			top.entered = true

			if e.lowerBound(top) >= e.bestCost {
				e.pruned++
				e.pop()

				continue
			}

			if e.remaining == 0 {
				e.close(top)
				e.pop()

				continue
			}
		}

		next, ok := e.nextCandidate(top)
		if !ok {
			e.pop()

			continue
		}

		j := e.candidates[next]
		e.visited[next] = true
		e.remaining--
		e.push(frame{
			node:   j,
			cost:   top.cost + e.model.Distance(top.node, j),
			load:   top.load + e.model.Node(j).Demand,
			energy: top.energy + e.model.Energy(top.node, j),
		})
	}
}

// nextCandidate advances top's cursor to the next unvisited customer that keeps
// load and energy within limits and returns its position in candidates.
func (e *bbEngine) nextCandidate(top *frame) (int, bool) {
	for top.cursor < len(e.candidates) {
		pos := top.cursor
		top.cursor++

		if e.visited[pos] {
			continue
		}

		j := e.candidates[pos]
		if top.load+e.model.Node(j).Demand > e.capacity {
			continue
		}
		if top.energy+e.model.Energy(top.node, j) > e.battery {
			continue
		}

		return pos, true
	}

	return 0, false
}

// close completes the tour at top by returning to the depot
func (e *bbEngine) close(top *frame) {
	if top.energy+e.model.Energy(top.node, e.depot) > e.battery {
		return
	}

	total := top.cost + e.model.Distance(top.node, e.depot)
	if total >= e.bestCost {
		return
	}

	e.bestCost = total
	e.bestTour = append(e.bestTour[:0], e.path...)
	e.bestTour = append(e.bestTour, e.depot)
	e.found = true
}

func (e *bbEngine) lowerBound(top *frame) float64 {
	e.spanNodes = e.spanNodes[:0]
	if e.bound != BoundUnvisited {
		e.spanNodes = append(e.spanNodes, top.node)
		if top.node != e.depot {
			e.spanNodes = append(e.spanNodes, e.depot)
		}
	}
	for pos, j := range e.candidates {
		if !e.visited[pos] {
			e.spanNodes = append(e.spanNodes, j)
		}
	}

	lb := top.cost + prim(e.model, e.spanNodes, e.spanCost)
	if e.bound == BoundUnvisited && top.node != e.depot {
		lb += e.model.Distance(top.node, e.depot)
	}

	return lb
}

func (e *bbEngine) push(f frame) {
	e.frames = append(e.frames, f)
	e.path = append(e.path, f.node)
}

// pop removes the top frame and returns its customer to the unvisited set
func (e *bbEngine) pop() {
	last := len(e.frames) - 1
	node := e.frames[last].node
	e.frames = e.frames[:last]
	e.path = e.path[:last]

	if last == 0 {
		return
	}

	for pos, j := range e.candidates {
		if j == node {
			e.visited[pos] = false
			e.remaining++

			break
		}
	}
}
