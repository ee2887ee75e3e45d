package grasp

import (
	"context"
	"testing"
	"time"

	"evroute/config"
	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"
	"evroute/internal/infra/routing/localsearch"
	"evroute/internal/infra/routing/solver"
	"evroute/internal/infra/routing/solver/solvertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greedyConfig(seed int64) *config.SolverConfig {
	cfg := config.DefaultSolverConfig()
	cfg.GRASP.Alpha = 0
	cfg.GRASP.MaxIterations = 5
	cfg.GRASP.Seed = seed

	return cfg
}

func TestConstruct_AlphaZeroIsNearestFirst(t *testing.T) {
	inst := solvertest.Ring(9, 6, 1)
	p := solvertest.Problem(t, inst)

	// reference: always move to the closest unplaced customer
	want := []int{p.Depot}
	placed := map[int]bool{}
	tail := p.Depot
	for range p.Customers() {
		next := -1
		for _, j := range p.Customers() {
			if placed[j] {
				continue
			}
			if next < 0 || p.Model.Distance(tail, j) < p.Model.Distance(tail, next) {
				next = j
			}
		}
		placed[next] = true
		want = append(want, next)
		tail = next
	}
	want = append(want, p.Depot)

	for _, seed := range []int64{1, 2, 99} {
		assert.Equal(t, want, Construct(p, 0, solver.NewRand(seed)), "seed %d", seed)
	}
}

func TestSolver_AlphaZeroIsDeterministic(t *testing.T) {
	inst := solvertest.Ring(9, 6, 1)

	first, err := NewSolver().Solve(context.Background(), solvertest.ProblemWithConfig(t, inst, greedyConfig(1)))
	require.NoError(t, err)
	second, err := NewSolver().Solve(context.Background(), solvertest.ProblemWithConfig(t, inst, greedyConfig(7)))
	require.NoError(t, err)

	assert.Equal(t, first.Rota, second.Rota)
	assert.InDelta(t, first.Custo, second.Custo, 1e-9)
}

func TestConstruct_PlacesEveryCustomerOnce(t *testing.T) {
	p := solvertest.Problem(t, solvertest.Ring(11, 3, 1))
	route := Construct(p, 1, solver.NewRand(42))

	require.Len(t, route, len(p.Customers())+2)
	assert.Equal(t, p.Depot, route[0])
	assert.Equal(t, p.Depot, route[len(route)-1])
	assert.ElementsMatch(t, p.Customers(), route[1:len(route)-1])
}

func TestSolver_RandomizedRun(t *testing.T) {
	cfg := config.DefaultSolverConfig()
	cfg.GRASP.Alpha = 0.5
	cfg.GRASP.MaxIterations = 30
	cfg.GRASP.Seed = 3
	p := solvertest.ProblemWithConfig(t, solvertest.Ring(10, 5, 1), cfg)

	result, err := NewSolver().Solve(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, entity.AlgorithmGRASP, result.Algorithm)
	solvertest.AssertClosedRoutes(t, p, result)
	solvertest.AssertVisitsOnce(t, p, result)

	route := make([]int, len(result.Rota))
	for i, id := range result.Rota {
		route[i], _ = p.Instance.IndexOf(id)
	}
	// the returned route is already 2-opt optimal
	assert.Equal(t, route, localsearch.TwoOpt(route, p.Model))
}

func TestSolver_SameSeedSameRoute(t *testing.T) {
	cfg := config.DefaultSolverConfig()
	cfg.GRASP.Alpha = 0.7
	cfg.GRASP.MaxIterations = 10
	cfg.GRASP.Seed = 11
	inst := solvertest.Ring(12, 5, 1)

	a, err := NewSolver().Solve(context.Background(), solvertest.ProblemWithConfig(t, inst, cfg))
	require.NoError(t, err)
	b, err := NewSolver().Solve(context.Background(), solvertest.ProblemWithConfig(t, inst, cfg))
	require.NoError(t, err)

	assert.Equal(t, a.Rota, b.Rota)
}

func TestSolver_ReturnsInfeasibleRouteWithWarning(t *testing.T) {
	inst := solvertest.Square()
	inst.Vehicles[0] = solvertest.Vehicle(1, 100)

	result, err := NewSolver().Solve(context.Background(), solvertest.ProblemWithConfig(t, inst, greedyConfig(1)))
	require.NoError(t, err)
	assert.Len(t, result.Rota, 5)
}

func TestSolver_CanceledBeforeFirstIteration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSolver().Solve(ctx, solvertest.Problem(t, solvertest.Square()))
	assert.True(t, domainerrors.IsInfeasible(err))
}

func TestSolver_TimeLimitStopsNormally(t *testing.T) {
	cfg := config.DefaultSolverConfig()
	cfg.GRASP.MaxIterations = 1 << 30
	cfg.GRASP.TimeLimit = 20 * time.Millisecond
	cfg.GRASP.Seed = 5

	start := time.Now()
	result, err := NewSolver().Solve(context.Background(), solvertest.ProblemWithConfig(t, solvertest.Ring(8, 4, 1), cfg))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Less(t, time.Since(start), 5*time.Second)
}
