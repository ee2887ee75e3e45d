package tabu

import (
	"context"
	"testing"

	"evroute/config"
	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"
	"evroute/internal/infra/routing/solver"
	"evroute/internal/infra/routing/solver/solvertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fleet(inst *entity.Instance, k int) *entity.Instance {
	inst.Vehicles = nil
	for i := 0; i < k; i++ {
		inst.Vehicles = append(inst.Vehicles, solvertest.Vehicle(1000, 1000))
	}

	return inst
}

func TestSearch_RoundRobinPartition(t *testing.T) {
	p := solvertest.Problem(t, fleet(solvertest.Ring(7, 5, 1), 3))
	ts := newSearch(p.Model, p.Depot, p.Customers(), 3, 5, false, solver.NewRand(1))

	require.Len(t, ts.routes, 3)
	sizes := []int{}
	var placed []int
	for _, r := range ts.routes {
		assert.Equal(t, p.Depot, r[0])
		assert.Equal(t, p.Depot, r[len(r)-1])
		sizes = append(sizes, len(r)-2)
		placed = append(placed, r[1:len(r)-1]...)
	}

	assert.Equal(t, []int{3, 2, 2}, sizes)
	assert.ElementsMatch(t, p.Customers(), placed)
}

func TestSearch_TenureBlocksReturnUntilExpiry(t *testing.T) {
	inst := fleet(&entity.Instance{
		Nodes: []entity.Node{
			{ID: 0, X: 0, Y: 0, IsDepot: true},
			{ID: 1, X: 3, Y: 4, Demand: 1},
		},
	}, 2)
	p := solvertest.Problem(t, inst)
	ts := newSearch(p.Model, p.Depot, p.Customers(), 2, 2, false, solver.NewRand(1))
	require.Equal(t, [][]int{{0, 1, 0}, {0, 0}}, ts.routes)

	// iteration 1: the only move takes the customer to route 1
	require.Equal(t, stepMoved, ts.step())
	assert.Equal(t, [][]int{{0, 0}, {0, 1, 0}}, ts.routes)
	assert.True(t, ts.isTabu(1, 0))

	// iteration 2: moving back is still forbidden
	assert.Equal(t, stepAllTabu, ts.step())
	assert.Equal(t, [][]int{{0, 0}, {0, 1, 0}}, ts.routes)

	// iteration 3: the window has closed
	require.Equal(t, stepMoved, ts.step())
	assert.Equal(t, [][]int{{0, 1, 0}, {0, 0}}, ts.routes)
	assert.False(t, ts.isTabu(1, 0))
	assert.True(t, ts.isTabu(1, 1))
}

func TestSearch_NeverEntersForbiddenRoute(t *testing.T) {
	const tenure = 4

	p := solvertest.Problem(t, fleet(solvertest.Ring(8, 5, 1), 3))
	ts := newSearch(p.Model, p.Depot, p.Customers(), 3, tenure, false, solver.NewRand(9))

	left := map[tabuKey]int{}
	for i := 0; i < 60; i++ {
		before := routeOf(ts.routes, p.Depot)
		if ts.step() != stepMoved {
			continue
		}

		after := routeOf(ts.routes, p.Depot)
		for client, from := range before {
			to := after[client]
			if to == from {
				continue
			}
			if since, ok := left[tabuKey{client, to}]; ok {
				assert.GreaterOrEqual(t, ts.it, since+tenure,
					"customer %d re-entered route %d at iteration %d", client, to, ts.it)
			}
			left[tabuKey{client, from}] = ts.it
		}
	}
}

// routeOf maps every customer to the index of the route visiting it
func routeOf(routes [][]int, depot int) map[int]int {
	out := map[int]int{}
	for r, route := range routes {
		for _, node := range route {
			if node != depot {
				out[node] = r
			}
		}
	}

	return out
}

func TestSearch_Aspiration(t *testing.T) {
	p := solvertest.Problem(t, fleet(solvertest.Square(), 2))

	setup := func(aspiration bool) *search {
		ts := newSearch(p.Model, p.Depot, nil, 2, 5, aspiration, solver.NewRand(1))
		ts.routes = [][]int{{0, 1, 2, 0}, {0, 3, 0}}
		ts.cost = ts.total()
		ts.best, ts.bestCost = cloneRoutes(ts.routes), ts.cost
		// the improving move of customer 3 into route 0 is forbidden
		ts.tabu[tabuKey{3, 0}] = 100

		return ts
	}

	plain := setup(false)
	require.Equal(t, stepMoved, plain.step())
	assert.NotContains(t, plain.routes[0], 3)
	assert.Greater(t, plain.cost, 4.5)

	aspired := setup(true)
	require.Equal(t, stepMoved, aspired.step())
	assert.Equal(t, []int{0, 1, 2, 3, 0}, aspired.routes[0])
	assert.InDelta(t, 4.0, aspired.bestCost, 1e-9)
}

func TestSearch_BestNeverWorsens(t *testing.T) {
	p := solvertest.Problem(t, fleet(solvertest.Ring(9, 5, 1), 3))
	ts := newSearch(p.Model, p.Depot, p.Customers(), 3, 3, false, solver.NewRand(4))

	initial := ts.bestCost
	prev := initial
	for i := 0; i < 30; i++ {
		ts.step()
		assert.LessOrEqual(t, ts.bestCost, prev)
		assert.LessOrEqual(t, ts.bestCost, ts.cost+1e-9)
		prev = ts.bestCost
	}
	assert.LessOrEqual(t, ts.bestCost, initial)
}

func TestSolver_Solve(t *testing.T) {
	cfg := config.DefaultSolverConfig()
	cfg.Tabu.MaxIterations = 50
	cfg.Tabu.Seed = 2
	p := solvertest.ProblemWithConfig(t, fleet(solvertest.Ring(8, 5, 1), 2), cfg)

	result, err := NewSolver().Solve(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, entity.AlgorithmTabuSearch, result.Algorithm)
	assert.LessOrEqual(t, len(result.Rotas), 2)
	solvertest.AssertClosedRoutes(t, p, result)
	solvertest.AssertVisitsOnce(t, p, result)
}

func TestSolver_SingleVehicleHasNoNeighborhood(t *testing.T) {
	cfg := config.DefaultSolverConfig()
	cfg.Tabu.Seed = 1
	p := solvertest.ProblemWithConfig(t, solvertest.Square(), cfg)

	result, err := NewSolver().Solve(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, result.Rotas, 1)
	assert.Len(t, result.Rota, 5)
	solvertest.AssertVisitsOnce(t, p, result)
}

func TestSolver_CanceledReturnsInitialSolution(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := solvertest.Problem(t, fleet(solvertest.Ring(5, 5, 1), 2))
	result, err := NewSolver().Solve(ctx, p)

	assert.True(t, domainerrors.IsTimeout(err))
	require.NotNil(t, result)
	solvertest.AssertVisitsOnce(t, p, result)
}
