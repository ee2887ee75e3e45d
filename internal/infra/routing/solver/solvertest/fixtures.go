// Package solvertest provides shared instances and assertions for solver tests.
package solvertest

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"evroute/config"
	"evroute/internal/domain/entity"
	"evroute/internal/infra/routing/solver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ptr returns a pointer to v
func Ptr[T any](v T) *T { return &v }

// Vehicle builds a vehicle with the given capacity and battery
func Vehicle(capacity, battery float64) entity.Vehicle {
	return entity.Vehicle{Capacity: Ptr(capacity), BatteryKWh: Ptr(battery)}
}

// Square is a depot at the origin and three unit-demand customers on the
// corners of the unit square. The optimal tour is 0-1-2-3-0 (or its reverse)
// with cost 4.
func Square() *entity.Instance {
	return &entity.Instance{
		Nodes: []entity.Node{
			{ID: 0, X: 0, Y: 0, IsDepot: true},
			{ID: 1, X: 0, Y: 1, Demand: 1},
			{ID: 2, X: 1, Y: 1, Demand: 1},
			{ID: 3, X: 1, Y: 0, Demand: 1},
		},
		Vehicles: []entity.Vehicle{Vehicle(10, 100)},
	}
}

// Ring places n customers on a circle of the given radius around a depot at the origin.
func Ring(n int, radius, demand float64) *entity.Instance {
	inst := &entity.Instance{
		Nodes:    []entity.Node{{ID: 0, X: 0, Y: 0, IsDepot: true}},
		Vehicles: []entity.Vehicle{Vehicle(1000, 1000)},
	}

	// deterministic, irregular spacing so ties are rare
	angles := []float64{0.1, 0.9, 1.7, 2.2, 3.0, 3.6, 4.1, 4.9, 5.5, 6.0, 0.5, 2.6}
	for i := 0; i < n; i++ {
		a := angles[i%len(angles)] + float64(i/len(angles))*0.05
		inst.Nodes = append(inst.Nodes, entity.Node{
			ID:     entity.NodeID(i + 1),
			X:      radius * math.Cos(a),
			Y:      radius * math.Sin(a),
			Demand: demand,
		})
	}

	return inst
}

// Line is A(0,0) - B(1,0) - C(2,0) with a battery that covers one unit hop
// (0.3 at rate 0.2) but not A -> C. B is a charging station when charger is true.
func Line(charger bool) *entity.Instance {
	b := entity.Node{ID: 2, X: 1, Y: 0}
	if charger {
		b.IsChargingStation = true
		b.ChargerPowerKW = Ptr(50.0)
	}

	return &entity.Instance{
		Nodes: []entity.Node{
			{ID: 1, X: 0, Y: 0, IsDepot: true},
			b,
			{ID: 3, X: 2, Y: 0},
		},
		Vehicles: []entity.Vehicle{Vehicle(10, 0.3)},
	}
}

// Problem builds a solver problem with default tunables and a silent logger
func Problem(t testing.TB, inst *entity.Instance) *solver.Problem {
	t.Helper()

	return ProblemWithConfig(t, inst, config.DefaultSolverConfig())
}

// ProblemWithConfig builds a solver problem with the given tunables
func ProblemWithConfig(t testing.TB, inst *entity.Instance, cfg *config.SolverConfig) *solver.Problem {
	t.Helper()

	p, err := solver.NewProblem(inst, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return p
}

// AssertClosedRoutes checks that every route starts and ends at the depot
func AssertClosedRoutes(t testing.TB, p *solver.Problem, result *entity.Result) {
	t.Helper()

	depot := p.Model.Node(p.Depot).ID
	routes := result.Rotas
	if len(routes) == 0 {
		routes = [][]entity.NodeID{result.Rota}
	}

	for _, route := range routes {
		require.NotEmpty(t, route)
		assert.Equal(t, depot, route[0], "route must start at the depot")
		assert.Equal(t, depot, route[len(route)-1], "route must end at the depot")
	}
}

// AssertFeasible checks prefix load and energy along every route
func AssertFeasible(t testing.TB, p *solver.Problem, result *entity.Result) {
	t.Helper()

	routes := result.Rotas
	if len(routes) == 0 {
		routes = [][]entity.NodeID{result.Rota}
	}

	for _, ids := range routes {
		route := make([]int, len(ids))
		for i, id := range ids {
			idx, ok := p.Instance.IndexOf(id)
			require.True(t, ok)
			route[i] = idx
		}
		assert.NoError(t, p.CheckRoute(route))
	}
}

// AssertVisitsOnce checks that every customer appears exactly once across all routes
func AssertVisitsOnce(t testing.TB, p *solver.Problem, result *entity.Result) {
	t.Helper()

	depot := p.Model.Node(p.Depot).ID
	routes := result.Rotas
	if len(routes) == 0 {
		routes = [][]entity.NodeID{result.Rota}
	}

	seen := map[entity.NodeID]int{}
	for _, route := range routes {
		for _, id := range route {
			if id != depot {
				seen[id]++
			}
		}
	}

	for _, idx := range p.Customers() {
		assert.Equal(t, 1, seen[p.Model.Node(idx).ID], "customer %d", p.Model.Node(idx).ID)
	}
}
