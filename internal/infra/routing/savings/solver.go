package savings

import (
	"context"
	"log/slog"

	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"
	"evroute/internal/infra/routing/solver"
)

// Solver runs Clarke-Wright on each depot cluster. With a single depot every
// customer belongs to it and the first vehicle sets the limits.
type Solver struct{}

// NewSolver creates the savings solver
func NewSolver() *Solver {
	return &Solver{}
}

// Name returns the algorithm name
func (s *Solver) Name() string { return entity.AlgorithmSavings }

func (s *Solver) Solve(_ context.Context, p *solver.Problem) (*entity.Result, error) {
	clusters := buildClusters(p)

	var (
		routes  [][]int
		dropped int
	)
	for _, c := range clusters {
		r, d := clarkeWright(p.Model, c, p.Logger)
		routes = append(routes, r...)
		dropped += len(d)
	}

	if dropped > 0 {
		p.Logger.Warn("Customers exceed a single vehicle and were left out", slog.Int("count", dropped))
	}
	if len(routes) == 0 && dropped == 0 {
		return p.Result(s.Name(), []int{p.Depot, p.Depot}), nil
	}
	if len(routes) == 0 {
		return nil, domainerrors.ErrInfeasible.WithDetails("no customer can be served within capacity and battery")
	}

	return p.MultiResult(s.Name(), routes), nil
}

// buildClusters assigns every customer to its nearest depot and every vehicle to the
// depot named by its start node. Depots without vehicles or customers are left
// out. When no vehicle names a start node the first vehicle serves every depot.
func buildClusters(p *solver.Problem) []cluster {
	depots := p.Instance.Depots()
	if len(depots) == 1 {
		return []cluster{{
			depot:     depots[0],
			customers: p.Customers(),
			capacity:  p.Capacity,
			battery:   p.Battery,
		}}
	}

	customersOf := make(map[int][]int, len(depots))
	for _, i := range p.Customers() {
		nearest := depots[0]
		for _, d := range depots[1:] {
			if p.Model.Distance(i, d) < p.Model.Distance(i, nearest) {
				nearest = d
			}
		}
		customersOf[nearest] = append(customersOf[nearest], i)
	}

	vehicleOf := make(map[int]entity.Vehicle, len(depots))
	anyStart := false
	for _, v := range p.Instance.Vehicles {
		if v.StartNode == nil {
			continue
		}
		anyStart = true
		idx, ok := p.Instance.IndexOf(*v.StartNode)
		if !ok {
			continue
		}
		if _, taken := vehicleOf[idx]; !taken {
			vehicleOf[idx] = v
		}
	}

	clusters := make([]cluster, 0, len(depots))
	for _, d := range depots {
		customers := customersOf[d]
		if len(customers) == 0 {
			continue
		}

		capacity, battery := p.Capacity, p.Battery
		if anyStart {
			v, ok := vehicleOf[d]
			if !ok {
				p.Logger.Warn("Depot has customers but no vehicle",
					slog.Int("depot", int(p.Model.Node(d).ID)),
					slog.Int("customers", len(customers)))

				continue
			}
			capacity, battery = v.CapacityValue(), v.BatteryValue()
		}

		clusters = append(clusters, cluster{
			depot:     d,
			customers: customers,
			capacity:  capacity,
			battery:   battery,
		})
	}

	return clusters
}
