// Package costmodel builds the distance and energy matrices shared read-only by every solver.
package costmodel

import (
	"math"

	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"

	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Metric selects how coordinates turn into distances
type Metric string

const (
	// MetricEuclidean treats X/Y as planar coordinates
	MetricEuclidean Metric = "euclidean"
	// MetricHaversine treats X/Y as longitude/latitude and returns kilometers
	MetricHaversine Metric = "haversine"
)

// DefaultConsumptionRate is the energy drawn per distance unit when nothing is configured
const DefaultConsumptionRate = 0.2

// Options configures how the model is built
type Options struct {
	ConsumptionRate float64
	Metric          Metric
}

// DefaultOptions returns euclidean distances with the default consumption rate
func DefaultOptions() Options {
	return Options{
		ConsumptionRate: DefaultConsumptionRate,
		Metric:          MetricEuclidean,
	}
}

// Model holds the pairwise matrices of one instance in dense n*n buffers
type Model struct {
	nodes      []entity.Node
	n          int
	rate       float64
	dist       []float64
	energy     []float64
	travelTime []float64
}

// Build validates the instance and computes its matrices in O(n²).
// Supplied distance/energy/travel-time matrices take precedence over coordinates.
func Build(inst *entity.Instance, opts Options) (*Model, error) {
	if err := validateInstance(inst); err != nil {
		return nil, err
	}

	if opts.ConsumptionRate <= 0 {
		opts.ConsumptionRate = DefaultConsumptionRate
	}

	n := len(inst.Nodes)
	m := &Model{
		nodes: inst.Nodes,
		n:     n,
		rate:  opts.ConsumptionRate,
	}

	var err error
	if inst.DistanceMatrix != nil {
		if m.dist, err = flatten("distance_matrix", inst.DistanceMatrix, n); err != nil {
			return nil, err
		}
	} else {
		if m.dist, err = coordinateDistances(inst.Nodes, opts.Metric); err != nil {
			return nil, err
		}
	}

	if inst.EnergyMatrix != nil {
		if m.energy, err = flatten("energy_matrix", inst.EnergyMatrix, n); err != nil {
			return nil, err
		}
	} else {
		m.energy = make([]float64, n*n)
		for i, d := range m.dist {
			m.energy[i] = d * m.rate
		}
	}

	if inst.TravelTimeMatrix != nil {
		if m.travelTime, err = flatten("travel_time_matrix", inst.TravelTimeMatrix, n); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Size returns the number of nodes
func (m *Model) Size() int { return m.n }

// Rate returns the consumption rate used for derived energies
func (m *Model) Rate() float64 { return m.rate }

// Node returns the node at index i
func (m *Model) Node(i int) entity.Node { return m.nodes[i] }

// Distance returns the distance from i to j
func (m *Model) Distance(i, j int) float64 { return m.dist[i*m.n+j] }

// Energy returns the energy required to travel from i to j
func (m *Model) Energy(i, j int) float64 { return m.energy[i*m.n+j] }

// HasTravelTime reports whether a travel-time matrix was supplied
func (m *Model) HasTravelTime() bool { return m.travelTime != nil }

// TravelTime returns the travel time from i to j, or the distance when no
// travel-time matrix was supplied.
func (m *Model) TravelTime(i, j int) float64 {
	if m.travelTime == nil {
		return m.Distance(i, j)
	}

	return m.travelTime[i*m.n+j]
}

// RouteDistance sums the distances of consecutive route edges
func (m *Model) RouteDistance(route []int) float64 {
	total := 0.0
	for k := 0; k+1 < len(route); k++ {
		total += m.Distance(route[k], route[k+1])
	}

	return total
}

// RouteEnergy sums the energy of consecutive route edges
func (m *Model) RouteEnergy(route []int) float64 {
	total := 0.0
	for k := 0; k+1 < len(route); k++ {
		total += m.Energy(route[k], route[k+1])
	}

	return total
}

// RouteLoad sums node demands along the route
func (m *Model) RouteLoad(route []int) float64 {
	total := 0.0
	for _, idx := range route {
		total += m.nodes[idx].Demand
	}

	return total
}

// IDs maps node indexes to identifiers
func (m *Model) IDs(route []int) []entity.NodeID {
	ids := make([]entity.NodeID, len(route))
	for i, idx := range route {
		ids[i] = m.nodes[idx].ID
	}

	return ids
}

func coordinateDistances(nodes []entity.Node, metric Metric) ([]float64, error) {
	var distanceFn func(a, b entity.Node) float64

	switch metric {
	case MetricEuclidean, "":
		distanceFn = func(a, b entity.Node) float64 {
			return planar.Distance(a.Point(), b.Point())
		}
	case MetricHaversine:
		distanceFn = func(a, b entity.Node) float64 {
			return geo.DistanceHaversine(a.Point(), b.Point()) / 1000.0
		}
	default:
		return nil, domainerrors.ErrMalformedInstance.WithDetailsf("unknown distance metric %q", metric)
	}

	n := len(nodes)
	dist := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := distanceFn(nodes[i], nodes[j])
			dist[i*n+j] = d
			dist[j*n+i] = d
		}
	}

	return dist, nil
}

func flatten(name string, rows [][]float64, n int) ([]float64, error) {
	if len(rows) != n {
		return nil, domainerrors.ErrMalformedInstance.WithDetailsf("%s has %d rows, expected %d", name, len(rows), n)
	}

	out := make([]float64, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, domainerrors.ErrMalformedInstance.WithDetailsf("%s row %d has %d columns, expected %d", name, i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || v < 0 {
				return nil, domainerrors.ErrMalformedInstance.WithDetailsf("%s[%d][%d] must be a non-negative number", name, i, j)
			}
			out[i*n+j] = v
		}
	}

	return out, nil
}

func validateInstance(inst *entity.Instance) error {
	if inst == nil || len(inst.Nodes) == 0 {
		return domainerrors.ErrMalformedInstance.WithDetails("instance has no nodes")
	}
	if len(inst.Depots()) == 0 {
		return domainerrors.ErrMalformedInstance.WithDetails("instance has no depot-capable node")
	}
	if len(inst.Vehicles) == 0 {
		return domainerrors.ErrMalformedInstance.WithDetails("instance has no vehicles")
	}

	seen := make(map[entity.NodeID]struct{}, len(inst.Nodes))
	for _, node := range inst.Nodes {
		if _, dup := seen[node.ID]; dup {
			return domainerrors.ErrMalformedInstance.WithDetailsf("duplicate node id %d", node.ID)
		}
		seen[node.ID] = struct{}{}

		if math.IsNaN(node.X) || math.IsNaN(node.Y) {
			return domainerrors.ErrMalformedInstance.WithDetailsf("node %d has invalid coordinates", node.ID)
		}
	}

	for i, v := range inst.Vehicles {
		if v.Capacity == nil {
			return domainerrors.ErrMalformedInstance.WithDetailsf("vehicle %d is missing capacity", i)
		}
		if v.BatteryKWh == nil {
			return domainerrors.ErrMalformedInstance.WithDetailsf("vehicle %d is missing battery_kwh", i)
		}
		if v.StartNode != nil {
			if _, ok := seen[*v.StartNode]; !ok {
				return domainerrors.ErrMalformedInstance.WithDetailsf("vehicle %d starts at unknown node %d", i, *v.StartNode)
			}
		}
	}

	return nil
}
