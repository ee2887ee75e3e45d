package entity

// Instance is a validated routing problem handed to the solvers.
// Nodes and matrices are read-only for the duration of a solve.
type Instance struct {
	Nodes            []Node         `json:"nodes" yaml:"nodes" validate:"required,min=1,dive"`
	Vehicles         []Vehicle      `json:"vehicles" yaml:"vehicles" validate:"required,min=1,dive"`
	StartID          *NodeID        `json:"start_id,omitempty" yaml:"start_id,omitempty"`
	EndID            *NodeID        `json:"end_id,omitempty" yaml:"end_id,omitempty"`
	EnergyMatrix     [][]float64    `json:"energy_matrix,omitempty" yaml:"energy_matrix,omitempty"`
	TravelTimeMatrix [][]float64    `json:"travel_time_matrix,omitempty" yaml:"travel_time_matrix,omitempty"`
	DistanceMatrix   [][]float64    `json:"distance_matrix,omitempty" yaml:"distance_matrix,omitempty"`
	Config           map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// IndexOf returns the position of the node with the given ID
func (in *Instance) IndexOf(id NodeID) (int, bool) {
	for i := range in.Nodes {
		if in.Nodes[i].ID == id {
			return i, true
		}
	}

	return -1, false
}

// DepotIndex returns the first node flagged as depot, or node 0 when none is flagged.
func (in *Instance) DepotIndex() int {
	for i := range in.Nodes {
		if in.Nodes[i].IsDepot {
			return i
		}
	}

	return 0
}

// Depots returns the indexes of every depot-capable node
func (in *Instance) Depots() []int {
	var depots []int
	for i := range in.Nodes {
		if in.Nodes[i].IsDepot {
			depots = append(depots, i)
		}
	}

	if len(depots) == 0 && len(in.Nodes) > 0 {
		depots = append(depots, 0)
	}

	return depots
}

// Customers returns every node index that is not a depot
func (in *Instance) Customers() []int {
	depots := make(map[int]struct{})
	for _, d := range in.Depots() {
		depots[d] = struct{}{}
	}

	customers := make([]int, 0, len(in.Nodes))
	for i := range in.Nodes {
		if _, isDepot := depots[i]; isDepot {
			continue
		}
		customers = append(customers, i)
	}

	return customers
}

// PrimaryVehicle returns the first vehicle; several solvers only consider it.
func (in *Instance) PrimaryVehicle() (Vehicle, bool) {
	if len(in.Vehicles) == 0 {
		return Vehicle{}, false
	}

	return in.Vehicles[0], true
}

// IDs maps node indexes to node identifiers
func (in *Instance) IDs(route []int) []NodeID {
	ids := make([]NodeID, len(route))
	for i, idx := range route {
		ids[i] = in.Nodes[idx].ID
	}

	return ids
}
