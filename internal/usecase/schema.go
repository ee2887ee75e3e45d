package usecase

import (
	"slices"

	"evroute/internal/domain/entity"
)

// Instance fields consulted by the schema
const (
	FieldNodes            = "nodes"
	FieldVehicles         = "vehicles"
	FieldStartID          = "start_id"
	FieldEndID            = "end_id"
	FieldEnergyMatrix     = "energy_matrix"
	FieldTravelTimeMatrix = "travel_time_matrix"
	FieldDistanceMatrix   = "distance_matrix"
	FieldConfig           = "config"
	FieldDemand           = "demand"
	FieldChargingStation  = "is_charging_station"
	FieldChargerPowerKW   = "charger_power_kw"
	nodeFieldID           = "id"
	nodeFieldX            = "x"
	nodeFieldY            = "y"
	nodeFieldDepot        = "is_depot"
)

// nodeFields are optional fields that live on each node rather than at the top level
var nodeFields = map[string]struct{}{
	FieldDemand:          {},
	FieldChargingStation: {},
	FieldChargerPowerKW:  {},
}

// baseNodeFields are always kept on a node
var baseNodeFields = []string{nodeFieldID, nodeFieldX, nodeFieldY, nodeFieldDepot}

// Schema lists the fields an algorithm accepts. Everything else is removed
// from the instance before the algorithm sees it.
type Schema struct {
	Required []string `json:"required" yaml:"required"`
	Optional []string `json:"optional" yaml:"optional"`
}

var schemas = map[string]Schema{
	entity.AlgorithmDijkstra: {
		Required: []string{FieldNodes, FieldVehicles},
		Optional: []string{
			FieldStartID, FieldEndID, FieldChargingStation, FieldChargerPowerKW,
			FieldEnergyMatrix, FieldTravelTimeMatrix, FieldDistanceMatrix,
		},
	},
	entity.AlgorithmBranchAndBound: {
		Required: []string{FieldNodes, FieldVehicles},
		Optional: []string{FieldDemand, FieldEnergyMatrix, FieldTravelTimeMatrix, FieldDistanceMatrix},
	},
	entity.AlgorithmSavings: {
		Required: []string{FieldNodes, FieldVehicles},
		Optional: []string{FieldDemand, FieldEnergyMatrix, FieldTravelTimeMatrix, FieldDistanceMatrix},
	},
	entity.AlgorithmNearestNeighbor: {
		Required: []string{FieldNodes, FieldVehicles},
		Optional: []string{FieldDemand, FieldEnergyMatrix, FieldTravelTimeMatrix, FieldDistanceMatrix, FieldConfig},
	},
	entity.AlgorithmTabuSearch: {
		Required: []string{FieldNodes, FieldVehicles},
		Optional: []string{
			FieldDemand, FieldEnergyMatrix, FieldTravelTimeMatrix, FieldDistanceMatrix,
			FieldStartID, FieldEndID, FieldChargingStation, FieldChargerPowerKW, FieldConfig,
		},
	},
	entity.AlgorithmGRASP: {
		Required: []string{FieldNodes, FieldVehicles},
		Optional: []string{
			FieldDemand, FieldEnergyMatrix, FieldTravelTimeMatrix, FieldDistanceMatrix,
			FieldStartID, FieldEndID, FieldChargingStation, FieldChargerPowerKW, FieldConfig,
		},
	},
}

// SchemaFor returns the schema of an algorithm
func SchemaFor(algorithm string) (Schema, bool) {
	s, ok := schemas[algorithm]

	return s, ok
}

// Schemas returns a copy of the whole table
func Schemas() map[string]Schema {
	out := make(map[string]Schema, len(schemas))
	for name, s := range schemas {
		out[name] = Schema{Required: slices.Clone(s.Required), Optional: slices.Clone(s.Optional)}
	}

	return out
}

// Trim keeps the fields the schema accepts. Node-level optional fields are
// filtered on every node object. missing lists required fields that are
// absent or empty; when it is non-empty the returned document is nil.
func (s Schema) Trim(doc map[string]any) (trimmed map[string]any, missing []string) {
	for _, field := range s.Required {
		if isEmpty(doc[field]) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, missing
	}

	keepOnNode := slices.Clone(baseNodeFields)
	trimmed = make(map[string]any, len(s.Required)+len(s.Optional))
	for _, field := range s.Required {
		trimmed[field] = doc[field]
	}
	for _, field := range s.Optional {
		if _, onNode := nodeFields[field]; onNode {
			keepOnNode = append(keepOnNode, field)

			continue
		}
		if v, ok := doc[field]; ok {
			trimmed[field] = v
		}
	}

	if nodes, ok := trimmed[FieldNodes].([]any); ok {
		trimmed[FieldNodes] = trimNodes(nodes, keepOnNode)
	}

	return trimmed, nil
}

func trimNodes(nodes []any, keep []string) []any {
	out := make([]any, len(nodes))
	for i, raw := range nodes {
		node, ok := raw.(map[string]any)
		if !ok {
			out[i] = raw

			continue
		}

		filtered := make(map[string]any, len(keep))
		for _, field := range keep {
			if v, ok := node[field]; ok {
				filtered[field] = v
			}
		}
		out[i] = filtered
	}

	return out
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case string:
		return t == ""
	default:
		return false
	}
}
