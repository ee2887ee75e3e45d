package entity

import (
	"time"

	domainerrors "evroute/internal/domain/errors"
)

// Algorithm names accepted by the dispatcher
const (
	AlgorithmDijkstra        = "dijkstra"
	AlgorithmBranchAndBound  = "branch_and_bound"
	AlgorithmSavings         = "savings"
	AlgorithmNearestNeighbor = "nearest_neighbor"
	AlgorithmTabuSearch      = "tabu_search"
	AlgorithmGRASP           = "grasp"
)

// Result is the only artifact that crosses the solver boundary
type Result struct {
	Algorithm       string     `json:"algorithm"`
	Rota            []NodeID   `json:"rota"`
	Custo           float64    `json:"custo"`
	EnergiaEstimada *float64   `json:"energia_estimada,omitempty"`
	Rotas           [][]NodeID `json:"rotas,omitempty"`
}

// SetEnergy records the estimated energy of the route
func (r *Result) SetEnergy(energy float64) {
	r.EnergiaEstimada = &energy
}

// Flatten joins several depot-to-depot routes into one sequence, merging the
// depot visit shared by consecutive routes.
func Flatten(routes [][]NodeID) []NodeID {
	var flat []NodeID
	for _, route := range routes {
		if len(route) == 0 {
			continue
		}
		if len(flat) > 0 && flat[len(flat)-1] == route[0] {
			route = route[1:]
		}
		flat = append(flat, route...)
	}

	return flat
}

// Outcome is one algorithm invocation as seen by the dispatcher. Failures are
// values: Err is set and Result may still carry a best-so-far route on timeout.
type Outcome struct {
	Algorithm string
	RunID     string
	Result    *Result
	Err       error
	Elapsed   time.Duration
}

// OutcomeDocument is the serialized outcome written to result lists and logs
type OutcomeDocument struct {
	Algorithm       string                  `json:"algorithm"`
	Rota            []NodeID                `json:"rota,omitempty"`
	Custo           *float64                `json:"custo,omitempty"`
	EnergiaEstimada *float64                `json:"energia_estimada,omitempty"`
	Rotas           [][]NodeID              `json:"rotas,omitempty"`
	Error           *domainerrors.ErrorInfo `json:"error,omitempty"`
}

// Document converts the outcome into its serialized form
func (o Outcome) Document() OutcomeDocument {
	doc := OutcomeDocument{
		Algorithm: o.Algorithm,
		Error:     domainerrors.ToErrorInfo(o.Err),
	}

	if o.Result != nil {
		cost := o.Result.Custo
		doc.Rota = o.Result.Rota
		doc.Custo = &cost
		doc.EnergiaEstimada = o.Result.EnergiaEstimada
		doc.Rotas = o.Result.Rotas
	}

	return doc
}
