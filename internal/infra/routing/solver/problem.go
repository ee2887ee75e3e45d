// Package solver defines the contract every routing algorithm satisfies and the
// problem view they share.
package solver

import (
	"context"
	"log/slog"

	"evroute/config"
	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"
	"evroute/internal/infra/routing/costmodel"
)

// Solver is one interchangeable routing algorithm. Implementations are
// synchronous, never mutate the Problem and are safe to run concurrently
// against the same Problem.
type Solver interface {
	Name() string
	Solve(ctx context.Context, p *Problem) (*entity.Result, error)
}

// Problem is a validated instance together with its cost model and tunables
type Problem struct {
	Instance *entity.Instance
	Model    *costmodel.Model
	Config   *config.SolverConfig
	Logger   *slog.Logger

	// Depot is the node index routes start and end at
	Depot int

	// Capacity and Battery belong to the first vehicle
	Capacity float64
	Battery  float64
}

// NewProblem builds the cost model for inst. The instance's own config object
// overrides cfg; an unusable override is logged and ignored.
func NewProblem(inst *entity.Instance, cfg *config.SolverConfig, logger *slog.Logger) (*Problem, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultSolverConfig()
	}

	if len(inst.Config) > 0 {
		merged, err := cfg.WithOverrides(inst.Config)
		if err != nil {
			logger.Warn("Ignoring instance config overrides", slog.Any("error", err))
		} else {
			cfg = merged
		}
	}

	model, err := costmodel.Build(inst, costmodel.Options{
		ConsumptionRate: cfg.ConsumptionRate,
		Metric:          costmodel.Metric(cfg.Metric),
	})
	if err != nil {
		return nil, err
	}

	vehicle, _ := inst.PrimaryVehicle()

	return &Problem{
		Instance: inst,
		Model:    model,
		Config:   cfg,
		Logger:   logger,
		Depot:    inst.DepotIndex(),
		Capacity: vehicle.CapacityValue(),
		Battery:  vehicle.BatteryValue(),
	}, nil
}

// Customers returns every non-depot node index
func (p *Problem) Customers() []int {
	return p.Instance.Customers()
}

// Demand returns the demand of node i
func (p *Problem) Demand(i int) float64 {
	return p.Model.Node(i).Demand
}

// CheckRoute verifies that every prefix of route stays within capacity and battery.
func (p *Problem) CheckRoute(route []int) error {
	load, energy := 0.0, 0.0
	for k, idx := range route {
		load += p.Demand(idx)
		if load > p.Capacity+feasibilityTolerance {
			return domainerrors.ErrInfeasible.WithDetailsf("load %.3f exceeds capacity %.3f at position %d", load, p.Capacity, k)
		}
		if k > 0 {
			energy += p.Model.Energy(route[k-1], idx)
			if energy > p.Battery+feasibilityTolerance {
				return domainerrors.ErrInfeasible.WithDetailsf("energy %.3f exceeds battery %.3f at position %d", energy, p.Battery, k)
			}
		}
	}

	return nil
}

const feasibilityTolerance = 1e-9

// Result builds a single-route result
func (p *Problem) Result(algorithm string, route []int) *entity.Result {
	result := &entity.Result{
		Algorithm: algorithm,
		Rota:      p.Model.IDs(route),
		Custo:     p.Model.RouteDistance(route),
	}
	result.SetEnergy(p.Model.RouteEnergy(route))

	return result
}

// MultiResult builds a result for several depot-to-depot routes
func (p *Problem) MultiResult(algorithm string, routes [][]int) *entity.Result {
	ids := make([][]entity.NodeID, 0, len(routes))
	cost, energy := 0.0, 0.0
	for _, route := range routes {
		ids = append(ids, p.Model.IDs(route))
		cost += p.Model.RouteDistance(route)
		energy += p.Model.RouteEnergy(route)
	}

	result := &entity.Result{
		Algorithm: algorithm,
		Rota:      entity.Flatten(ids),
		Custo:     cost,
		Rotas:     ids,
	}
	result.SetEnergy(energy)

	return result
}
