package main

import (
	"fmt"
	"io"

	"evroute/config"
	"evroute/internal/infra/instance"
	"evroute/internal/infra/routing/costmodel"
)

func runValidate(w io.Writer, input string, consumption float64) error {
	fmt.Fprintf(w, "Validating instance: %s\n", input)

	doc, err := instance.ReadFile(input)
	if err != nil {
		return err
	}

	inst, warnings, err := instance.Decode(doc)
	for _, warning := range warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	if err != nil {
		return err
	}

	cfg := config.DefaultSolverConfig()
	if consumption > 0 {
		cfg.ConsumptionRate = consumption
	}
	model, err := costmodel.Build(inst, costmodel.Options{
		ConsumptionRate: cfg.ConsumptionRate,
		Metric:          costmodel.Metric(cfg.Metric),
	})
	if err != nil {
		return err
	}

	chargers := 0
	for _, n := range inst.Nodes {
		if n.CanRecharge() {
			chargers++
		}
	}

	fmt.Fprintf(w, "  ✅ Nodes: %d (%d depots, %d customers, %d chargers)\n",
		len(inst.Nodes), len(inst.Depots()), len(inst.Customers()), chargers)
	fmt.Fprintf(w, "  ✅ Vehicles: %d\n", len(inst.Vehicles))
	fmt.Fprintf(w, "  ✅ Cost model: %d x %d, travel times: %t\n", model.Size(), model.Size(), model.HasTravelTime())
	fmt.Fprintln(w, "Validation passed")

	return nil
}
