package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"evroute/config"
	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"
	"evroute/internal/infra/instance"
	"evroute/internal/infra/routing/evpath"
	"evroute/internal/infra/routing/solver"
)

type pathOptions struct {
	input       string
	start       int
	end         int
	consumption float64
}

func runPath(ctx context.Context, w io.Writer, opts pathOptions) error {
	doc, err := instance.ReadFile(opts.input)
	if err != nil {
		return err
	}

	inst, _, err := instance.Decode(doc)
	if err != nil {
		return err
	}
	if opts.start >= 0 {
		id := entity.NodeID(opts.start)
		inst.StartID = &id
	}
	if opts.end >= 0 {
		id := entity.NodeID(opts.end)
		inst.EndID = &id
	}

	cfg := config.DefaultSolverConfig()
	if opts.consumption > 0 {
		cfg.ConsumptionRate = opts.consumption
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	problem, err := solver.NewProblem(inst, cfg, logger)
	if err != nil {
		return err
	}

	result, err := evpath.NewSolver().Solve(ctx, problem)
	if err != nil {
		if domainerrors.IsInfeasible(err) {
			fmt.Fprintf(w, "No feasible path: %v\n", err)
		}

		return err
	}

	fmt.Fprintf(w, "Rota: %v\n", result.Rota)
	fmt.Fprintf(w, "Custo: %.3f\n", result.Custo)
	if result.EnergiaEstimada != nil {
		fmt.Fprintf(w, "Energia estimada: %.3f kWh\n", *result.EnergiaEstimada)
	}

	return nil
}
