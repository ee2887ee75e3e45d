package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"evroute/config"
	"evroute/internal/delivery"
	"evroute/internal/delivery/batch"
	"evroute/internal/domain/service"
	"evroute/internal/infra/executionlog"
	logs "evroute/internal/infra/log"
	"evroute/internal/infra/matrix"
	"evroute/internal/infra/metrics"
	"evroute/internal/infra/routing/evpath"
	"evroute/internal/infra/routing/exact"
	"evroute/internal/infra/routing/grasp"
	"evroute/internal/infra/routing/nearest"
	"evroute/internal/infra/routing/savings"
	"evroute/internal/infra/routing/solver"
	"evroute/internal/infra/routing/tabu"
	"evroute/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

type cliFlags struct {
	configPath string
	job        batch.Job
}

func main() {
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	fx.New(
		fx.Supply(&flags.job),
		fx.Provide(func() (*config.Config, error) {
			return config.Load(flags.configPath)
		}),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
		injectInfra(),
		injectSolvers(),
		injectUsecase(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func parseFlags(args []string) (*cliFlags, error) {
	fs := flag.NewFlagSet("evroute", flag.ContinueOnError)

	var (
		flags      cliFlags
		inputs     stringList
		algorithms string
	)
	fs.StringVar(&flags.configPath, "config", "", "Path to a config YAML file (default: config/config.yaml)")
	fs.Var(&inputs, "input", "Instance file (.json, .yaml, .csv); repeatable")
	fs.StringVar(&algorithms, "algorithms", "", "Comma-separated algorithms to run (default: all)")
	fs.StringVar(&flags.job.OutputDir, "output", "", "Directory for output_<input>.json (default: dispatch.outputDir)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	flags.job.Inputs = append(inputs, fs.Args()...)
	if len(flags.job.Inputs) == 0 {
		return nil, errors.New("at least one -input file is required")
	}
	for _, name := range strings.Split(algorithms, ",") {
		if name = strings.TrimSpace(name); name != "" {
			flags.job.Algorithms = append(flags.job.Algorithms, name)
		}
	}

	return &flags, nil
}

// stringList collects a repeatable flag
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)

	return nil
}

func injectInfra() fx.Option {
	return fx.Provide(
		logs.New,
		context.Background,
		matrix.New,
		executionlog.New,
		fx.Annotate(
			metrics.New,
			fx.As(new(service.SolverMetrics)),
		),
	)
}

func injectSolvers() fx.Option {
	return fx.Provide(
		newSolverRegistry,
	)
}

// newSolverRegistry registers every algorithm in dispatch order
func newSolverRegistry() *solver.Registry {
	return solver.NewRegistry(
		evpath.NewSolver(),
		exact.NewSolver(),
		savings.NewSolver(),
		nearest.NewSolver(),
		tabu.NewSolver(),
		grasp.NewSolver(),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewDispatchService,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				batch.NewRunner,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, delivery := range params.Deliveries {
				go func() {
					if err := delivery.Serve(ctx); err != nil {
						slog.Error("Failed to run delivery", slog.Any("error", err))
						os.Exit(1)
					}
				}()
			}

			return nil
		},
	})
}
