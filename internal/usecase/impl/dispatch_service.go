package impl

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"evroute/config"
	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"
	"evroute/internal/domain/repository"
	"evroute/internal/domain/service"
	"evroute/internal/infra/instance"
	logs "evroute/internal/infra/log"
	"evroute/internal/infra/routing/solver"
	"evroute/internal/usecase"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type dispatchService struct {
	config   *config.Config
	logger   *slog.Logger
	registry *solver.Registry
	execLog  repository.ExecutionLog
	metrics  service.SolverMetrics
	matrix   service.MatrixProvider
}

// algorithmRun is one solver invocation together with the document it received
type algorithmRun struct {
	outcome entity.Outcome
	input   map[string]any
}

// NewDispatchService creates a new dispatch service instance. matrix may be nil
// when no external provider is configured.
func NewDispatchService(
	cfg *config.Config,
	logger *slog.Logger,
	registry *solver.Registry,
	execLog repository.ExecutionLog,
	metrics service.SolverMetrics,
	matrix service.MatrixProvider,
) usecase.DispatchUsecase {
	if cfg.Dispatch == nil {
		cfg.Dispatch = &config.DispatchConfig{Parallelism: 1}
	}
	if cfg.Solver == nil {
		cfg.Solver = config.DefaultSolverConfig()
	}

	return &dispatchService{
		config:   cfg,
		logger:   logger,
		registry: registry,
		execLog:  execLog,
		metrics:  metrics,
		matrix:   matrix,
	}
}

// Algorithms returns the registered algorithm names
func (s *dispatchService) Algorithms() []string {
	return s.registry.Names()
}

// Run dispatches one instance document
func (s *dispatchService) Run(ctx context.Context, req usecase.DispatchRequest) (*usecase.DispatchReport, error) {
	startTime := time.Now()

	runID := logs.RunIDFromContext(ctx)
	if runID == "" {
		runID = logs.NewRunID()
	}
	logger := logs.FromContext(ctx, s.logger).With(
		slog.String("run_id", runID),
		slog.String("input_file", req.InputFile),
	)

	algorithms, err := s.selectAlgorithms(req.Algorithms)
	if err != nil {
		return nil, err
	}

	doc := instance.Document(req.Document).Clone()
	base, warnings, err := instance.Decode(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "instance %s", req.InputFile)
	}

	report := &usecase.DispatchReport{RunID: runID, InputFile: req.InputFile}
	for _, w := range warnings {
		logger.Warn("Ignoring unusable field", slog.String("field", w.Field), slog.String("reason", w.Message))
		report.Warnings = append(report.Warnings, w.String())
	}

	if warning := s.attachRoadMatrix(ctx, doc, base, logger); warning != "" {
		report.Warnings = append(report.Warnings, warning)
	}

	if timeout := s.config.Dispatch.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Info("Dispatching instance", slog.Any("algorithms", algorithms))

	runs := make([]algorithmRun, len(algorithms))

	var g errgroup.Group
	g.SetLimit(max(1, s.config.Dispatch.Parallelism))
	for i, name := range algorithms {
		g.Go(func() error {
			runs[i] = s.runAlgorithm(ctx, runID, name, doc, logger)

			return nil
		})
	}
	_ = g.Wait()

	s.record(ctx, req.InputFile, runs, logger)

	report.Outcomes = make([]entity.Outcome, len(runs))
	for i := range runs {
		report.Outcomes[i] = runs[i].outcome
	}
	report.Elapsed = time.Since(startTime)

	logger.Info("Dispatch finished", slog.Duration("elapsed", report.Elapsed))

	return report, nil
}

func (s *dispatchService) selectAlgorithms(requested []string) ([]string, error) {
	algorithms := requested
	if len(algorithms) == 0 {
		algorithms = s.config.Dispatch.Algorithms
	}
	if len(algorithms) == 0 {
		return s.registry.Names(), nil
	}

	seen := make(map[string]struct{}, len(algorithms))
	selected := make([]string, 0, len(algorithms))
	for _, name := range algorithms {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		if _, err := s.registry.Get(name); err != nil {
			return nil, err
		}
		if _, ok := usecase.SchemaFor(name); !ok {
			return nil, errors.Wrapf(solver.ErrUnknownAlgorithm, "algorithm %q has no field schema", name)
		}
		selected = append(selected, name)
	}

	return selected, nil
}

// attachRoadMatrix fills distance_matrix (and travel_time_matrix when absent)
// from the external provider. Failures fall back to coordinate distances.
func (s *dispatchService) attachRoadMatrix(ctx context.Context, doc instance.Document, inst *entity.Instance, logger *slog.Logger) string {
	if s.matrix == nil || doc.Has(usecase.FieldDistanceMatrix) {
		return ""
	}

	points := make([]orb.Point, len(inst.Nodes))
	for i := range inst.Nodes {
		points[i] = inst.Nodes[i].Point()
	}

	table, err := s.matrix.Table(ctx, points)
	if err != nil {
		logger.Warn("Road matrix unavailable, using coordinate distances", slog.Any("error", err))

		return fmt.Sprintf("distance_matrix: provider failed: %v", err)
	}

	doc.SetMatrix(usecase.FieldDistanceMatrix, table.Distances)
	if table.Durations != nil && !doc.Has(usecase.FieldTravelTimeMatrix) {
		doc.SetMatrix(usecase.FieldTravelTimeMatrix, table.Durations)
	}
	logger.Debug("Attached road matrix", slog.Int("points", len(points)))

	return ""
}

// runAlgorithm never returns an error: every failure, panics included, becomes the outcome's Err.
func (s *dispatchService) runAlgorithm(ctx context.Context, runID, name string, doc instance.Document, logger *slog.Logger) (run algorithmRun) {
	startTime := time.Now()
	logger = logger.With(slog.String("algorithm", name))

	run.outcome = entity.Outcome{Algorithm: name, RunID: runID}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Solver panicked", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
			run.outcome.Result = nil
			run.outcome.Err = errors.Errorf("solver %s panicked: %v", name, r)
		}
		run.outcome.Elapsed = time.Since(startTime)
	}()

	schema, _ := usecase.SchemaFor(name)
	trimmed, missing := schema.Trim(doc)
	if len(missing) > 0 {
		run.outcome.Err = domainerrors.ErrMalformedInstance.WithDetailsf("%s: missing required fields %v", name, missing)

		return run
	}
	run.input = trimmed

	inst, _, err := instance.Decode(trimmed)
	if err != nil {
		run.outcome.Err = err

		return run
	}

	algorithm, err := s.registry.Get(name)
	if err != nil {
		run.outcome.Err = err

		return run
	}

	problem, err := solver.NewProblem(inst, s.config.Solver, logger)
	if err != nil {
		run.outcome.Err = err

		return run
	}

	result, err := algorithm.Solve(ctx, problem)
	run.outcome.Result = result
	run.outcome.Err = err

	switch {
	case err == nil:
		logger.Info("Solver finished", slog.Float64("custo", result.Custo), slog.Int("stops", len(result.Rota)))
	case domainerrors.IsTimeout(err) || domainerrors.IsInfeasible(err):
		logger.Warn("Solver stopped", slog.Any("error", err))
	default:
		logger.Error("Solver failed", slog.Any("error", err))
	}

	return run
}

// record appends the runs to the execution log and metrics. Failures here are
// logged and never change the outcomes.
func (s *dispatchService) record(ctx context.Context, inputFile string, runs []algorithmRun, logger *slog.Logger) {
	now := time.Now()
	entries := make([]repository.ExecutionEntry, len(runs))
	for i, run := range runs {
		entries[i] = repository.ExecutionEntry{
			RunID:     run.outcome.RunID,
			Timestamp: now,
			InputFile: inputFile,
			Algorithm: run.outcome.Algorithm,
			Input:     run.input,
			Output:    run.outcome.Document(),
			ElapsedMS: run.outcome.Elapsed.Milliseconds(),
		}
	}

	if s.execLog != nil {
		if err := s.execLog.Append(context.WithoutCancel(ctx), entries...); err != nil {
			logger.Error("Failed to append execution log", slog.Any("error", err))
		}
	}

	if s.metrics == nil {
		return
	}
	s.metrics.ObserveInstance()
	for _, run := range runs {
		s.metrics.ObserveOutcome(run.outcome)
	}
	if err := s.metrics.Flush(); err != nil {
		logger.Error("Failed to export metrics", slog.Any("error", err))
	}
}
