// Package batch runs instance files through the dispatcher and writes one
// result list per input.
package batch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"evroute/config"
	"evroute/internal/delivery"
	"evroute/internal/infra/instance"
	logs "evroute/internal/infra/log"
	"evroute/internal/usecase"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/fx"
)

// Job lists the inputs of one batch run
type Job struct {
	Inputs     []string
	Algorithms []string

	// OutputDir overrides dispatch.outputDir when set
	OutputDir string
}

type runner struct {
	cfg        *config.Config
	logger     *slog.Logger
	dispatch   usecase.DispatchUsecase
	job        *Job
	shutdowner fx.Shutdowner
	stdout     io.Writer
	stderr     *os.File

	stopOnce sync.Once
	stopCh   chan struct{}
}

// RunnerParams holds dependencies for the batch runner
type RunnerParams struct {
	fx.In

	Lc         fx.Lifecycle
	Cfg        *config.Config
	Logger     *slog.Logger
	Dispatch   usecase.DispatchUsecase
	Job        *Job
	Shutdowner fx.Shutdowner
}

// NewRunner creates the batch delivery. The application shuts down once every
// input has been processed.
func NewRunner(params RunnerParams) (delivery.Delivery, error) {
	if params.Job == nil || len(params.Job.Inputs) == 0 {
		return nil, errors.New("no input files given")
	}

	r := newRunner(params.Cfg, params.Logger, params.Dispatch, params.Job, params.Shutdowner)

	params.Lc.Append(fx.Hook{
		OnStop: r.stop,
	})

	return r, nil
}

func newRunner(cfg *config.Config, logger *slog.Logger, dispatch usecase.DispatchUsecase, job *Job, shutdowner fx.Shutdowner) *runner {
	return &runner{
		cfg:        cfg,
		logger:     logger,
		dispatch:   dispatch,
		job:        job,
		shutdowner: shutdowner,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		stopCh:     make(chan struct{}),
	}
}

// Serve processes every input in order; a failing input does not stop the others.
func (r *runner) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-r.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	failed := r.runAll(ctx)

	exitCode := 0
	if failed > 0 {
		exitCode = 1
	}
	if r.shutdowner == nil {
		return nil
	}

	return errors.WithStack(r.shutdowner.Shutdown(fx.ExitCode(exitCode)))
}

func (r *runner) runAll(ctx context.Context) (failed int) {
	bar := r.progress(len(r.job.Inputs))

	for _, input := range r.job.Inputs {
		if ctx.Err() != nil {
			r.logger.Warn("Batch stopped before every input was processed", slog.String("next", input))

			return failed + 1
		}

		if bar != nil {
			bar.Describe(filepath.Base(input))
		}
		if err := r.runOne(ctx, input); err != nil {
			r.logger.Error("Failed to process input", slog.String("input", input), slog.Any("error", err))
			failed++
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	return failed
}

func (r *runner) runOne(ctx context.Context, input string) error {
	runID := logs.NewRunID()
	logger := r.logger.With(slog.String("run_id", runID), slog.String("input", input))
	ctx = logs.WithLogger(logs.WithRunID(ctx, runID), logger)

	doc, err := instance.ReadFile(input)
	if err != nil {
		return err
	}

	report, err := r.dispatch.Run(ctx, usecase.DispatchRequest{
		InputFile:  filepath.Base(input),
		Document:   doc,
		Algorithms: r.job.Algorithms,
	})
	if err != nil {
		return err
	}

	return r.write(input, report)
}

func (r *runner) write(input string, report *usecase.DispatchReport) error {
	b, err := json.MarshalIndent(report.Results(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode results")
	}
	b = append(b, '\n')

	dir := r.outputDir()
	if dir == "" {
		_, err := r.stdout.Write(b)

		return errors.Wrap(err, "failed to write results")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	path := filepath.Join(dir, OutputName(input))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	r.logger.Info("Results written", slog.String("path", path), slog.Int("algorithms", len(report.Outcomes)))

	return nil
}

func (r *runner) outputDir() string {
	if r.job.OutputDir != "" {
		return r.job.OutputDir
	}
	if r.cfg.Dispatch != nil {
		return r.cfg.Dispatch.OutputDir
	}

	return ""
}

// progress returns a bar on interactive terminals only
func (r *runner) progress(total int) *progressbar.ProgressBar {
	if total < 2 || r.stderr == nil || !isatty.IsTerminal(r.stderr.Fd()) {
		return nil
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.stderr),
		progressbar.OptionSetDescription("instances"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *runner) stop(_ context.Context) error {
	r.stopOnce.Do(func() {
		r.logger.Info("Stopping batch runner")
		close(r.stopCh)
	})

	return nil
}

// OutputName returns the result file name for an input path
func OutputName(input string) string {
	base := filepath.Base(input)

	return "output_" + strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}
