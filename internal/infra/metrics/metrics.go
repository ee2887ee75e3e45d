// Package metrics records solver outcomes in a dedicated Prometheus registry
// that is exported as a node-exporter textfile after each batch.
package metrics

import (
	"os"
	"path/filepath"
	"sync"

	"evroute/config"
	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"
	"evroute/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Recorder holds the solver collectors
type Recorder struct {
	registry *prometheus.Registry

	// Instances counts dispatched instances
	Instances prometheus.Counter
	// SolverRuns counts algorithm runs by outcome
	SolverRuns *prometheus.CounterVec
	// SolverDuration records run time in seconds
	SolverDuration *prometheus.HistogramVec
	// RouteCost holds the cost of the latest successful run
	RouteCost *prometheus.GaugeVec

	textfilePath string
	regOnce      sync.Once
}

var _ service.SolverMetrics = (*Recorder)(nil)

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	return &Recorder{
		registry: prometheus.NewRegistry(),
		Instances: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "evroute_instances_total", Help: "Instances dispatched."},
		),
		SolverRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "evroute_solver_runs_total", Help: "Algorithm runs by outcome."},
			[]string{"algorithm", "outcome"},
		),
		SolverDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "evroute_solver_duration_seconds",
				Help:    "Algorithm run time in seconds.",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
			},
			[]string{"algorithm"},
		),
		RouteCost: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "evroute_route_cost", Help: "Cost of the latest route per algorithm."},
			[]string{"algorithm"},
		),
	}
}

// New creates a registered recorder from configuration
func New(cfg *config.Config) *Recorder {
	r := NewRecorder()
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		r.textfilePath = cfg.Metrics.TextfilePath
	}
	r.Register()

	return r
}

// Register adds the collectors and the Go/process collectors to the registry.
func (r *Recorder) Register() {
	r.regOnce.Do(func() {
		r.registry.MustRegister(r.Instances)
		r.registry.MustRegister(r.SolverRuns)
		r.registry.MustRegister(r.SolverDuration)
		r.registry.MustRegister(r.RouteCost)
		r.registry.MustRegister(collectors.NewGoCollector())
		r.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveInstance counts one dispatched instance
func (r *Recorder) ObserveInstance() {
	r.Instances.Inc()
}

// ObserveOutcome records one algorithm run
func (r *Recorder) ObserveOutcome(o entity.Outcome) {
	r.SolverRuns.WithLabelValues(o.Algorithm, OutcomeLabel(o.Err)).Inc()
	r.SolverDuration.WithLabelValues(o.Algorithm).Observe(o.Elapsed.Seconds())
	if o.Result != nil {
		r.RouteCost.WithLabelValues(o.Algorithm).Set(o.Result.Custo)
	}
}

// OutcomeLabel maps a run error to its metric label
func OutcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}

	switch domainerrors.KindOf(err) {
	case domainerrors.KindMalformedInstance:
		return "malformed"
	case domainerrors.KindInfeasible:
		return "infeasible"
	case domainerrors.KindTimeout:
		return "timeout"
	default:
		return "error"
	}
}

// Flush writes the registry to the configured textfile; a no-op when metrics are disabled
func (r *Recorder) Flush() error {
	if r.textfilePath == "" {
		return nil
	}

	return r.WriteTextfile(r.textfilePath)
}

// WriteTextfile writes the registry in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create metrics directory")
	}

	return errors.Wrap(prometheus.WriteToTextfile(path, r.registry), "failed to write metrics textfile")
}
