package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"evroute/config"
	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveOutcome(t *testing.T) {
	r := NewRecorder()
	r.Register()

	r.ObserveOutcome(entity.Outcome{
		Algorithm: entity.AlgorithmSavings,
		Result:    &entity.Result{Algorithm: entity.AlgorithmSavings, Custo: 12.5},
		Elapsed:   20 * time.Millisecond,
	})
	r.ObserveOutcome(entity.Outcome{
		Algorithm: entity.AlgorithmSavings,
		Err:       domainerrors.ErrInfeasible.WithDetails("no route"),
	})
	r.ObserveInstance()

	assert.Equal(t, 1.0, testutil.ToFloat64(r.SolverRuns.WithLabelValues(entity.AlgorithmSavings, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SolverRuns.WithLabelValues(entity.AlgorithmSavings, "infeasible")))
	assert.Equal(t, 12.5, testutil.ToFloat64(r.RouteCost.WithLabelValues(entity.AlgorithmSavings)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Instances))
	assert.Equal(t, 1, testutil.CollectAndCount(r.SolverDuration))
}

func TestOutcomeLabel(t *testing.T) {
	assert.Equal(t, "ok", OutcomeLabel(nil))
	assert.Equal(t, "malformed", OutcomeLabel(domainerrors.ErrMalformedInstance))
	assert.Equal(t, "timeout", OutcomeLabel(errors.Wrap(domainerrors.ErrTimeout, "grasp")))
	assert.Equal(t, "error", OutcomeLabel(errors.New("boom")))
}

func TestRecorder_Flush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "evroute.prom")

	r := New(&config.Config{Metrics: &config.MetricsConfig{Enabled: true, TextfilePath: path}})
	r.ObserveInstance()

	require.NoError(t, r.Flush())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "evroute_instances_total 1")
}

func TestRecorder_FlushDisabled(t *testing.T) {
	r := New(&config.Config{Metrics: &config.MetricsConfig{}})
	assert.NoError(t, r.Flush())
}
