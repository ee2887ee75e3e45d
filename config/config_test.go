package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env:
  log:
    level: debug
solver:
  consumptionRate: 0.25
  grasp:
    alpha: 0.5
    timeLimit: 5s
dispatch:
  algorithms: [savings, grasp]
`), 0o644))

	t.Setenv("SOLVER_TABU_TENURE", "7")
	t.Setenv("OSRM_URL", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Env.Log.Level)
	assert.InDelta(t, 0.25, cfg.Solver.ConsumptionRate, 1e-12)
	assert.InDelta(t, 0.5, cfg.Solver.GRASP.Alpha, 1e-12)
	assert.Equal(t, 5*time.Second, cfg.Solver.GRASP.TimeLimit)
	assert.Equal(t, 7, cfg.Solver.Tabu.Tenure)
	assert.Equal(t, defaultGraspMaxIterations, cfg.Solver.GRASP.MaxIterations)
	assert.Equal(t, []string{"savings", "grasp"}, cfg.Dispatch.Algorithms)
	assert.Equal(t, defaultParallelism, cfg.Dispatch.Parallelism)
	assert.Equal(t, "none", cfg.Matrix.Provider)
}

func TestLoad_OSRMURLEnablesProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env:\n  env: test\n"), 0o644))

	t.Setenv("OSRM_URL", "http://osrm:5000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "osrm", cfg.Matrix.Provider)
	assert.Equal(t, "http://osrm:5000", cfg.Matrix.OSRM.BaseURL)
	assert.Equal(t, defaultOSRMMaxAttempts, cfg.Matrix.OSRM.MaxAttempts)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWithOverrides(t *testing.T) {
	base := DefaultSolverConfig()

	got, err := base.WithOverrides(map[string]any{
		"alpha":   json.Number("0.1"),
		"iter":    50,
		"time":    "2.5",
		"tenure":  3,
		"two_opt": true,
		"tabu":    map[string]any{"maxIterations": 9},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.1, got.GRASP.Alpha, 1e-12)
	assert.Equal(t, 50, got.GRASP.MaxIterations)
	assert.Equal(t, 9, got.Tabu.MaxIterations)
	assert.Equal(t, 2500*time.Millisecond, got.GRASP.TimeLimit)
	assert.Equal(t, 2500*time.Millisecond, got.Tabu.TimeLimit)
	assert.Equal(t, 3, got.Tabu.Tenure)
	assert.True(t, got.NearestNeighbor.TwoOpt)

	assert.Equal(t, defaultGraspAlpha, base.GRASP.Alpha, "base config must not change")
}

func TestWithOverrides_Empty(t *testing.T) {
	base := DefaultSolverConfig()

	got, err := base.WithOverrides(nil)
	require.NoError(t, err)
	assert.Equal(t, base, got)
	assert.NotSame(t, base, got)
}

func TestApplyDefaults_KeepsGreedyAlpha(t *testing.T) {
	cfg := &SolverConfig{}
	cfg.ApplyDefaults()
	assert.Equal(t, 0.0, cfg.GRASP.Alpha)

	cfg.GRASP.Alpha = 1.5
	cfg.ApplyDefaults()
	assert.Equal(t, defaultGraspAlpha, cfg.GRASP.Alpha)
}
