package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"evroute/config"
	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"
	logs "evroute/internal/infra/log"
	"evroute/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatch struct {
	requests []usecase.DispatchRequest
	runIDs   []string
}

func (s *stubDispatch) Algorithms() []string { return []string{entity.AlgorithmSavings} }

func (s *stubDispatch) Run(ctx context.Context, req usecase.DispatchRequest) (*usecase.DispatchReport, error) {
	s.requests = append(s.requests, req)
	s.runIDs = append(s.runIDs, logs.RunIDFromContext(ctx))

	result := &entity.Result{Algorithm: entity.AlgorithmSavings, Rota: []entity.NodeID{0, 1, 0}, Custo: 2}

	return &usecase.DispatchReport{
		InputFile: req.InputFile,
		Outcomes: []entity.Outcome{
			{Algorithm: entity.AlgorithmSavings, Result: result},
			{Algorithm: entity.AlgorithmBranchAndBound, Err: domainerrors.ErrInfeasible},
		},
	}, nil
}

const instanceJSON = `{"nodes": [{"id": 0, "x": 0, "y": 0, "is_depot": true}, {"id": 1, "x": 1, "y": 0}],
"vehicles": [{"capacity": 1, "battery_kwh": 10}]}`

func testRunner(t *testing.T, job *Job, dispatch usecase.DispatchUsecase) *runner {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := newRunner(&config.Config{Dispatch: &config.DispatchConfig{}}, logger, dispatch, job, nil)
	r.stderr = nil

	return r
}

func TestRunner_WritesOutputFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "lisbon.json")
	require.NoError(t, os.WriteFile(input, []byte(instanceJSON), 0o644))

	outDir := filepath.Join(dir, "outputs")
	dispatch := &stubDispatch{}
	r := testRunner(t, &Job{Inputs: []string{input}, Algorithms: []string{"savings"}, OutputDir: outDir}, dispatch)

	require.NoError(t, r.Serve(context.Background()))

	require.Len(t, dispatch.requests, 1)
	assert.Equal(t, "lisbon.json", dispatch.requests[0].InputFile)
	assert.Equal(t, []string{"savings"}, dispatch.requests[0].Algorithms)
	assert.NotEmpty(t, dispatch.runIDs[0])

	b, err := os.ReadFile(filepath.Join(outDir, "output_lisbon.json"))
	require.NoError(t, err)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal(b, &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "savings", docs[0]["algorithm"])
	assert.Equal(t, 2.0, docs[0]["custo"])
	assert.Contains(t, docs[1], "error")
}

func TestRunner_WritesToStdoutWithoutOutputDir(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(input, []byte(instanceJSON), 0o644))

	r := testRunner(t, &Job{Inputs: []string{input}}, &stubDispatch{})
	var out bytes.Buffer
	r.stdout = &out

	require.NoError(t, r.Serve(context.Background()))
	assert.Contains(t, out.String(), `"rota": [`)
}

func TestRunner_ContinuesAfterBadInput(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(instanceJSON), 0o644))

	dispatch := &stubDispatch{}
	r := testRunner(t, &Job{
		Inputs:    []string{filepath.Join(dir, "missing.json"), good},
		OutputDir: dir,
	}, dispatch)

	assert.Equal(t, 1, r.runAll(context.Background()))
	assert.Len(t, dispatch.requests, 1)
	assert.FileExists(t, filepath.Join(dir, "output_good.json"))
}

func TestRunner_StopCancelsRemainingInputs(t *testing.T) {
	dispatch := &stubDispatch{}
	r := testRunner(t, &Job{Inputs: []string{"a.json", "b.json"}}, dispatch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 1, r.runAll(ctx))
	assert.Empty(t, dispatch.requests)
	require.NoError(t, r.stop(context.Background()))
	require.NoError(t, r.stop(context.Background()))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "output_city.json", OutputName("/data/inputs/city.yaml"))
	assert.Equal(t, "output_nodes.json", OutputName("nodes.csv"))
	assert.Equal(t, "output_plain.json", OutputName("plain"))
}
