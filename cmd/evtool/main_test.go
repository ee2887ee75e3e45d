package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	domainerrors "evroute/internal/domain/errors"
	"evroute/internal/infra/instance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const lineInstance = `{
  "nodes": [
    {"id": 1, "x": 0, "y": 0, "is_depot": true},
    {"id": 2, "x": 1, "y": 0, "is_charging_station": true, "charger_power_kw": 50},
    {"id": 3, "x": 2, "y": 0, "demand": "n/a"}
  ],
  "vehicles": [{"capacity": 10, "battery_kwh": 0.3}]
}`

func writeInstance(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "line.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestSchema_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSubcommand(context.Background(), "schema", nil, &out))

	var schemas map[string]struct {
		Required []string `json:"required"`
		Optional []string `json:"optional"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &schemas))
	assert.Len(t, schemas, 6)
	assert.Equal(t, []string{"nodes", "vehicles"}, schemas["grasp"].Required)
	assert.Contains(t, schemas["grasp"].Optional, "config")
}

func TestSchema_YAMLSingleAlgorithm(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSubcommand(context.Background(), "schema", []string{"-format", "yaml", "-algorithm", "dijkstra"}, &out))

	var schemas map[string]map[string][]string
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &schemas))
	require.Contains(t, schemas, "dijkstra")
	assert.NotContains(t, schemas["dijkstra"]["optional"], "demand")

	err := runSubcommand(context.Background(), "schema", []string{"-algorithm", "ant_colony"}, io.Discard)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSubcommand(context.Background(), "validate", []string{"-input", writeInstance(t, lineInstance)}, &out))

	assert.Contains(t, out.String(), "nodes[2].demand")
	assert.Contains(t, out.String(), "Nodes: 3 (1 depots, 2 customers, 1 chargers)")
	assert.Contains(t, out.String(), "Validation passed")
}

func TestValidate_Malformed(t *testing.T) {
	err := runSubcommand(context.Background(), "validate",
		[]string{"-input", writeInstance(t, `{"nodes": [{"id": 1, "x": 0, "y": 0}]}`)}, io.Discard)
	assert.True(t, domainerrors.IsMalformed(err))

	err = runSubcommand(context.Background(), "validate", nil, io.Discard)
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSubcommand(context.Background(), "path",
		[]string{"-input", writeInstance(t, lineInstance), "-start", "1", "-end", "3"}, &out))

	assert.Contains(t, out.String(), "Rota: [1 2 3]")
	assert.Contains(t, out.String(), "Custo: 2.000")
}

func TestPath_Infeasible(t *testing.T) {
	var out bytes.Buffer
	err := runSubcommand(context.Background(), "path",
		[]string{"-input", writeInstance(t, lineInstance), "-start", "1", "-end", "3", "-consumption", "1"}, &out)

	assert.True(t, domainerrors.IsInfeasible(err))
	assert.Contains(t, out.String(), "No feasible path")
}

func TestMatrix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/table/v1/driving/0,0;1,0;2,0", r.URL.Path)
		_, _ = io.WriteString(w, `{"code":"Ok",
			"distances":[[0,1000,2000],[1000,0,1000],[2000,1000,0]],
			"durations":[[0,60,120],[60,0,60],[120,60,0]]}`)
	}))
	defer server.Close()

	output := filepath.Join(t.TempDir(), "with_matrix.json")
	var out bytes.Buffer
	require.NoError(t, runSubcommand(context.Background(), "matrix",
		[]string{"-input", writeInstance(t, lineInstance), "-osrm", server.URL, "-output", output}, &out))
	assert.Contains(t, out.String(), "3 x 3")

	doc, err := instance.ReadFile(output)
	require.NoError(t, err)

	inst, _, err := instance.Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 1, 2}, {1, 0, 1}, {2, 1, 0}}, inst.DistanceMatrix)
	assert.Equal(t, [][]float64{{0, 60, 120}, {60, 0, 60}, {120, 60, 0}}, inst.TravelTimeMatrix)
}

func TestMatrix_RequiresURL(t *testing.T) {
	t.Setenv("OSRM_URL", "")

	err := runSubcommand(context.Background(), "matrix", []string{"-input", writeInstance(t, lineInstance)}, io.Discard)
	assert.Error(t, err)
}

func TestUnknownSubcommand(t *testing.T) {
	assert.Error(t, runSubcommand(context.Background(), "optimize", nil, io.Discard))
}
