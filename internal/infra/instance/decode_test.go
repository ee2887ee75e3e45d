package instance

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "nodes": [
    {"id": 1, "x": 0, "y": 0, "is_depot": true},
    {"id": 2, "x": 1.5, "y": 0, "demand": 2, "is_charging_station": true, "charger_power_kw": 50},
    {"id": 3, "x": 3, "y": 0, "demand": "abc"}
  ],
  "vehicles": [{"id": "ev-1", "capacity": 10, "battery_kwh": 40, "start_node": 1}],
  "start_id": 1,
  "end_id": 3,
  "energy_matrix": [[0, 1, 2], [1, 0, "x"], [2, 1, 0]],
  "config": {"alpha": 0.5}
}`

func TestDecode_JSON(t *testing.T) {
	doc, err := ParseJSON([]byte(sampleJSON))
	require.NoError(t, err)

	inst, warnings, err := Decode(doc)
	require.NoError(t, err)

	require.Len(t, inst.Nodes, 3)
	assert.Equal(t, entity.NodeID(2), inst.Nodes[1].ID)
	assert.InDelta(t, 1.5, inst.Nodes[1].X, 1e-9)
	assert.True(t, inst.Nodes[0].IsDepot)
	assert.True(t, inst.Nodes[1].CanRecharge())
	assert.Equal(t, 0.0, inst.Nodes[2].Demand)

	require.Len(t, inst.Vehicles, 1)
	assert.Equal(t, "ev-1", inst.Vehicles[0].ID)
	assert.Equal(t, 40.0, inst.Vehicles[0].BatteryValue())
	require.NotNil(t, inst.Vehicles[0].StartNode)
	assert.Equal(t, entity.NodeID(1), *inst.Vehicles[0].StartNode)

	require.NotNil(t, inst.EndID)
	assert.Equal(t, entity.NodeID(3), *inst.EndID)
	assert.Nil(t, inst.EnergyMatrix)
	assert.Equal(t, map[string]any{"alpha": json.Number("0.5")}, inst.Config)

	fields := make([]string, 0, len(warnings))
	for _, w := range warnings {
		fields = append(fields, w.Field)
	}
	assert.ElementsMatch(t, []string{"nodes[2].demand", "energy_matrix"}, fields)
}

func TestDecode_YAML(t *testing.T) {
	doc, err := ParseYAML([]byte(`
nodes:
  - {id: 0, x: 0, y: 0, is_depot: true}
  - {id: 1, x: 0, y: 1, demand: 1}
vehicles:
  - {capacity: 5, battery_kwh: 10}
distance_matrix:
  - [0, 1]
  - [1, 0]
`))
	require.NoError(t, err)

	inst, warnings, err := Decode(doc)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Len(t, inst.Nodes, 2)
	assert.Equal(t, [][]float64{{0, 1}, {1, 0}}, inst.DistanceMatrix)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "no nodes",
			doc:  `{"vehicles": [{"capacity": 1, "battery_kwh": 1}]}`,
			want: "nodes",
		},
		{
			name: "no vehicles",
			doc:  `{"nodes": [{"id": 0, "x": 0, "y": 0}]}`,
			want: "vehicles",
		},
		{
			name: "missing battery",
			doc:  `{"nodes": [{"id": 0, "x": 0, "y": 0}], "vehicles": [{"capacity": 1}]}`,
			want: "vehicles[0].battery_kwh",
		},
		{
			name: "unparsable coordinate",
			doc:  `{"nodes": [{"id": 0, "x": "east", "y": 0}], "vehicles": [{"capacity": 1, "battery_kwh": 1}]}`,
			want: "nodes[0].x",
		},
		{
			name: "negative demand",
			doc:  `{"nodes": [{"id": 0, "x": 0, "y": 0, "demand": -1}], "vehicles": [{"capacity": 1, "battery_kwh": 1}]}`,
			want: "demand",
		},
		{
			name: "zero battery",
			doc:  `{"nodes": [{"id": 0, "x": 0, "y": 0}], "vehicles": [{"capacity": 1, "battery_kwh": 0}]}`,
			want: "battery_kwh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseJSON([]byte(tt.doc))
			require.NoError(t, err)

			_, _, err = Decode(doc)
			require.Error(t, err)
			assert.True(t, domainerrors.IsMalformed(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	_, err := ParseJSON([]byte(`{"nodes": [`))
	assert.True(t, domainerrors.IsMalformed(err))

	_, err = ParseJSON([]byte(`null`))
	assert.True(t, domainerrors.IsMalformed(err))
}

func TestReadFile_CSV(t *testing.T) {
	dir := t.TempDir()

	nodesCSV := `id,x,y,demand,is_depot,is_charging_station,charger_power_kw
0,0,0,,true,,
1,2,0,1.5,false,true,22
2,4,0,n/a,,,
`
	vehiclesCSV := `id,capacity,battery_kwh,start_node
van,10,30,0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "city.csv"), []byte(nodesCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "city_vehicles.csv"), []byte(vehiclesCSV), 0o644))

	doc, err := ReadFile(filepath.Join(dir, "city.csv"))
	require.NoError(t, err)

	inst, warnings, err := Decode(doc)
	require.NoError(t, err)

	require.Len(t, inst.Nodes, 3)
	assert.True(t, inst.Nodes[0].IsDepot)
	assert.InDelta(t, 1.5, inst.Nodes[1].Demand, 1e-9)
	assert.True(t, inst.Nodes[1].CanRecharge())
	assert.Equal(t, "van", inst.Vehicles[0].ID)
	require.Len(t, warnings, 1)
	assert.Equal(t, "nodes[2].demand", warnings[0].Field)
}

func TestReadFile_CSVFallsBackToVehiclesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nodes.csv"), []byte("id,x,y\n0,0,0\n1,1,1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vehicles.csv"), []byte("capacity,battery_kwh\n5,5\n"), 0o644))

	doc, err := ReadFile(filepath.Join(dir, "nodes.csv"))
	require.NoError(t, err)

	inst, _, err := Decode(doc)
	require.NoError(t, err)
	assert.Len(t, inst.Nodes, 2)
}

func TestReadFile_CSVErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nodes.csv"), []byte("id,x\n0,0\n"), 0o644))

	_, err := ReadFile(filepath.Join(dir, "nodes.csv"))
	assert.True(t, domainerrors.IsMalformed(err))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "alone.csv"), []byte("id,x,y\n0,0,0\n"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, "nodes.csv")))

	_, err = ReadFile(filepath.Join(dir, "alone.csv"))
	assert.True(t, domainerrors.IsMalformed(err))
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	_, err := ReadFile("instance.xml")
	assert.True(t, domainerrors.IsMalformed(err))
}
