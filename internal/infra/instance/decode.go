package instance

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"evroute/internal/domain/entity"
	domainerrors "evroute/internal/domain/errors"
)

// Warning is a non-fatal problem found while decoding: the field was treated
// as absent.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}

type decoder struct {
	warnings []Warning
	problems []string
}

func (d *decoder) warn(field, format string, args ...any) {
	d.warnings = append(d.warnings, Warning{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (d *decoder) fail(field, format string, args ...any) {
	d.problems = append(d.problems, field+": "+fmt.Sprintf(format, args...))
}

// Decode turns a document into a validated instance. Unparsable optional
// numbers are dropped with a warning; missing or unparsable required fields
// make the instance malformed.
func Decode(doc Document) (*entity.Instance, []Warning, error) {
	d := &decoder{}
	inst := &entity.Instance{}

	nodes, ok := doc["nodes"].([]any)
	if !ok || len(nodes) == 0 {
		return nil, nil, domainerrors.ErrMalformedInstance.WithDetails("nodes: a non-empty list is required")
	}
	for i, raw := range nodes {
		inst.Nodes = append(inst.Nodes, d.node(fmt.Sprintf("nodes[%d]", i), raw))
	}

	vehicles, ok := doc["vehicles"].([]any)
	if !ok || len(vehicles) == 0 {
		return nil, nil, domainerrors.ErrMalformedInstance.WithDetails("vehicles: a non-empty list is required")
	}
	for i, raw := range vehicles {
		inst.Vehicles = append(inst.Vehicles, d.vehicle(fmt.Sprintf("vehicles[%d]", i), raw))
	}

	inst.StartID = d.optionalID(doc, "start_id")
	inst.EndID = d.optionalID(doc, "end_id")
	inst.EnergyMatrix = d.optionalMatrix(doc, "energy_matrix")
	inst.TravelTimeMatrix = d.optionalMatrix(doc, "travel_time_matrix")
	inst.DistanceMatrix = d.optionalMatrix(doc, "distance_matrix")

	if raw, present := doc["config"]; present && raw != nil {
		if cfg, ok := stringMap(raw); ok {
			inst.Config = cfg
		} else {
			d.warn("config", "expected an object, got %T", raw)
		}
	}

	if len(d.problems) > 0 {
		return nil, d.warnings, domainerrors.ErrMalformedInstance.WithDetails(strings.Join(d.problems, "; "))
	}

	if err := Validate(inst); err != nil {
		return nil, d.warnings, err
	}

	return inst, d.warnings, nil
}

func (d *decoder) node(field string, raw any) entity.Node {
	m, ok := stringMap(raw)
	if !ok {
		d.fail(field, "expected an object, got %T", raw)

		return entity.Node{}
	}

	var n entity.Node

	if id, ok := d.requiredInt(m, field, "id"); ok {
		n.ID = entity.NodeID(id)
	}
	n.X, _ = d.requiredFloat(m, field, "x")
	n.Y, _ = d.requiredFloat(m, field, "y")

	if v := d.optionalFloat(m, field, "demand"); v != nil {
		n.Demand = *v
	}
	n.IsDepot = d.optionalBool(m, field, "is_depot")
	n.IsChargingStation = d.optionalBool(m, field, "is_charging_station")
	n.ChargerPowerKW = d.optionalFloat(m, field, "charger_power_kw")

	return n
}

func (d *decoder) vehicle(field string, raw any) entity.Vehicle {
	m, ok := stringMap(raw)
	if !ok {
		d.fail(field, "expected an object, got %T", raw)

		return entity.Vehicle{}
	}

	var v entity.Vehicle
	if id, present := m["id"]; present && id != nil {
		v.ID = fmt.Sprint(id)
	}
	if c, ok := d.requiredFloat(m, field, "capacity"); ok {
		v.Capacity = &c
	}
	if b, ok := d.requiredFloat(m, field, "battery_kwh"); ok {
		v.BatteryKWh = &b
	}
	if raw, present := m["start_node"]; present && raw != nil {
		if id, ok := toInt(raw); ok {
			start := entity.NodeID(id)
			v.StartNode = &start
		} else {
			d.warn(field+".start_node", "not an integer node id: %v", raw)
		}
	}

	return v
}

func (d *decoder) requiredFloat(m map[string]any, field, key string) (float64, bool) {
	raw, present := m[key]
	if !present || raw == nil {
		d.fail(field+"."+key, "required")

		return 0, false
	}

	v, ok := toFloat(raw)
	if !ok {
		d.fail(field+"."+key, "not a number: %v", raw)

		return 0, false
	}

	return v, true
}

func (d *decoder) requiredInt(m map[string]any, field, key string) (int, bool) {
	raw, present := m[key]
	if !present || raw == nil {
		d.fail(field+"."+key, "required")

		return 0, false
	}

	v, ok := toInt(raw)
	if !ok {
		d.fail(field+"."+key, "not an integer: %v", raw)

		return 0, false
	}

	return v, true
}

func (d *decoder) optionalFloat(m map[string]any, field, key string) *float64 {
	raw, present := m[key]
	if !present || raw == nil {
		return nil
	}

	v, ok := toFloat(raw)
	if !ok {
		d.warn(field+"."+key, "ignored unparsable number %v", raw)

		return nil
	}

	return &v
}

func (d *decoder) optionalBool(m map[string]any, field, key string) bool {
	raw, present := m[key]
	if !present || raw == nil {
		return false
	}

	v, ok := toBool(raw)
	if !ok {
		d.warn(field+"."+key, "ignored unparsable flag %v", raw)
	}

	return v
}

func (d *decoder) optionalID(doc Document, key string) *entity.NodeID {
	raw, present := doc[key]
	if !present || raw == nil {
		return nil
	}

	v, ok := toInt(raw)
	if !ok {
		d.warn(key, "ignored unparsable node id %v", raw)

		return nil
	}
	id := entity.NodeID(v)

	return &id
}

func (d *decoder) optionalMatrix(doc Document, key string) [][]float64 {
	raw, present := doc[key]
	if !present || raw == nil {
		return nil
	}

	rows, ok := raw.([]any)
	if !ok {
		d.warn(key, "ignored: expected a list of rows, got %T", raw)

		return nil
	}

	matrix := make([][]float64, len(rows))
	for i, rawRow := range rows {
		row, ok := rawRow.([]any)
		if !ok {
			d.warn(key, "ignored: row %d is not a list", i)

			return nil
		}
		matrix[i] = make([]float64, len(row))
		for j, cell := range row {
			v, ok := toFloat(cell)
			if !ok {
				d.warn(key, "ignored: entry [%d][%d] is not a number: %v", i, j, cell)

				return nil
			}
			matrix[i][j] = v
		}
	}

	return matrix
}

func stringMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}

		return out, true
	default:
		return nil, false
	}
}

func toFloat(raw any) (float64, bool) {
	var (
		v   float64
		err error
	)

	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint64:
		v = float64(n)
	case json.Number:
		v, err = n.Float64()
	case string:
		v, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, false
	}

	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

func toInt(raw any) (int, bool) {
	v, ok := toFloat(raw)
	if !ok || v != math.Trunc(v) {
		return 0, false
	}

	return int(v), true
}

func toBool(raw any) (bool, bool) {
	switch b := raw.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "y", "t":
			return true, true
		case "false", "0", "no", "n", "f", "":
			return false, true
		}

		return false, false
	default:
		if v, ok := toFloat(raw); ok {
			return v != 0, true
		}

		return false, false
	}
}
