package entity

import (
	"github.com/paulmach/orb"
)

// NodeID identifies a node and is stable for the duration of a run
type NodeID int

// Node represents a location the fleet can visit
type Node struct {
	ID                NodeID   `json:"id" yaml:"id" validate:"gte=0"`
	X                 float64  `json:"x" yaml:"x"`
	Y                 float64  `json:"y" yaml:"y"`
	Demand            float64  `json:"demand,omitempty" yaml:"demand,omitempty" validate:"gte=0"`
	IsDepot           bool     `json:"is_depot,omitempty" yaml:"is_depot,omitempty"`
	IsChargingStation bool     `json:"is_charging_station,omitempty" yaml:"is_charging_station,omitempty"`
	ChargerPowerKW    *float64 `json:"charger_power_kw,omitempty" yaml:"charger_power_kw,omitempty" validate:"omitempty,gte=0"`
}

// Point returns the node coordinate as an orb point (X is longitude for geographic data)
func (n Node) Point() orb.Point {
	return orb.Point{n.X, n.Y}
}

// CanRecharge reports whether a vehicle may fully recharge at this node. A
// charging station without a positive power rating does not count.
func (n Node) CanRecharge() bool {
	return n.IsChargingStation && n.ChargerPowerKW != nil && *n.ChargerPowerKW > 0
}

// Vehicle represents one electric vehicle of the fleet
type Vehicle struct {
	ID         string   `json:"id,omitempty" yaml:"id,omitempty"`
	Capacity   *float64 `json:"capacity" yaml:"capacity" validate:"required,gte=0"`
	BatteryKWh *float64 `json:"battery_kwh" yaml:"battery_kwh" validate:"required,gt=0"`
	StartNode  *NodeID  `json:"start_node,omitempty" yaml:"start_node,omitempty"`
}

// CapacityValue returns the capacity, zero when absent
func (v Vehicle) CapacityValue() float64 {
	if v.Capacity == nil {
		return 0
	}

	return *v.Capacity
}

// BatteryValue returns the battery capacity, zero when absent
func (v Vehicle) BatteryValue() float64 {
	if v.BatteryKWh == nil {
		return 0
	}

	return *v.BatteryKWh
}
