package model

import "math"

// SocStepKWh is the state-of-charge discretization used by the optimizer.
const SocStepKWh = 0.01

// TradeCorridorFraction is the top of the band within which grid trading may
// move the state of charge.
const TradeCorridorFraction = 0.8

// BatteryConfig defines the battery and grid connection of a household.
// Units:
// - CapacityKWh: kWh (0 means "no battery")
// - StartSocPercent: 0..100
// - PowerLimitKW / GridLimitKW: kW
type BatteryConfig struct {
	CapacityKWh     float64
	StartSocPercent float64
	PowerLimitKW    float64
	GridLimitKW     float64
}

func (b BatteryConfig) Validate() error {
	if b.CapacityKWh < 0 || math.IsNaN(b.CapacityKWh) || math.IsInf(b.CapacityKWh, 0) {
		return Errorf(KindInvalidConfig, "capacity must be >= 0")
	}
	if b.StartSocPercent < 0 || b.StartSocPercent > 100 {
		return Errorf(KindInvalidConfig, "start SoC must be within [0, 100]")
	}
	if !(b.PowerLimitKW > 0) || math.IsInf(b.PowerLimitKW, 0) {
		return Errorf(KindInvalidConfig, "power limit must be > 0")
	}
	if !(b.GridLimitKW > 0) || math.IsInf(b.GridLimitKW, 0) {
		return Errorf(KindInvalidConfig, "grid limit must be > 0")
	}
	return nil
}

// StartSocKWh is the real (non-discretized) starting state of charge.
func (b BatteryConfig) StartSocKWh() float64 {
	return b.StartSocPercent / 100 * b.CapacityKWh
}

// TradeMaxKWh is the upper edge of the trade corridor.
func (b BatteryConfig) TradeMaxKWh() float64 {
	return TradeCorridorFraction * b.CapacityKWh
}

// MaxEnergyPerInterval is the battery power limit expressed as energy per interval.
func (b BatteryConfig) MaxEnergyPerInterval(dtMin int) float64 {
	return b.PowerLimitKW * float64(dtMin) / 60
}

// GridLimitPerInterval is the grid connection limit expressed as energy per interval.
func (b BatteryConfig) GridLimitPerInterval(dtMin int) float64 {
	return b.GridLimitKW * float64(dtMin) / 60
}

// MaxStates caps the discretized state count so conversions to int stay in
// range. Any battery near the cap is rejected by the optimizer's work bound.
const MaxStates = math.MaxInt32

// StateCount is NumStates in float64, before any int conversion.
func (b BatteryConfig) StateCount() float64 {
	return math.Floor(b.CapacityKWh/SocStepKWh+1e-9) + 1
}

// NumStates is the number of discretized SoC states for the battery.
func (b BatteryConfig) NumStates() int {
	s := b.StateCount()
	if !(s <= MaxStates) {
		return MaxStates
	}
	return int(s)
}

// SocPercent reports kWh as a percentage of capacity; 0 for a battery-less site.
func (b BatteryConfig) SocPercent(kwh float64) float64 {
	if b.CapacityKWh <= 0 {
		return 0
	}
	return kwh / b.CapacityKWh * 100
}

// BatteryOverride changes selected fields of a battery; nil fields inherit.
type BatteryOverride struct {
	CapacityKWh     *float64
	StartSocPercent *float64
	PowerLimitKW    *float64
	GridLimitKW     *float64
}

// Apply returns base with the set fields replaced.
func (o BatteryOverride) Apply(base BatteryConfig) BatteryConfig {
	out := base
	if o.CapacityKWh != nil {
		out.CapacityKWh = *o.CapacityKWh
	}
	if o.StartSocPercent != nil {
		out.StartSocPercent = *o.StartSocPercent
	}
	if o.PowerLimitKW != nil {
		out.PowerLimitKW = *o.PowerLimitKW
	}
	if o.GridLimitKW != nil {
		out.GridLimitKW = *o.GridLimitKW
	}
	return out
}
