// Package flow is the per-interval energy-flow model. The optimizer's
// backward pass, its policy extraction and the replay engine all go through
// Decompose and Feasible so the three passes cannot diverge.
package flow

import (
	"math"

	"battery-dispatch/internal/model"
)

// eps absorbs float drift in the bound checks (kWh).
const eps = 1e-9

// Limits are the battery and grid constraints for one interval length.
type Limits struct {
	CapacityKWh  float64
	TradeMaxKWh  float64
	MaxEnergyKWh float64 // battery power limit per interval
	GridLimitKWh float64 // grid import limit per interval
	NumStates    int
}

// NewLimits derives the per-interval limits of a battery on a grid.
func NewLimits(b model.BatteryConfig, g model.Grid) Limits {
	return Limits{
		CapacityKWh:  b.CapacityKWh,
		TradeMaxKWh:  b.TradeMaxKWh(),
		MaxEnergyKWh: b.MaxEnergyPerInterval(g.DtMin),
		GridLimitKWh: b.GridLimitPerInterval(g.DtMin),
		NumStates:    b.NumStates(),
	}
}

// DeltaStepCount is MaxDeltaSteps in float64, before any int conversion.
func (l Limits) DeltaStepCount() float64 {
	return math.Floor(l.MaxEnergyKWh/model.SocStepKWh + eps)
}

// MaxDeltaSteps is the number of SoC steps one trading decision may span.
// It saturates at model.MaxStates.
func (l Limits) MaxDeltaSteps() int {
	k := l.DeltaStepCount()
	if !(k <= model.MaxStates) {
		return model.MaxStates
	}
	return int(k)
}

// Flow is the self-use decomposition of one interval, before trading.
type Flow struct {
	PvToLoad       float64
	DischargeEigen float64 // battery -> load
	ChargeFromPv   float64 // PV -> battery
	PvExport       float64 // PV surplus not absorbed anywhere
	NetAfterEigen  float64 // grid flow before trading, import positive
	SocBefore      float64
	SocAfterEigen  float64
}

// Decompose applies the self-use steps in order: PV covers load, the battery
// covers what is left, surplus PV charges the battery, the rest is exchanged
// with the grid.
func Decompose(pv, grossLoad, soc float64, l Limits) Flow {
	f := Flow{SocBefore: soc}
	f.PvToLoad = math.Min(pv, grossLoad)
	remainder := grossLoad - pv

	if remainder > 0 {
		f.DischargeEigen = math.Max(0, math.Min(remainder, math.Min(soc, l.MaxEnergyKWh)))
	}
	socAfterDischarge := soc - f.DischargeEigen

	if remainder-f.DischargeEigen < 0 {
		surplus := -remainder
		f.ChargeFromPv = math.Max(0, math.Min(surplus, math.Min(l.CapacityKWh-socAfterDischarge, l.MaxEnergyKWh)))
		f.PvExport = surplus - f.ChargeFromPv
		f.NetAfterEigen = -f.PvExport
	} else {
		f.NetAfterEigen = remainder - f.DischargeEigen
	}
	f.SocAfterEigen = socAfterDischarge + f.ChargeFromPv
	return f
}

// StateIndex rounds a SoC to the nearest discretized state.
func StateIndex(soc float64) int {
	idx := math.Round(soc / model.SocStepKWh)
	if !(idx <= model.MaxStates) {
		return model.MaxStates
	}
	return int(idx)
}

// Feasible reports whether trading delta (positive = grid import into the
// battery) is allowed after the self-use flows f.
func Feasible(f Flow, delta float64, l Limits) bool {
	next := f.SocAfterEigen + delta
	if next < -eps || next > l.CapacityKWh+eps {
		return false
	}
	if delta > 0 && next > l.TradeMaxKWh+eps {
		return false
	}
	// Starting above the corridor, trading may only export the part above it.
	// Compared as discretized states, the same ones the backward pass sees.
	if delta < 0 {
		top := StateIndex(l.TradeMaxKWh)
		if StateIndex(f.SocAfterEigen) > top && StateIndex(next) < top {
			return false
		}
	}
	if f.NetAfterEigen+delta > l.GridLimitKWh+eps {
		return false
	}
	idx := StateIndex(next)
	return idx >= 0 && idx < l.NumStates
}

// Range is the continuous interval of feasible trading deltas, used by the
// heuristic strategies. ok is false when no delta, not even zero after
// clipping, satisfies the constraints.
func Range(f Flow, l Limits) (lo, hi float64, ok bool) {
	soc := f.SocAfterEigen
	lo = math.Max(-l.MaxEnergyKWh, -soc)
	if soc > l.TradeMaxKWh {
		lo = math.Max(lo, l.TradeMaxKWh-soc)
	}
	hi = math.Min(l.MaxEnergyKWh, l.CapacityKWh-soc)
	hi = math.Min(hi, l.GridLimitKWh-f.NetAfterEigen)
	// Grid charging never lifts the SoC above the corridor top, but a zero
	// or negative delta is still allowed there.
	hi = math.Min(hi, math.Max(0, l.TradeMaxKWh-soc))
	// Keep the rounded next state on the discretized grid.
	hi = math.Min(hi, (float64(l.NumStates)-0.5)*model.SocStepKWh-soc-eps)
	if hi < lo-eps {
		return 0, 0, false
	}
	return lo, math.Max(lo, hi), true
}

// Clip moves a requested delta into [lo, hi].
func Clip(delta, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, delta))
}

// Apply advances the SoC by the trading delta, clamping float drift.
func Apply(f Flow, delta float64, l Limits) float64 {
	next := f.SocAfterEigen + delta
	if next < 0 {
		next = 0
	}
	if next > l.CapacityKWh {
		next = l.CapacityKWh
	}
	return next
}
