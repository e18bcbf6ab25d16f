package strategy

import (
	"battery-dispatch/internal/flow"
	"battery-dispatch/internal/load"
	"battery-dispatch/internal/model"
)

// Problem is everything a strategy may look at: one day of normalized
// prices and PV, the synthesized load and the battery.
type Problem struct {
	Grid    model.Grid
	Prices  model.UniformSeries
	PV      model.UniformSeries
	Usage   load.Usage
	Battery model.BatteryConfig
}

// Limits returns the per-interval constraints of the problem.
func (p Problem) Limits() flow.Limits {
	return flow.NewLimits(p.Battery, p.Grid)
}

// Strategy turns a problem into one grid-trading delta per interval
// (kWh, positive = import to charge, negative = export from discharge).
type Strategy interface {
	Name() string
	Plan(p Problem) ([]float64, error)
}

func infeasibleAt(p Problem, i int) error {
	return model.Errorf(model.KindConstraintInfeasible,
		"no feasible trading decision at interval %d (minute %d): grid limit %.3f kWh, power limit %.3f kWh",
		i, i*p.Grid.DtMin, p.Battery.GridLimitPerInterval(p.Grid.DtMin), p.Battery.MaxEnergyPerInterval(p.Grid.DtMin))
}
