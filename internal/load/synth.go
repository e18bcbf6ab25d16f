package load

import (
	"math"

	"battery-dispatch/internal/grid"
	"battery-dispatch/internal/model"
)

// Baseline household load bounds in kW.
const (
	BaseLoadMinKW   = 0.1
	BaseLoadRangeKW = 0.3
)

// Usage is the synthesized household demand per interval, in kWh.
type Usage struct {
	Random  model.UniformSeries
	Planned model.UniformSeries
}

// Gross returns the total demand for interval i.
func (u Usage) Gross(i int) float64 {
	return u.Planned[i] + u.Random[i]
}

// Synthesize builds the random baseline from the fixed seed and overlays the
// scheduled actions.
func Synthesize(g model.Grid, actions []model.ScheduledAction) (Usage, error) {
	planned, err := PlannedUsage(g, actions)
	if err != nil {
		return Usage{}, err
	}
	return Usage{
		Random:  RandomUsage(g, NewMulberry32(Seed)),
		Planned: planned,
	}, nil
}

// RandomUsage draws a uniformly distributed 0.1–0.4 kW load per interval,
// scaled to interval energy.
func RandomUsage(g model.Grid, rng *Mulberry32) model.UniformSeries {
	out := make(model.UniformSeries, 0, g.IntervalsPerDay)
	h := g.HoursPerInterval()
	for v := range rng.Draws(g.IntervalsPerDay) {
		out = append(out, (BaseLoadMinKW+v*BaseLoadRangeKW)*h)
	}
	return out
}

// PlannedUsage spreads each action's energy over the intervals it overlaps.
// Overlapping actions add up.
func PlannedUsage(g model.Grid, actions []model.ScheduledAction) (model.UniformSeries, error) {
	out := make(model.UniformSeries, g.IntervalsPerDay)
	for i, a := range actions {
		start, err := grid.MinutesSinceMidnight(a.StartTime)
		if err != nil {
			return nil, model.Errorf(model.KindMalformedInput, "action %d: %v", i, err)
		}
		if !(a.DurationMinutes > 0) {
			return nil, model.Errorf(model.KindMalformedInput, "action %d: duration must be > 0", i)
		}
		for idx := range out {
			if overlap := overlapMinutes(float64(start), float64(start)+a.DurationMinutes, idx, g.DtMin); overlap > 0 {
				out[idx] += a.PowerKW * overlap / 60
			}
		}
	}
	return out, nil
}

func overlapMinutes(start, end float64, idx, dtMin int) float64 {
	intStart := float64(idx * dtMin)
	intEnd := intStart + float64(dtMin)
	return math.Max(0, math.Min(end, intEnd)-math.Max(start, intStart))
}
