package strategy

import (
	"gonum.org/v1/gonum/stat"

	"battery-dispatch/internal/flow"
)

// Greedy is the mean-price threshold heuristic: charge as much as allowed
// while the price is below the day's mean, discharge as much as allowed
// while it is above. It ignores the future beyond the mean and serves as a
// baseline for the optimizer.
type Greedy struct{}

func (s *Greedy) Name() string { return "greedy" }

func (s *Greedy) Plan(p Problem) ([]float64, error) {
	l := p.Limits()
	mean := stat.Mean(p.Prices, nil)

	soc := p.Battery.StartSocKWh()
	deltas := make([]float64, p.Grid.IntervalsPerDay)
	for i := range deltas {
		f := flow.Decompose(p.PV[i], p.Usage.Gross(i), soc, l)
		lo, hi, ok := flow.Range(f, l)
		if !ok {
			return nil, infeasibleAt(p, i)
		}
		var want float64
		switch price := p.Prices[i]; {
		case price < mean:
			want = hi
		case price > mean:
			want = lo
		}
		deltas[i] = flow.Clip(want, lo, hi)
		soc = flow.Apply(f, deltas[i], l)
	}
	return deltas, nil
}

// Idle never trades. A zero delta is still clipped, so a grid limit below
// the residual load can force an export.
type Idle struct{}

func (s *Idle) Name() string { return "idle" }

func (s *Idle) Plan(p Problem) ([]float64, error) {
	l := p.Limits()
	soc := p.Battery.StartSocKWh()
	deltas := make([]float64, p.Grid.IntervalsPerDay)
	for i := range deltas {
		f := flow.Decompose(p.PV[i], p.Usage.Gross(i), soc, l)
		lo, hi, ok := flow.Range(f, l)
		if !ok {
			return nil, infeasibleAt(p, i)
		}
		deltas[i] = flow.Clip(0, lo, hi)
		soc = flow.Apply(f, deltas[i], l)
	}
	return deltas, nil
}
