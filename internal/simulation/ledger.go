package simulation

import (
	"context"
	"math"
	"sort"

	"battery-dispatch/internal/model"
)

// Reporting precision.
const (
	energyDecimals   = 3
	currencyDecimals = 2
	percentDecimals  = 1
)

// Outcome is a completed simulation plus the decisions that produced it.
type Outcome struct {
	Strategy string
	Grid     model.Grid
	Deltas   []float64
	Result   *model.SimulationResult
}

// Variation is one named alternative in a comparison. Unset battery fields
// inherit the base request.
type Variation struct {
	Name           string
	Strategy       string
	StrategyParams map[string]any
	Battery        model.BatteryOverride
}

// Comparison is the outcome of one variation. Err is set instead of Outcome
// when the variation failed. Strategy is the name the variation requested.
type Comparison struct {
	Name     string
	Strategy string
	Outcome  *Outcome
	Err      error
}

// Compare runs every variation against the same input series. Successful
// variations come first, cheapest net cost first; failed ones keep their
// input order at the end.
func Compare(ctx context.Context, base Request, variations []Variation, opts Options) []Comparison {
	out := make([]Comparison, 0, len(variations))
	for _, v := range variations {
		req := base
		req.Strategy = v.Strategy
		req.StrategyParams = v.StrategyParams
		req.Battery = v.Battery.Apply(base.Battery)

		o, err := Run(ctx, req, opts)
		out = append(out, Comparison{Name: v.Name, Strategy: v.Strategy, Outcome: o, Err: err})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.Err != nil {
			return false
		}
		return a.Outcome.Result.NetCost < b.Outcome.Result.NetCost
	})
	return out
}

func round(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	r := math.Round(x*p) / p
	if r == 0 {
		// Avoid reporting -0.
		return 0
	}
	return r
}
