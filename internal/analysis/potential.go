package analysis

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"battery-dispatch/internal/grid"
	"battery-dispatch/internal/load"
	"battery-dispatch/internal/model"
	"battery-dispatch/internal/strategy"
)

// canonicalBattery is the reference used to compare price days independently
// of any household: 1 kWh, 1 kW, half full, no grid constraint worth noting.
var canonicalBattery = model.BatteryConfig{
	CapacityKWh:     1,
	StartSocPercent: 50,
	PowerLimitKW:    1,
	GridLimitKW:     1000,
}

// ArbitragePotential summarizes one day-ahead price series.
type ArbitragePotential struct {
	Label string `json:"label"`

	DtMin     int `json:"dtMin"`
	Intervals int `json:"intervals"`

	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	P05    float64 `json:"p05"`
	P95    float64 `json:"p95"`
	Spread float64 `json:"spreadP95P05"`

	// ArbitrageValue is the optimal trading profit of the canonical battery
	// on this day, with no household load and no PV.
	ArbitrageValue float64 `json:"arbitrageValue"`
}

// AnalyzePrices normalizes a price CSV and computes its potential.
func AnalyzePrices(label, priceCSV string, opts grid.Options) (*ArbitragePotential, error) {
	n, err := grid.Normalize(priceCSV, "", opts)
	if err != nil {
		return nil, err
	}
	return ComputePotential(label, n.Grid, n.Prices)
}

// ComputePotential computes price statistics over the uniform series and the
// canonical battery's arbitrage value.
func ComputePotential(label string, g model.Grid, prices model.UniformSeries) (*ArbitragePotential, error) {
	p := &ArbitragePotential{Label: label, DtMin: g.DtMin, Intervals: len(prices)}
	if len(prices) == 0 {
		return p, nil
	}

	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)
	p.Min = floats.Min(sorted)
	p.Max = floats.Max(sorted)
	p.Mean = stat.Mean(sorted, nil)
	p.P05 = stat.Quantile(0.05, stat.LinInterp, sorted, nil)
	p.P95 = stat.Quantile(0.95, stat.LinInterp, sorted, nil)
	p.Spread = p.P95 - p.P05

	sol, err := strategy.NewOptimal(strategy.OptimalParams{}).Solve(strategy.Problem{
		Grid:   g,
		Prices: prices,
		PV:     make(model.UniformSeries, len(prices)),
		Usage: load.Usage{
			Random:  make(model.UniformSeries, len(prices)),
			Planned: make(model.UniformSeries, len(prices)),
		},
		Battery: canonicalBattery,
	})
	if err != nil {
		return nil, err
	}
	p.ArbitrageValue = sol.Value
	return p, nil
}
