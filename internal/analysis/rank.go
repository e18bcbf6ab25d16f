package analysis

import (
	"fmt"
	"sort"

	"battery-dispatch/internal/grid"
)

// PriceDay is one labelled day-ahead price CSV.
type PriceDay struct {
	Label string
	CSV   string
}

// RankByArbitrageValue analyzes every day and sorts them by descending
// arbitrage value. Ties keep their input order.
func RankByArbitrageValue(days []PriceDay, opts grid.Options) ([]ArbitragePotential, error) {
	out := make([]ArbitragePotential, 0, len(days))
	for _, d := range days {
		p, err := AnalyzePrices(d.Label, d.CSV, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Label, err)
		}
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ArbitrageValue > out[j].ArbitrageValue
	})
	return out, nil
}
