package simulation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"battery-dispatch/internal/flow"
	"battery-dispatch/internal/grid"
	"battery-dispatch/internal/load"
	"battery-dispatch/internal/model"
	"battery-dispatch/internal/strategy"
)

// Request is one day-ahead simulation as received from a transport.
type Request struct {
	Battery        model.BatteryConfig
	PriceCSV       string
	PVCSV          string
	Actions        []model.ScheduledAction
	Strategy       string
	StrategyParams map[string]any
}

// Options are service-level settings shared by all requests.
type Options struct {
	DayMinutes int
	MaxWork    float64
	Logger     *zerolog.Logger
}

// Run executes the whole pipeline: normalize the input series, synthesize the
// load, plan the trading deltas and replay them.
func Run(ctx context.Context, req Request, opts Options) (*Outcome, error) {
	started := time.Now()
	if err := req.Battery.Validate(); err != nil {
		return nil, err
	}

	p, err := Prepare(req, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	strat, err := strategy.Build(req.Strategy, req.StrategyParams, req.Battery, strategy.Options{MaxWork: opts.MaxWork})
	if err != nil {
		return nil, err
	}
	deltas, err := strat.Plan(*p)
	if err != nil {
		return nil, fmt.Errorf("%s strategy: %w", strat.Name(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := Replay(*p, deltas)
	if err != nil {
		return nil, err
	}

	if opts.Logger != nil {
		opts.Logger.Debug().
			Str("strategy", strat.Name()).
			Int("dt_min", p.Grid.DtMin).
			Int("intervals", p.Grid.IntervalsPerDay).
			Float64("net_cost", res.NetCost).
			Dur("took", time.Since(started)).
			Msg("simulation completed")
	}
	return &Outcome{
		Strategy: strat.Name(),
		Grid:     p.Grid,
		Deltas:   deltas,
		Result:   res,
	}, nil
}

// Prepare normalizes the inputs and synthesizes the load into a Problem.
func Prepare(req Request, opts Options) (*strategy.Problem, error) {
	n, err := grid.Normalize(req.PriceCSV, req.PVCSV, grid.Options{DayMinutes: opts.DayMinutes})
	if err != nil {
		return nil, err
	}
	usage, err := load.Synthesize(n.Grid, req.Actions)
	if err != nil {
		return nil, err
	}
	return &strategy.Problem{
		Grid:    n.Grid,
		Prices:  n.Prices,
		PV:      n.PV,
		Usage:   usage,
		Battery: req.Battery,
	}, nil
}

// Replay recomputes every interval's energy and money flows for a fixed
// sequence of trading deltas. Accumulation is done at full precision;
// rounding happens only on the reported values.
func Replay(p strategy.Problem, deltas []float64) (*model.SimulationResult, error) {
	n := p.Grid.IntervalsPerDay
	if len(deltas) != n {
		return nil, fmt.Errorf("plan length (%d) does not match intervals length (%d)", len(deltas), n)
	}
	l := p.Limits()

	var (
		totalGridEnergy float64
		totalCost       float64
		pvSelfConsumed  float64
		pvExported      float64
		exportRevenue   float64
		batteryExported float64
		socSum          float64
	)
	soc := p.Battery.StartSocKWh()
	intervals := make([]model.IntervalResult, n)
	for i := 0; i < n; i++ {
		price := p.Prices[i]
		f := flow.Decompose(p.PV[i], p.Usage.Gross(i), soc, l)
		delta := deltas[i]
		if !flow.Feasible(f, delta, l) {
			return nil, model.Errorf(model.KindConstraintInfeasible,
				"trading decision %.3f kWh at interval %d violates battery or grid limits", delta, i)
		}
		soc = flow.Apply(f, delta, l)

		netFlow := f.NetAfterEigen + delta
		gridEnergy := math.Max(netFlow, 0)
		cost := netFlow * price
		selfUsed := f.PvToLoad + f.ChargeFromPv

		totalGridEnergy += gridEnergy
		totalCost += cost
		pvSelfConsumed += selfUsed
		pvExported += f.PvExport
		exportRevenue += f.PvExport * price
		if delta < 0 {
			batteryExported += -delta
		}

		socPct := round(p.Battery.SocPercent(soc), percentDecimals)
		socSum += socPct

		intervals[i] = model.IntervalResult{
			Timestamp:      grid.FormatHHMM(i, p.Grid.DtMin),
			Price:          price,
			PvProduction:   p.PV[i],
			PlannedUsage:   round(p.Usage.Planned[i], energyDecimals),
			RandomUsage:    round(p.Usage.Random[i], energyDecimals),
			NetLoad:        round(netFlow, energyDecimals),
			BatteryAction:  round(f.DischargeEigen-f.ChargeFromPv-delta, energyDecimals),
			Soc:            socPct,
			GridEnergy:     round(gridEnergy, energyDecimals),
			Cost:           round(cost, currencyDecimals),
			PvSelfConsumed: round(selfUsed, energyDecimals),
			PvExported:     round(f.PvExport, energyDecimals),
		}
	}

	avgSoc := 0.0
	if n > 0 {
		avgSoc = round(socSum/float64(n), percentDecimals)
	}
	return &model.SimulationResult{
		NetUsage:        round(totalGridEnergy, energyDecimals),
		NetCost:         round(totalCost, currencyDecimals),
		AvgSoc:          avgSoc,
		PvSelfConsumed:  round(pvSelfConsumed, energyDecimals),
		PvExported:      round(pvExported, energyDecimals),
		ExportRevenue:   round(exportRevenue, currencyDecimals),
		BatteryExported: round(batteryExported, energyDecimals),
		Intervals:       intervals,
	}, nil
}
