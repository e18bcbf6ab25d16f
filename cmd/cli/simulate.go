package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"battery-dispatch/internal/config"
	"battery-dispatch/internal/data"
	"battery-dispatch/internal/grid"
	"battery-dispatch/internal/model"
	"battery-dispatch/internal/simulation"
)

type inputFlags struct {
	prices  string
	pv      string
	actions string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.prices, "prices", "", "Day-ahead price CSV")
	cmd.Flags().StringVar(&f.pv, "pv", "", "Optional PV production CSV")
	cmd.Flags().StringVar(&f.actions, "actions", "", "Optional JSON file of scheduled actions")
	_ = cmd.MarkFlagRequired("prices")
}

func (f *inputFlags) request(cfg *config.Config) (simulation.Request, error) {
	prices, err := data.ReadCSV(f.prices)
	if err != nil {
		return simulation.Request{}, err
	}
	pv, err := data.ReadCSV(f.pv)
	if err != nil {
		return simulation.Request{}, err
	}
	actions, err := data.LoadActions(f.actions)
	if err != nil {
		return simulation.Request{}, err
	}
	return simulation.Request{
		Battery:        cfg.Battery.ToModel(),
		PriceCSV:       prices,
		PVCSV:          pv,
		Actions:        actions,
		Strategy:       cfg.Strategy.Name,
		StrategyParams: cfg.Strategy.Params,
	}, nil
}

func newSimulateCmd(load loader) *cobra.Command {
	var (
		in       inputFlags
		strategy string
		outCSV   string
		outJSON  string
		previous string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Optimize and replay one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := load()
			if err != nil {
				return err
			}
			req, err := in.request(cfg)
			if err != nil {
				return err
			}
			if strategy != "" {
				req.Strategy, req.StrategyParams = strategy, nil
			}
			o, err := simulation.Run(cmd.Context(), req, opts)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), o)
			if previous != "" {
				prev, err := data.LoadResult(previous)
				if err != nil {
					return fmt.Errorf("load %s: %w", previous, err)
				}
				printDiff(cmd.OutOrStdout(), previous, prev, o.Result)
			}
			return report(cmd.OutOrStdout(), o, outCSV, outJSON)
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&strategy, "strategy", "", "Strategy name, overrides the config")
	cmd.Flags().StringVar(&outCSV, "out", "", "Optional path to write the ledger CSV")
	cmd.Flags().StringVar(&outJSON, "json", "", "Optional path to write the result JSON")
	cmd.Flags().StringVar(&previous, "compare-with", "", "Optional result JSON from an earlier run to diff against")
	return cmd
}

func report(w io.Writer, o *simulation.Outcome, outCSV, outJSON string) error {
	if outCSV != "" {
		if err := os.MkdirAll(filepath.Dir(outCSV), 0o755); err != nil {
			return err
		}
		if err := simulation.WriteLedgerCSV(outCSV, o.Result); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %d rows to %s\n", len(o.Result.Intervals), outCSV)
	}
	if outJSON != "" {
		if err := data.SaveResult(o.Result, outJSON); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote result to %s\n", outJSON)
	}
	return nil
}

func printSummary(w io.Writer, o *simulation.Outcome) {
	r := o.Result
	fmt.Fprintf(w, "strategy=%s interval=%dmin intervals=%d\n", o.Strategy, o.Grid.DtMin, len(r.Intervals))
	fmt.Fprintf(w, "net cost=%.2f EUR grid import=%.3f kWh avg SoC=%.1f%%\n", r.NetCost, r.NetUsage, r.AvgSoc)
	fmt.Fprintf(w, "battery exported=%.3f kWh PV self-consumed=%.3f kWh PV exported=%.3f kWh (revenue %.2f EUR)\n",
		r.BatteryExported, r.PvSelfConsumed, r.PvExported, r.ExportRevenue)
}

// printDiff reports r minus an earlier result.
func printDiff(w io.Writer, label string, prev, r *model.SimulationResult) {
	fmt.Fprintf(w, "vs %s: net cost %+.2f EUR grid import %+.3f kWh battery exported %+.3f kWh avg SoC %+.1f%%\n",
		label, r.NetCost-prev.NetCost, r.NetUsage-prev.NetUsage, r.BatteryExported-prev.BatteryExported, r.AvgSoc-prev.AvgSoc)
}

func printIntervals(w io.Writer, r *model.SimulationResult) {
	fmt.Fprintf(w, "%-6s %-7s %-7s %-8s %-12s %-8s %-6s\n", "time", "price", "pv", "net", "action", "battery", "soc%")
	for _, it := range r.Intervals {
		fmt.Fprintf(w, "%-6s %-7.3f %-7.3f %-8.3f %-12s %-8.3f %-6.1f\n",
			it.Timestamp, it.Price, it.PvProduction, it.NetLoad,
			model.ActionFromBatteryKWh(it.BatteryAction), it.BatteryAction, it.Soc)
	}
}

func gridOptions(opts simulation.Options) grid.Options {
	return grid.Options{DayMinutes: opts.DayMinutes}
}
