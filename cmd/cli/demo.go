package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"battery-dispatch/internal/model"
	"battery-dispatch/internal/simulation"
)

// demoPrices alternates a cheap and an expensive hour, the smallest day on
// which arbitrage pays.
func demoPrices() string {
	var b strings.Builder
	b.WriteString("tijdstip;prijs\n")
	for h := 0; h < 24; h++ {
		price := "0,10"
		if h%2 == 1 {
			price = "0,30"
		}
		fmt.Fprintf(&b, "%02d:00;%s\n", h, price)
	}
	return b.String()
}

// demoPV is a rough clear-sky quarter-hour profile peaking at 3 kWh per hour.
func demoPV() string {
	var b strings.Builder
	b.WriteString("time,production\n")
	for m := 0; m < 24*60; m += 15 {
		h := float64(m) / 60
		v := 0.0
		if h > 7 && h < 19 {
			x := (h - 13) / 6
			v = 0.75 * (1 - x*x)
		}
		fmt.Fprintf(&b, "%02d:%02d,%.3f\n", m/60, m%60, v)
	}
	return b.String()
}

func newDemoCmd(load loader) *cobra.Command {
	var (
		verbose bool
		outCSV  string
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a built-in scenario with and without a battery",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := load()
			if err != nil {
				return err
			}
			req := simulation.Request{
				Battery:  cfg.Battery.ToModel(),
				PriceCSV: demoPrices(),
				PVCSV:    demoPV(),
				Actions: []model.ScheduledAction{
					{StartTime: "07:00", DurationMinutes: 30, PowerKW: 2},
					{StartTime: "18:30", DurationMinutes: 90, PowerKW: 3.5},
				},
				Strategy:       cfg.Strategy.Name,
				StrategyParams: cfg.Strategy.Params,
			}

			o, err := simulation.Run(cmd.Context(), req, opts)
			if err != nil {
				return err
			}
			bare := req
			bare.Battery.CapacityKWh = 0
			bare.Strategy, bare.StrategyParams = "idle", nil
			without, err := simulation.Run(cmd.Context(), bare, opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "== with battery")
			printSummary(w, o)
			fmt.Fprintln(w, "== without battery")
			printSummary(w, without)
			fmt.Fprintf(w, "savings=%.2f EUR\n", without.Result.NetCost-o.Result.NetCost)
			if verbose {
				printIntervals(w, o.Result)
			}
			if outCSV != "" {
				return report(w, o, outCSV, "")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every interval")
	cmd.Flags().StringVar(&outCSV, "out", "", "Optional path to write the ledger CSV")
	return cmd
}
