package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"battery-dispatch/internal/data"
	"battery-dispatch/internal/simulation"
	"battery-dispatch/internal/strategy"
)

func newCompareCmd(load loader) *cobra.Command {
	var (
		in         inputFlags
		strategies string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run several strategies on the same day, cheapest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := load()
			if err != nil {
				return err
			}
			base, err := in.request(cfg)
			if err != nil {
				return err
			}
			var variations []simulation.Variation
			for _, name := range data.SplitPaths(strategies) {
				v := simulation.Variation{Name: name, Strategy: name}
				if name == cfg.Strategy.Name {
					v.StrategyParams = cfg.Strategy.Params
				}
				variations = append(variations, v)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-4s %-10s %-10s %-12s %-14s %-8s\n", "rank", "strategy", "net EUR", "import kWh", "exported kWh", "avg soc")
			for i, c := range simulation.Compare(cmd.Context(), base, variations, opts) {
				if c.Err != nil {
					fmt.Fprintf(w, "%-4d %-10s error: %v\n", i+1, c.Name, c.Err)
					continue
				}
				r := c.Outcome.Result
				fmt.Fprintf(w, "%-4d %-10s %-10.2f %-12.3f %-14.3f %-8.1f\n",
					i+1, c.Name, r.NetCost, r.NetUsage, r.BatteryExported, r.AvgSoc)
			}
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&strategies, "strategies", strings.Join(strategy.Names(), ","), "Comma-separated strategy names")
	return cmd
}
