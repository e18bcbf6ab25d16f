package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"battery-dispatch/internal/analysis"
	"battery-dispatch/internal/data"
)

func newAnalyzeCmd(load loader) *cobra.Command {
	var prices string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rank price days by arbitrage potential",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, opts, err := load()
			if err != nil {
				return err
			}
			days, err := data.LoadPriceDays(data.SplitPaths(prices))
			if err != nil {
				return err
			}
			ranked, err := analysis.RankByArbitrageValue(days, gridOptions(opts))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-4s %-20s %-6s %-10s %-15s %-10s\n", "rank", "day", "dt", "p95-p05", "min/max", "value EUR")
			for i, r := range ranked {
				fmt.Fprintf(w, "%-4d %-20s %-6d %-10.3f %-6.3f/%-8.3f %-10.3f\n",
					i+1, r.Label, r.DtMin, r.Spread, r.Min, r.Max, r.ArbitrageValue)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prices, "prices", "", "Comma-separated price CSV files or directories")
	_ = cmd.MarkFlagRequired("prices")
	return cmd
}
