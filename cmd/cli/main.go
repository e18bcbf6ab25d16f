package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"battery-dispatch/internal/config"
	"battery-dispatch/internal/logging"
	"battery-dispatch/internal/simulation"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "dispatch",
		Short:        "Day-ahead home battery dispatch simulator",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "YAML config (defaults apply when empty)")

	load := func() (*config.Config, simulation.Options, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, simulation.Options{}, fmt.Errorf("load config: %w", err)
		}
		if err := logging.SetLevel(cfg.Logging.Level); err != nil {
			return nil, simulation.Options{}, err
		}
		log := logging.New("cli")
		return cfg, simulation.Options{
			DayMinutes: cfg.Optimizer.DayMinutes,
			MaxWork:    cfg.Optimizer.MaxWork,
			Logger:     &log,
		}, nil
	}

	root.AddCommand(
		newSimulateCmd(load),
		newCompareCmd(load),
		newAnalyzeCmd(load),
		newDemoCmd(load),
	)
	return root
}

type loader func() (*config.Config, simulation.Options, error)
