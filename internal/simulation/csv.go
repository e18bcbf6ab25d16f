package simulation

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"battery-dispatch/internal/model"
)

// WriteLedgerCSV writes the per-interval ledger of a result to path.
func WriteLedgerCSV(path string, res *model.SimulationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteLedger(f, res)
}

// WriteLedger writes the per-interval ledger as CSV.
func WriteLedger(out io.Writer, res *model.SimulationResult) error {
	w := csv.NewWriter(out)

	header := []string{
		"index",
		"timestamp",
		"price",
		"pv_production",
		"planned_usage",
		"random_usage",
		"net_load",
		"action",
		"battery_action",
		"soc",
		"grid_energy",
		"cost",
		"pv_self_consumed",
		"pv_exported",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, r := range res.Intervals {
		row := []string{
			strconv.Itoa(i),
			r.Timestamp,
			fmtFloat(r.Price),
			fmtFloat(r.PvProduction),
			fmtFloat(r.PlannedUsage),
			fmtFloat(r.RandomUsage),
			fmtFloat(r.NetLoad),
			string(model.ActionFromBatteryKWh(r.BatteryAction)),
			fmtFloat(r.BatteryAction),
			fmtFloat(r.Soc),
			fmtFloat(r.GridEnergy),
			fmtFloat(r.Cost),
			fmtFloat(r.PvSelfConsumed),
			fmtFloat(r.PvExported),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
