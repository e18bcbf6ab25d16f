package model

// IntervalResult captures what happened in one interval of the day.
type IntervalResult struct {
	Timestamp      string  `json:"timestamp"`
	Price          float64 `json:"price"`
	PvProduction   float64 `json:"pvProduction"`
	PlannedUsage   float64 `json:"plannedUsage"`
	RandomUsage    float64 `json:"randomUsage"`
	NetLoad        float64 `json:"netLoad"`       // signed grid flow, import positive
	BatteryAction  float64 `json:"batteryAction"` // positive = battery discharges
	Soc            float64 `json:"soc"`           // percent of capacity at interval end
	GridEnergy     float64 `json:"gridEnergy"`    // import only
	Cost           float64 `json:"cost"`
	PvSelfConsumed float64 `json:"pvSelfConsumed"`
	PvExported     float64 `json:"pvExported"`
}

// SimulationResult aggregates a full day.
type SimulationResult struct {
	NetUsage        float64          `json:"netUsage"`
	NetCost         float64          `json:"netCost"`
	AvgSoc          float64          `json:"avgSoc"`
	PvSelfConsumed  float64          `json:"pvSelfConsumed"`
	PvExported      float64          `json:"pvExported"`
	ExportRevenue   float64          `json:"exportRevenue"`
	BatteryExported float64          `json:"batteryExported"`
	Intervals       []IntervalResult `json:"intervals"`
}
