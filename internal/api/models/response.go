package models

import "battery-dispatch/internal/model"

// SimulateResponse is model.SimulationResult plus the strategy that
// produced it.
type SimulateResponse struct {
	*model.SimulationResult
	Strategy string `json:"strategy"`
	DtMin    int    `json:"dtMin"`
}

// CompareResponse lists variations cheapest first; failed ones come last.
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains the summary of one variation.
type ComparisonResult struct {
	Name     string       `json:"name"`
	Strategy string       `json:"strategy,omitempty"`
	Summary  *Summary     `json:"summary,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
}

// Summary is a SimulationResult without the intervals.
type Summary struct {
	NetUsage        float64 `json:"netUsage"`
	NetCost         float64 `json:"netCost"`
	AvgSoc          float64 `json:"avgSoc"`
	PvSelfConsumed  float64 `json:"pvSelfConsumed"`
	PvExported      float64 `json:"pvExported"`
	ExportRevenue   float64 `json:"exportRevenue"`
	BatteryExported float64 `json:"batteryExported"`
}

// NewSummary drops the per-interval detail of r.
func NewSummary(r *model.SimulationResult) *Summary {
	return &Summary{
		NetUsage:        r.NetUsage,
		NetCost:         r.NetCost,
		AvgSoc:          r.AvgSoc,
		PvSelfConsumed:  r.PvSelfConsumed,
		PvExported:      r.PvExported,
		ExportRevenue:   r.ExportRevenue,
		BatteryExported: r.BatteryExported,
	}
}

// StrategyInfo represents information about a strategy
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Default     bool            `json:"default,omitempty"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter
type ParameterInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "float", "string"
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// BatteryInfo represents information about a battery preset
type BatteryInfo struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Capacity   float64 `json:"capacity"`
	StartSoc   float64 `json:"startSoc"`
	PowerLimit float64 `json:"powerLimit"`
	GridLimit  float64 `json:"gridLimit"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
