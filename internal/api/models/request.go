package models

// SimulateRequest is the body of POST /api/v1/simulate.
type SimulateRequest struct {
	Capacity     *float64        `json:"capacity" binding:"required,gte=0"`
	StartSoc     *float64        `json:"startSoc" binding:"required,gte=0,lte=100"`
	PowerLimit   *float64        `json:"powerLimit" binding:"required,gt=0"`
	GridLimit    *float64        `json:"gridLimit" binding:"required,gt=0"`
	DayAheadCsv  string          `json:"dayAheadCsv" binding:"required"`
	PvProfileCsv string          `json:"pvProfileCsv,omitempty"`
	Actions      []ActionRequest `json:"actions" binding:"dive"`

	// Strategy defaults to the service's configured strategy.
	Strategy *StrategyConfig `json:"strategy,omitempty"`
}

// ActionRequest is one scheduled constant-power load.
type ActionRequest struct {
	StartTime string  `json:"startTime" binding:"required"` // HH:MM
	Duration  float64 `json:"duration" binding:"gt=0"`      // minutes
	Power     float64 `json:"power"`                        // kW
}

// StrategyConfig names a strategy and its parameters.
type StrategyConfig struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

// CompareRequest runs one input against several variations.
type CompareRequest struct {
	Base       SimulateRequest `json:"base"`
	Variations []Variation     `json:"variations" binding:"required,min=1,dive"`
}

// Variation overrides the base request's strategy and battery. Omitted battery
// fields inherit the base.
type Variation struct {
	Name     string          `json:"name" binding:"required"`
	Strategy StrategyConfig  `json:"strategy"`
	Battery  BatteryOverride `json:"battery,omitempty"`
}

// BatteryOverride holds the battery fields a variation may change.
type BatteryOverride struct {
	Capacity   *float64 `json:"capacity,omitempty" binding:"omitempty,gte=0"`
	StartSoc   *float64 `json:"startSoc,omitempty" binding:"omitempty,gte=0,lte=100"`
	PowerLimit *float64 `json:"powerLimit,omitempty" binding:"omitempty,gt=0"`
	GridLimit  *float64 `json:"gridLimit,omitempty" binding:"omitempty,gt=0"`
}

// AnalyzeRequest is the body of POST /api/v1/prices/analyze.
type AnalyzeRequest struct {
	DayAheadCsv string `json:"dayAheadCsv" binding:"required"`
	Label       string `json:"label,omitempty"`
}
