package model

// Action is a human-friendly battery mode for an interval.
// Keep these values stable; they are intended for CSV output.
type Action string

const (
	ActionCharging    Action = "CHARGING"
	ActionIdle        Action = "IDLE"
	ActionDischarging Action = "DISCHARGING"
)

// ActionFromBatteryKWh maps a signed battery action (positive = energy
// leaving the battery) to an Action. Magnitudes below half a reporting
// unit count as idle.
func ActionFromBatteryKWh(kwh float64) Action {
	switch {
	case kwh <= -0.0005:
		return ActionCharging
	case kwh >= 0.0005:
		return ActionDischarging
	default:
		return ActionIdle
	}
}
