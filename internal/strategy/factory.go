package strategy

import (
	"fmt"
	"strings"

	"battery-dispatch/internal/model"
)

// DefaultName is used when a request does not name a strategy.
const DefaultName = "optimal"

// Options carries settings that do not come from per-request params.
type Options struct {
	MaxWork float64
}

// Build constructs a strategy by name from loosely typed params (YAML or
// JSON decoded). Battery limits supply the schedule's default powers.
func Build(name string, params map[string]any, batt model.BatteryConfig, opts Options) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "optimal":
		limit := opts.MaxWork
		if limit <= 0 {
			limit = DefaultMaxWork
		}
		// Params may tighten the service limit, never raise it.
		if v := mustNum(params, "max_work", 0); v > 0 && v < limit {
			limit = v
		}
		return NewOptimal(OptimalParams{MaxWork: limit}), nil
	case "greedy":
		return &Greedy{}, nil
	case "idle":
		return &Idle{}, nil
	case "schedule":
		dischargeStart := mustStr(params, "discharge_start", "17:00")
		s, err := NewSchedule(ScheduleParams{
			ChargeStart:      mustStr(params, "charge_start", "10:00"),
			ChargeEnd:        mustStr(params, "charge_end", dischargeStart),
			DischargeStart:   dischargeStart,
			DischargeEnd:     mustStr(params, "discharge_end", "23:59"),
			ChargePowerKW:    mustNum(params, "charge_power_kw", batt.PowerLimitKW),
			DischargePowerKW: mustNum(params, "discharge_power_kw", batt.PowerLimitKW),
		})
		if err != nil {
			return nil, model.Errorf(model.KindInvalidConfig, "schedule strategy: %v", err)
		}
		return s, nil
	default:
		return nil, model.Errorf(model.KindInvalidConfig, "unsupported strategy: %q", name)
	}
}

// Names lists the strategies Build understands.
func Names() []string {
	return []string{"optimal", "greedy", "schedule", "idle"}
}

func mustNum(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok && v != nil {
		switch x := v.(type) {
		case float64:
			return x
		case float32:
			return float64(x)
		case int:
			return float64(x)
		case int64:
			return float64(x)
		case string:
			var f float64
			if _, err := fmt.Sscanf(x, "%g", &f); err == nil {
				return f
			}
		}
	}
	return def
}

func mustStr(m map[string]any, key string, def string) string {
	if v, ok := m[key]; ok && v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return def
}
