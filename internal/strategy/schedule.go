package strategy

import (
	"fmt"
	"math"
	"strings"

	"battery-dispatch/internal/flow"
	"battery-dispatch/internal/grid"
)

// ScheduleParams implements a simple daily time-window strategy:
// - Charge from the grid during [ChargeStart, ChargeEnd)
// - Discharge to the grid during [DischargeStart, DischargeEnd)
// - Otherwise no trading
//
// Requests are clipped to what the battery and grid allow in each interval.
type ScheduleParams struct {
	ChargeStart      string  // "HH:MM"
	ChargeEnd        string  // "HH:MM" (optional; default = DischargeStart)
	DischargeStart   string  // "HH:MM"
	DischargeEnd     string  // "HH:MM" (optional; default = DischargeStart => zero-length)
	ChargePowerKW    float64 // magnitude
	DischargePowerKW float64 // magnitude
}

type ScheduleStrategy struct {
	Params ScheduleParams

	csMins int
	ceMins int
	dsMins int
	deMins int
}

// NewSchedule validates the window times up front.
func NewSchedule(params ScheduleParams) (*ScheduleStrategy, error) {
	s := &ScheduleStrategy{Params: params}
	var err error
	if s.csMins, err = parseHHMM(params.ChargeStart); err != nil {
		return nil, err
	}
	if s.dsMins, err = parseHHMM(params.DischargeStart); err != nil {
		return nil, err
	}
	s.ceMins = s.dsMins
	if strings.TrimSpace(params.ChargeEnd) != "" {
		if s.ceMins, err = parseHHMM(params.ChargeEnd); err != nil {
			return nil, err
		}
	}
	s.deMins = s.dsMins
	if strings.TrimSpace(params.DischargeEnd) != "" {
		if s.deMins, err = parseHHMM(params.DischargeEnd); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *ScheduleStrategy) Name() string { return "schedule" }

func (s *ScheduleStrategy) Plan(p Problem) ([]float64, error) {
	l := p.Limits()
	h := p.Grid.HoursPerInterval()

	soc := p.Battery.StartSocKWh()
	deltas := make([]float64, p.Grid.IntervalsPerDay)
	for i := range deltas {
		f := flow.Decompose(p.PV[i], p.Usage.Gross(i), soc, l)
		lo, hi, ok := flow.Range(f, l)
		if !ok {
			return nil, infeasibleAt(p, i)
		}
		want := 0.0
		// Minutes since the start of the horizon, below Grid.DayMinutes.
		mins := i * p.Grid.DtMin
		if inWindow(mins, s.csMins, s.ceMins) {
			want = math.Abs(s.Params.ChargePowerKW) * h
		} else if inWindow(mins, s.dsMins, s.deMins) {
			want = -math.Abs(s.Params.DischargePowerKW) * h
		}
		deltas[i] = flow.Clip(want, lo, hi)
		soc = flow.Apply(f, deltas[i], l)
	}
	return deltas, nil
}

func parseHHMM(s string) (int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return grid.MinutesSinceMidnight(s)
}

// inWindow checks whether tMins is in [start, end) on a 24h clock.
// If start == end, the window is empty (always false).
// If start < end, it's a normal same-day window.
// If start > end, it wraps across midnight.
func inWindow(tMins, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return tMins >= start && tMins < end
	}
	// wrap
	return tMins >= start || tMins < end
}
