package model

// DefaultDayMinutes is the length of the optimization horizon.
const DefaultDayMinutes = 24 * 60

// TimeSample is one parsed row of a price or production series.
type TimeSample struct {
	Timestamp string
	Minute    int
	Value     float64
}

// UniformSeries holds one value per interval of the day.
type UniformSeries []float64

// Grid is the uniform time axis all series are resampled onto.
type Grid struct {
	DtMin           int
	IntervalsPerDay int
	DayMinutes      int
}

// HoursPerInterval converts kW to kWh for one interval.
func (g Grid) HoursPerInterval() float64 {
	return float64(g.DtMin) / 60
}

// ScheduledAction is an operator-declared constant-power load active over
// [StartTime, StartTime+DurationMinutes).
type ScheduledAction struct {
	StartTime       string  // "HH:MM"
	DurationMinutes float64 // > 0
	PowerKW         float64
}
