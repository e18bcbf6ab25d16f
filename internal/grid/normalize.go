package grid

import (
	"sort"

	"battery-dispatch/internal/model"
)

// DefaultIntervalMin is used when a series has no two distinct timestamps.
const DefaultIntervalMin = 60

// Options tunes normalization. The zero value means a 24-hour day.
type Options struct {
	DayMinutes int
}

// Normalized is the price and PV series resampled onto one grid.
type Normalized struct {
	Grid   model.Grid
	Prices model.UniformSeries
	PV     model.UniformSeries
}

// NativeInterval returns the absolute difference between the first two
// distinct timestamps of a series, or DefaultIntervalMin if there are none.
func NativeInterval(samples []model.TimeSample) int {
	if len(samples) < 2 {
		return DefaultIntervalMin
	}
	first := samples[0].Minute
	for _, s := range samples[1:] {
		if s.Minute != first {
			d := s.Minute - first
			if d < 0 {
				d = -d
			}
			return d
		}
	}
	return DefaultIntervalMin
}

// Normalize parses the day-ahead price CSV (mandatory) and the PV CSV
// (optional, may be empty) and resamples both onto the finer of the two
// native intervals by forward fill.
func Normalize(priceCSV, pvCSV string, opts Options) (*Normalized, error) {
	day := opts.DayMinutes
	if day <= 0 {
		day = model.DefaultDayMinutes
	}

	prices, err := ParseCSV(priceCSV)
	if err != nil {
		return nil, err
	}
	if len(prices) < 2 {
		return nil, model.Errorf(model.KindInsufficientData, "price series needs at least two rows, got %d", len(prices))
	}
	pv, err := ParseCSV(pvCSV)
	if err != nil {
		return nil, err
	}

	priceDt := NativeInterval(prices)
	if day%priceDt != 0 {
		return nil, model.Errorf(model.KindGridIncompatible, "price interval of %d minutes does not divide a %d-minute day", priceDt, day)
	}
	pvDt := priceDt
	if len(pv) > 1 {
		pvDt = NativeInterval(pv)
		if day%pvDt != 0 {
			return nil, model.Errorf(model.KindGridIncompatible, "PV interval of %d minutes does not divide a %d-minute day", pvDt, day)
		}
	}

	dt := min(priceDt, pvDt)
	g := model.Grid{DtMin: dt, IntervalsPerDay: day / dt, DayMinutes: day}
	return &Normalized{
		Grid:   g,
		Prices: ForwardFill(prices, g),
		PV:     ForwardFill(pv, g),
	}, nil
}

// ForwardFill samples the series at every grid point, carrying the most
// recent value at or before the point. Before the earliest sample the first
// input row's value is used. An empty series yields zeros.
func ForwardFill(samples []model.TimeSample, g model.Grid) model.UniformSeries {
	out := make(model.UniformSeries, g.IntervalsPerDay)
	if len(samples) == 0 {
		return out
	}
	sorted := make([]model.TimeSample, len(samples))
	copy(sorted, samples)
	// Stable keeps duplicate timestamps in input order, so the later row wins.
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Minute < sorted[j].Minute })

	last := samples[0].Value
	next := 0
	for i := range out {
		t := i * g.DtMin
		for next < len(sorted) && sorted[next].Minute <= t {
			last = sorted[next].Value
			next++
		}
		out[i] = last
	}
	return out
}
