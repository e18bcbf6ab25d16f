package grid

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"battery-dispatch/internal/model"
)

var (
	lineSplit    = regexp.MustCompile(`\r?\n`)
	timeLabels   = map[string]bool{"tijdstip": true, "time": true}
	valueLabels  = map[string]bool{"prijs": true, "price": true, "productie": true, "production": true}
	datePrefixes = regexp.MustCompile(`[T ]`)
)

// ParseCSV reads a two-column "timestamp,value" series. An optional header row
// is skipped. Rows keep their input order; timestamps need not be sorted.
func ParseCSV(text string) ([]model.TimeSample, error) {
	var lines []string
	for _, l := range lineSplit.Split(strings.TrimSpace(text), -1) {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, nil
	}
	if isHeader(lines[0]) {
		lines = lines[1:]
	}

	out := make([]model.TimeSample, 0, len(lines))
	for i, line := range lines {
		fields := splitRow(line)
		if len(fields) < 2 {
			return nil, model.Errorf(model.KindMalformedInput, "row %d: expected timestamp and value, got %q", i+1, line)
		}
		ts := strings.TrimSpace(fields[0])
		minute, err := MinutesSinceMidnight(ts)
		if err != nil {
			return nil, model.Errorf(model.KindMalformedInput, "row %d: %v", i+1, err)
		}
		v, err := parseDecimal(fields[1])
		if err != nil {
			return nil, model.Errorf(model.KindMalformedInput, "row %d: invalid value %q", i+1, strings.TrimSpace(fields[1]))
		}
		out = append(out, model.TimeSample{Timestamp: ts, Minute: minute, Value: v})
	}
	return out, nil
}

func isHeader(line string) bool {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ';' })
	if len(fields) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(fields[0]))
	second := strings.ToLower(strings.TrimSpace(fields[1]))
	return timeLabels[first] && valueLabels[second]
}

// splitRow splits on ';' when the row uses it, so "12:00;0,25" keeps its
// decimal comma. Otherwise the row is comma separated.
func splitRow(line string) []string {
	if strings.Contains(line, ";") {
		return strings.Split(line, ";")
	}
	return strings.Split(line, ",")
}

func parseDecimal(raw string) (float64, error) {
	s := strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
