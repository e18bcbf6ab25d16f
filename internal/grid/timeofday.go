package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesSinceMidnight resolves "HH:MM" or an ISO-like "2024-01-01T13:00:00"
// / "2024-01-01 13:00" timestamp to minutes since midnight.
func MinutesSinceMidnight(ts string) (int, error) {
	parts := datePrefixes.Split(strings.TrimSpace(ts), -1)
	timePart := parts[len(parts)-1]
	if len(timePart) > 5 {
		timePart = timePart[:5]
	}
	hm := strings.SplitN(timePart, ":", 3)
	if len(hm) < 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", ts)
	}
	h, err := strconv.Atoi(hm[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", ts)
	}
	m, err := strconv.Atoi(hm[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", ts)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", ts)
	}
	return h*60 + m, nil
}

// FormatHHMM renders a grid point back to "HH:MM".
func FormatHHMM(idx, dtMin int) string {
	total := idx * dtMin
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
