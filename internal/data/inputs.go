package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"battery-dispatch/internal/analysis"
	"battery-dispatch/internal/model"
)

// ReadCSV returns a price or PV file as text. An empty path yields "".
func ReadCSV(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(raw), nil
}

type actionJSON struct {
	StartTime string  `json:"startTime"`
	Duration  float64 `json:"duration"`
	Power     float64 `json:"power"`
}

// LoadActions reads scheduled actions from a JSON array in the request
// shape: [{"startTime":"HH:MM","duration":minutes,"power":kW}].
func LoadActions(path string) ([]model.ScheduledAction, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read actions file: %w", err)
	}
	var in []actionJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("failed to parse actions file: %w", err)
	}
	out := make([]model.ScheduledAction, 0, len(in))
	for _, a := range in {
		out = append(out, model.ScheduledAction{
			StartTime:       a.StartTime,
			DurationMinutes: a.Duration,
			PowerKW:         a.Power,
		})
	}
	return out, nil
}

// LoadPriceDays reads price CSVs from files or directories. Directories
// contribute their *.csv files in name order; labels are file names
// without extension.
func LoadPriceDays(paths []string) ([]analysis.PriceDay, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
				names = append(names, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(names)
		files = append(files, names...)
	}

	out := make([]analysis.PriceDay, 0, len(files))
	for _, f := range files {
		text, err := ReadCSV(f)
		if err != nil {
			return nil, err
		}
		label := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		out = append(out, analysis.PriceDay{Label: label, CSV: text})
	}
	return out, nil
}

// SplitPaths splits a comma-separated list, dropping blanks.
func SplitPaths(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
