package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"battery-dispatch/internal/model"
)

// SaveResult writes a simulation result as indented JSON.
func SaveResult(res *model.SimulationResult, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	raw, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := os.WriteFile(filePath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	return nil
}

// LoadResult reads a result written by SaveResult.
func LoadResult(filePath string) (*model.SimulationResult, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	var res model.SimulationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("failed to parse result file: %w", err)
	}
	return &res, nil
}
