package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"battery-dispatch/internal/api/models"
	"battery-dispatch/internal/config"
)

// BatteryHandler handles battery-related requests
type BatteryHandler struct {
	batteryDir string
	log        zerolog.Logger
}

// NewBatteryHandler creates a new battery handler reading presets from dir.
func NewBatteryHandler(dir string, log zerolog.Logger) *BatteryHandler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	log.Info().Str("dir", dir).Msg("using battery preset directory")
	return &BatteryHandler{batteryDir: dir, log: log}
}

// ListBatteries handles GET /api/v1/batteries
func (h *BatteryHandler) ListBatteries(c *gin.Context) {
	presets, err := config.LoadBatteryPresets(h.batteryDir)
	if err != nil {
		h.log.Error().Err(err).Str("dir", h.batteryDir).Msg("failed to load battery presets")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "PRESETS_UNAVAILABLE", Message: err.Error()},
		})
		return
	}

	batteries := make([]models.BatteryInfo, 0, len(presets))
	for _, p := range presets {
		batteries = append(batteries, models.BatteryInfo{
			ID:         p.ID,
			Name:       p.Battery.Name,
			Capacity:   p.Battery.CapacityKWh,
			StartSoc:   p.Battery.StartSocPercent,
			PowerLimit: p.Battery.PowerLimitKW,
			GridLimit:  p.Battery.GridLimitKW,
		})
	}
	c.JSON(http.StatusOK, gin.H{"batteries": batteries})
}
