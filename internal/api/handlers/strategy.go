package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"battery-dispatch/internal/api/models"
	"battery-dispatch/internal/strategy"
)

// StrategyHandler handles strategy-related requests
type StrategyHandler struct {
	defaultName string
	maxWork     float64
}

// NewStrategyHandler creates a new strategy handler
func NewStrategyHandler(defaultName string, maxWork float64) *StrategyHandler {
	if defaultName == "" {
		defaultName = strategy.DefaultName
	}
	if maxWork <= 0 {
		maxWork = strategy.DefaultMaxWork
	}
	return &StrategyHandler{defaultName: defaultName, maxWork: maxWork}
}

// ListStrategies handles GET /api/v1/strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	strategies := []models.StrategyInfo{
		{
			Name:        "optimal",
			Description: "Perfect foresight optimizer. Dynamic programming over the state of charge in 0.01 kWh steps maximizes the day's trading profit.",
			Parameters: []models.ParameterInfo{
				{
					Name:        "max_work",
					Type:        "float",
					Description: "Upper bound on intervals x states x delta steps; may only lower the service limit",
					Default:     h.maxWork,
				},
			},
		},
		{
			Name:        "greedy",
			Description: "Charges as much as allowed below the day's mean price and discharges above it.",
			Parameters:  []models.ParameterInfo{},
		},
		{
			Name:        "schedule",
			Description: "Time-based schedule strategy. Charges and discharges at fixed times of day, clipped to the battery and grid limits.",
			Parameters: []models.ParameterInfo{
				{Name: "charge_start", Type: "string", Description: "Start time for charging (HH:MM)", Default: "10:00"},
				{Name: "charge_end", Type: "string", Description: "End time for charging (HH:MM), defaults to discharge_start"},
				{Name: "discharge_start", Type: "string", Description: "Start time for discharging (HH:MM)", Default: "17:00"},
				{Name: "discharge_end", Type: "string", Description: "End time for discharging (HH:MM)", Default: "23:59"},
				{Name: "charge_power_kw", Type: "float", Description: "Charge power in kW, defaults to the power limit"},
				{Name: "discharge_power_kw", Type: "float", Description: "Discharge power in kW, defaults to the power limit"},
			},
		},
		{
			Name:        "idle",
			Description: "Never trades with the grid; only PV self-use moves the battery.",
			Parameters:  []models.ParameterInfo{},
		},
	}
	for i := range strategies {
		strategies[i].Default = strategies[i].Name == h.defaultName
	}
	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}
