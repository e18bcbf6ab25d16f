package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"battery-dispatch/internal/analysis"
	"battery-dispatch/internal/api/models"
	"battery-dispatch/internal/grid"
)

// PriceHandler handles price analysis requests
type PriceHandler struct {
	opts grid.Options
}

func NewPriceHandler(opts grid.Options) *PriceHandler {
	return &PriceHandler{opts: opts}
}

// Analyze handles POST /api/v1/prices/analyze
func (h *PriceHandler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	label := req.Label
	if label == "" {
		label = "day-ahead"
	}
	p, err := analysis.AnalyzePrices(label, req.DayAheadCsv, h.opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
