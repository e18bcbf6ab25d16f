package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"battery-dispatch/internal/api/middleware"
	"battery-dispatch/internal/api/models"
	"battery-dispatch/internal/config"
	"battery-dispatch/internal/metrics"
	"battery-dispatch/internal/model"
	"battery-dispatch/internal/simulation"
	"battery-dispatch/internal/strategy"
)

// SimulateHandler handles simulation requests
type SimulateHandler struct {
	opts     simulation.Options
	strategy config.StrategyConfig
	metrics  *metrics.Recorder
	log      zerolog.Logger
}

// NewSimulateHandler creates a new simulate handler. def is used when a
// request names no strategy.
func NewSimulateHandler(opts simulation.Options, def config.StrategyConfig, rec *metrics.Recorder, log zerolog.Logger) *SimulateHandler {
	opts.Logger = &log
	return &SimulateHandler{opts: opts, strategy: def, metrics: rec, log: log}
}

// Simulate handles POST /api/v1/simulate
func (h *SimulateHandler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	o, err := h.run(c, h.toSimulation(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SimulateResponse{
		SimulationResult: o.Result,
		Strategy:         o.Strategy,
		DtMin:            o.Grid.DtMin,
	})
}

// LedgerCSV handles POST /api/v1/simulate/ledger.csv
func (h *SimulateHandler) LedgerCSV(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	o, err := h.run(c, h.toSimulation(req))
	if err != nil {
		writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := simulation.WriteLedger(&buf, o.Result); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="ledger.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Compare handles POST /api/v1/simulate/compare
func (h *SimulateHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	base := h.toSimulation(req.Base)
	variations := make([]simulation.Variation, 0, len(req.Variations))
	for _, v := range req.Variations {
		name, params := v.Strategy.Name, v.Strategy.Params
		if name == "" {
			name, params = base.Strategy, base.StrategyParams
		}
		variations = append(variations, simulation.Variation{
			Name:           v.Name,
			Strategy:       name,
			StrategyParams: params,
			Battery: model.BatteryOverride{
				CapacityKWh:     v.Battery.Capacity,
				StartSocPercent: v.Battery.StartSoc,
				PowerLimitKW:    v.Battery.PowerLimit,
				GridLimitKW:     v.Battery.GridLimit,
			},
		})
	}

	started := time.Now()
	results := simulation.Compare(c.Request.Context(), base, variations, h.opts)
	if err := c.Request.Context().Err(); err != nil {
		writeError(c, err)
		return
	}

	comparison := make([]models.ComparisonResult, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			_, detail := errorDetail(r.Err)
			comparison = append(comparison, models.ComparisonResult{Name: r.Name, Error: &detail})
			h.metrics.CountRun(strategyLabel(r.Strategy), r.Err)
			continue
		}
		comparison = append(comparison, models.ComparisonResult{
			Name:     r.Name,
			Strategy: r.Outcome.Strategy,
			Summary:  models.NewSummary(r.Outcome.Result),
		})
		h.metrics.CountRun(r.Outcome.Strategy, nil)
	}
	h.log.Debug().Int("variations", len(variations)).Dur("took", time.Since(started)).Msg("comparison completed")
	c.JSON(http.StatusOK, models.CompareResponse{Comparison: comparison})
}

func (h *SimulateHandler) run(c *gin.Context, req simulation.Request) (*simulation.Outcome, error) {
	started := time.Now()
	o, err := simulation.Run(c.Request.Context(), req, h.opts)

	name := strategyLabel(req.Strategy)
	if o != nil {
		name = o.Strategy
	}
	h.metrics.ObserveRun(name, time.Since(started), err)
	if err != nil {
		h.log.Warn().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("strategy", name).
			Msg("simulation failed")
	}
	return o, err
}

func (h *SimulateHandler) toSimulation(req models.SimulateRequest) simulation.Request {
	out := simulation.Request{
		Battery: model.BatteryConfig{
			CapacityKWh:     deref(req.Capacity),
			StartSocPercent: deref(req.StartSoc),
			PowerLimitKW:    deref(req.PowerLimit),
			GridLimitKW:     deref(req.GridLimit),
		},
		PriceCSV:       req.DayAheadCsv,
		PVCSV:          req.PvProfileCsv,
		Strategy:       h.strategy.Name,
		StrategyParams: h.strategy.Params,
	}
	if req.Strategy != nil && req.Strategy.Name != "" {
		out.Strategy = req.Strategy.Name
		out.StrategyParams = req.Strategy.Params
	}
	for _, a := range req.Actions {
		out.Actions = append(out.Actions, model.ScheduledAction{
			StartTime:       a.StartTime,
			DurationMinutes: a.Duration,
			PowerKW:         a.Power,
		})
	}
	return out
}

// strategyLabel is the metrics label of a requested strategy name.
func strategyLabel(name string) string {
	if name == "" {
		return strategy.DefaultName
	}
	return name
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
