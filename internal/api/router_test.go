package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battery-dispatch/internal/api/models"
	"battery-dispatch/internal/config"
	"battery-dispatch/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func alternatingPrices() string {
	var b strings.Builder
	b.WriteString("time;price\n")
	for h := 0; h < 24; h++ {
		price := "0,10"
		if h%2 == 1 {
			price = "0,30"
		}
		fmt.Fprintf(&b, "2024-05-01T%02d:00:00;%s\n", h, price)
	}
	return b.String()
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Server.BatteryDir = filepath.Join("..", "..", "configs", "batteries")
	r, err := NewRouter(cfg, logging.NewWithWriter(&bytes.Buffer{}, "api"), prometheus.NewRegistry())
	require.NoError(t, err)
	return r
}

func post(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func simulateBody(capacity float64) map[string]any {
	return map[string]any{
		"capacity":    capacity,
		"startSoc":    50,
		"powerLimit":  5,
		"gridLimit":   17,
		"dayAheadCsv": alternatingPrices(),
		"actions":     []map[string]any{{"startTime": "18:00", "duration": 60, "power": 2}},
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorDetail {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestSimulate(t *testing.T) {
	r := newTestRouter(t)
	w := post(t, r, "/api/v1/simulate", simulateBody(10))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	for _, key := range []string{"netUsage", "netCost", "avgSoc", "pvSelfConsumed", "pvExported", "exportRevenue", "batteryExported", "intervals"} {
		assert.Contains(t, resp, key)
	}
	assert.Equal(t, "optimal", resp["strategy"])
	assert.Greater(t, resp["batteryExported"].(float64), 0.0)

	intervals := resp["intervals"].([]any)
	require.Len(t, intervals, 24)
	first := intervals[0].(map[string]any)
	assert.Equal(t, "00:00", first["timestamp"])
	for _, key := range []string{"price", "pvProduction", "plannedUsage", "randomUsage", "netLoad", "batteryAction", "soc", "gridEnergy", "cost", "pvSelfConsumed", "pvExported"} {
		assert.Contains(t, first, key)
	}
	assert.InDelta(t, 2.0, intervals[18].(map[string]any)["plannedUsage"], 1e-9)
}

func TestSimulate_ZeroCapacityAndStrategyOverride(t *testing.T) {
	r := newTestRouter(t)
	body := simulateBody(0)
	body["strategy"] = map[string]any{"name": "idle"}
	w := post(t, r, "/api/v1/simulate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "idle", resp.Strategy)
	assert.Equal(t, 60, resp.DtMin)
	assert.Zero(t, resp.BatteryExported)
}

func TestSimulate_Errors(t *testing.T) {
	r := newTestRouter(t)

	missing := simulateBody(10)
	delete(missing, "powerLimit")
	badSoc := simulateBody(10)
	badSoc["startSoc"] = 120
	badDuration := simulateBody(10)
	badDuration["actions"] = []map[string]any{{"startTime": "10:00", "duration": 0, "power": 1}}
	grid50 := simulateBody(10)
	grid50["dayAheadCsv"] = "00:00,0.1\n00:50,0.2\n"
	oneRow := simulateBody(10)
	oneRow["dayAheadCsv"] = "tijdstip,prijs\n00:00,0.1\n"
	malformed := simulateBody(10)
	malformed["dayAheadCsv"] = "00:00,abc\n01:00,0.2\n"
	infeasible := simulateBody(0)
	infeasible["gridLimit"] = 1
	infeasible["actions"] = []map[string]any{{"startTime": "12:00", "duration": 60, "power": 1000}}
	tooLarge := simulateBody(100000)
	tooLarge["powerLimit"] = 100000
	hugeCapacity := simulateBody(1e17)
	unknown := simulateBody(10)
	unknown["strategy"] = map[string]any{"name": "oracle"}

	cases := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"missing power limit", missing, http.StatusBadRequest, "INVALID_REQUEST"},
		{"start soc out of range", badSoc, http.StatusBadRequest, "INVALID_REQUEST"},
		{"zero duration", badDuration, http.StatusBadRequest, "INVALID_REQUEST"},
		{"50 minute grid", grid50, http.StatusBadRequest, "GRID_INCOMPATIBLE"},
		{"one row", oneRow, http.StatusBadRequest, "INSUFFICIENT_DATA"},
		{"malformed", malformed, http.StatusBadRequest, "MALFORMED_INPUT"},
		{"infeasible", infeasible, http.StatusUnprocessableEntity, "CONSTRAINT_INFEASIBLE"},
		{"too large", tooLarge, http.StatusRequestEntityTooLarge, "PROBLEM_TOO_LARGE"},
		{"huge capacity", hugeCapacity, http.StatusRequestEntityTooLarge, "PROBLEM_TOO_LARGE"},
		{"unknown strategy", unknown, http.StatusBadRequest, "INVALID_CONFIG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := post(t, r, "/api/v1/simulate", tc.body)
			require.Equal(t, tc.status, w.Code, w.Body.String())
			detail := decodeError(t, w)
			assert.Equal(t, tc.code, detail.Code)
			assert.NotEmpty(t, detail.Message)
		})
	}
}

func TestLedgerCSV(t *testing.T) {
	r := newTestRouter(t)
	w := post(t, r, "/api/v1/simulate/ledger.csv", simulateBody(10))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 25)
	assert.True(t, strings.HasPrefix(lines[0], "index,timestamp,price"))
}

func TestCompare(t *testing.T) {
	r := newTestRouter(t)
	w := post(t, r, "/api/v1/simulate/compare", map[string]any{
		"base": simulateBody(10),
		"variations": []map[string]any{
			{"name": "no trading", "strategy": map[string]any{"name": "idle"}},
			{"name": "broken", "strategy": map[string]any{"name": "nope"}},
			{"name": "default"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.CompareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Comparison, 3)
	assert.Equal(t, "default", resp.Comparison[0].Name)
	assert.Equal(t, "optimal", resp.Comparison[0].Strategy)
	assert.Equal(t, "no trading", resp.Comparison[1].Name)
	assert.Less(t, resp.Comparison[0].Summary.NetCost, resp.Comparison[1].Summary.NetCost)
	assert.Equal(t, "broken", resp.Comparison[2].Name)
	require.NotNil(t, resp.Comparison[2].Error)
	assert.Equal(t, "INVALID_CONFIG", resp.Comparison[2].Error.Code)

	w = post(t, r, "/api/v1/simulate/compare", map[string]any{"base": simulateBody(10)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompare_NoBatteryVariation(t *testing.T) {
	r := newTestRouter(t)
	w := post(t, r, "/api/v1/simulate/compare", map[string]any{
		"base": simulateBody(10),
		"variations": []map[string]any{
			{"name": "no battery", "battery": map[string]any{"capacity": 0}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.CompareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Comparison, 1)
	require.NotNil(t, resp.Comparison[0].Summary)
	assert.Zero(t, resp.Comparison[0].Summary.BatteryExported)
	assert.Zero(t, resp.Comparison[0].Summary.AvgSoc)

	direct := post(t, r, "/api/v1/simulate", simulateBody(0))
	require.Equal(t, http.StatusOK, direct.Code, direct.Body.String())
	var single models.SimulateResponse
	require.NoError(t, json.Unmarshal(direct.Body.Bytes(), &single))
	assert.Equal(t, single.NetCost, resp.Comparison[0].Summary.NetCost)
}

func TestAnalyzePrices(t *testing.T) {
	r := newTestRouter(t)
	w := post(t, r, "/api/v1/prices/analyze", map[string]any{"dayAheadCsv": alternatingPrices(), "label": "may-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "may-1", resp["label"])
	assert.InDelta(t, 0.1, resp["min"], 1e-9)
	assert.InDelta(t, 0.3, resp["max"], 1e-9)
	assert.InDelta(t, 0.2, resp["mean"], 1e-9)
	assert.Greater(t, resp["arbitrageValue"].(float64), 0.0)

	w = post(t, r, "/api/v1/prices/analyze", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListings(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/api/v1/strategies")
	require.Equal(t, http.StatusOK, w.Code)
	var strategies struct {
		Strategies []models.StrategyInfo `json:"strategies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &strategies))
	require.Len(t, strategies.Strategies, 4)
	assert.Equal(t, "optimal", strategies.Strategies[0].Name)
	assert.True(t, strategies.Strategies[0].Default)

	w = get(r, "/api/v1/batteries")
	require.Equal(t, http.StatusOK, w.Code)
	var batteries struct {
		Batteries []models.BatteryInfo `json:"batteries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batteries))
	ids := make([]string, 0, len(batteries.Batteries))
	for _, b := range batteries.Batteries {
		ids = append(ids, b.ID)
	}
	assert.Contains(t, ids, "home-10kwh")

	assert.Equal(t, http.StatusOK, get(r, "/health").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/health").Code)

	w = get(r, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK, post(t, r, "/api/v1/simulate", simulateBody(10)).Code)

	w := get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `dispatch_simulations_total{outcome="ok",strategy="optimal"} 1`)
	assert.Contains(t, w.Body.String(), "dispatch_simulation_duration_seconds")
}

func TestMetrics_FailedVariationUsesRequestedStrategy(t *testing.T) {
	r := newTestRouter(t)
	w := post(t, r, "/api/v1/simulate/compare", map[string]any{
		"base": simulateBody(10),
		"variations": []map[string]any{
			{"name": "no trading", "strategy": map[string]any{"name": "idle"}, "battery": map[string]any{"startSoc": 0, "gridLimit": 0.001}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := get(r, "/metrics").Body.String()
	assert.Contains(t, body, `dispatch_simulations_total{outcome="constraint_infeasible",strategy="idle"} 1`)
	assert.NotContains(t, body, `strategy="compare"`)
}
