package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battery-dispatch/internal/flow"
	"battery-dispatch/internal/load"
	"battery-dispatch/internal/model"
)

// quietProblem is an hourly day of len(prices) intervals with no load and no PV.
func quietProblem(prices []float64, batt model.BatteryConfig) Problem {
	n := len(prices)
	return Problem{
		Grid:    model.Grid{DtMin: 60, IntervalsPerDay: n, DayMinutes: 60 * n},
		Prices:  prices,
		PV:      make(model.UniformSeries, n),
		Usage:   load.Usage{Random: make(model.UniformSeries, n), Planned: make(model.UniformSeries, n)},
		Battery: batt,
	}
}

var smallBattery = model.BatteryConfig{CapacityKWh: 1, StartSocPercent: 0, PowerLimitKW: 1, GridLimitKW: 10}

func TestOptimal_BuysLowSellsHigh(t *testing.T) {
	sol, err := NewOptimal(OptimalParams{}).Solve(quietProblem([]float64{0.1, 0.3}, smallBattery))
	require.NoError(t, err)
	require.Len(t, sol.Deltas, 2)
	// Grid charging stops at the corridor top (80% of capacity).
	assert.InDelta(t, 0.8, sol.Deltas[0], 1e-9)
	assert.InDelta(t, -0.8, sol.Deltas[1], 1e-9)
	assert.InDelta(t, 0.16, sol.Value, 1e-9)
}

func TestOptimal_TiesPickFirstDeltaInScanOrder(t *testing.T) {
	batt := smallBattery
	batt.StartSocPercent = 50
	deltas, err := NewOptimal(OptimalParams{}).Plan(quietProblem([]float64{0}, batt))
	require.NoError(t, err)
	// Every decision is worth zero; the scan starts at the most negative delta.
	assert.InDelta(t, -0.5, deltas[0], 1e-9)
}

func TestOptimal_ZeroCapacityNeverTrades(t *testing.T) {
	batt := model.BatteryConfig{CapacityKWh: 0, StartSocPercent: 50, PowerLimitKW: 5, GridLimitKW: 17}
	deltas, err := NewOptimal(OptimalParams{}).Plan(quietProblem([]float64{0.1, 0.3, 0.1, 0.3}, batt))
	require.NoError(t, err)
	for i, d := range deltas {
		assert.Zero(t, d, "interval %d", i)
	}
}

func TestOptimal_ConstraintInfeasible(t *testing.T) {
	batt := model.BatteryConfig{CapacityKWh: 0, PowerLimitKW: 5, GridLimitKW: 1}
	p := quietProblem([]float64{0.1, 0.2}, batt)
	p.Usage.Planned[1] = 1000
	_, err := NewOptimal(OptimalParams{}).Plan(p)
	require.Error(t, err)
	assert.Equal(t, model.KindConstraintInfeasible, model.KindOf(err))
}

func TestOptimal_ProblemTooLarge(t *testing.T) {
	batt := model.BatteryConfig{CapacityKWh: 100000, PowerLimitKW: 100000, GridLimitKW: 10}
	_, err := NewOptimal(OptimalParams{}).Plan(quietProblem([]float64{0.1, 0.2}, batt))
	assert.Equal(t, model.KindProblemTooLarge, model.KindOf(err))
}

func TestOptimal_HugeBatteryIsRejected(t *testing.T) {
	cases := map[string]model.BatteryConfig{
		"capacity":    {CapacityKWh: 1e17, StartSocPercent: 50, PowerLimitKW: 5, GridLimitKW: 17},
		"power limit": {CapacityKWh: 1, StartSocPercent: 50, PowerLimitKW: 1e20, GridLimitKW: 17},
	}
	for name, batt := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewOptimal(OptimalParams{}).Plan(quietProblem([]float64{0.1, 0.3}, batt))
			require.Error(t, err)
			assert.Equal(t, model.KindProblemTooLarge, model.KindOf(err))
		})
	}
}

func TestOptimal_BatteryCoversLoadAboveGridLimit(t *testing.T) {
	// 3 kWh of load against a 2 kWh grid limit is only feasible because the
	// battery can cover the difference.
	batt := model.BatteryConfig{CapacityKWh: 2, StartSocPercent: 100, PowerLimitKW: 2, GridLimitKW: 2}
	p := quietProblem([]float64{0.2, 0.2}, batt)
	p.Usage.Planned[1] = 3
	deltas, err := NewOptimal(OptimalParams{}).Plan(p)
	require.NoError(t, err)
	require.Len(t, deltas, 2)
}

// realizedProfit walks deltas along the continuous SoC, requiring every step
// to be feasible, and returns the day's trading profit.
func realizedProfit(t *testing.T, p Problem, deltas []float64) float64 {
	t.Helper()
	l := p.Limits()
	soc := p.Battery.StartSocKWh()
	profit := 0.0
	for i, d := range deltas {
		f := flow.Decompose(p.PV[i], p.Usage.Gross(i), soc, l)
		require.True(t, flow.Feasible(f, d, l), "interval %d delta %.3f soc %.5f", i, d, soc)
		profit -= (f.NetAfterEigen + d) * p.Prices[i]
		soc = flow.Apply(f, d, l)
	}
	return profit
}

func TestOptimal_OffGridStartMatchesBackwardValue(t *testing.T) {
	// 33.333% of 3 kWh is 0.99999 kWh, between two discretized states.
	batt := model.BatteryConfig{CapacityKWh: 3, StartSocPercent: 33.333, PowerLimitKW: 1, GridLimitKW: 10}
	p := quietProblem([]float64{0.1, 0.3, 0.05, 0.25, 0.2, 0.4}, batt)
	p.Usage.Planned[1] = 0.4
	p.Usage.Planned[4] = 0.7
	p.PV[2] = 0.6
	p.PV[3] = 0.3

	sol, err := NewOptimal(OptimalParams{}).Solve(p)
	require.NoError(t, err)

	// Two SoC steps priced at the day's maximum.
	const tolerance = 2 * model.SocStepKWh * 0.4
	assert.InDelta(t, sol.Value, realizedProfit(t, p, sol.Deltas), tolerance)
}

func TestOptimal_StartAboveCorridorSellsOnlyTheExcess(t *testing.T) {
	// 81.111% of 3 kWh is 2.43333 kWh, just above the 2.4 kWh corridor top.
	batt := model.BatteryConfig{CapacityKWh: 3, StartSocPercent: 81.111, PowerLimitKW: 1, GridLimitKW: 10}
	p := quietProblem([]float64{0.5, 0.1}, batt)

	sol, err := NewOptimal(OptimalParams{}).Solve(p)
	require.NoError(t, err)
	assert.InDelta(t, -0.03, sol.Deltas[0], 1e-9)

	l := p.Limits()
	f := flow.Decompose(0, 0, batt.StartSocKWh(), l)
	assert.GreaterOrEqual(t, flow.Apply(f, sol.Deltas[0], l), l.TradeMaxKWh)
	assert.False(t, flow.Feasible(f, sol.Deltas[0]-model.SocStepKWh, l))

	assert.InDelta(t, sol.Value, realizedProfit(t, p, sol.Deltas), model.SocStepKWh*0.5)
}

func TestGreedy_MeanPriceThreshold(t *testing.T) {
	deltas, err := (&Greedy{}).Plan(quietProblem([]float64{0.1, 0.3}, smallBattery))
	require.NoError(t, err)
	assert.InDelta(t, 0.8, deltas[0], 1e-9)
	assert.InDelta(t, -0.8, deltas[1], 1e-9)
}

func TestGreedy_Infeasible(t *testing.T) {
	batt := model.BatteryConfig{CapacityKWh: 0, PowerLimitKW: 5, GridLimitKW: 1}
	p := quietProblem([]float64{0.1, 0.2}, batt)
	p.Usage.Planned[0] = 50
	_, err := (&Greedy{}).Plan(p)
	assert.Equal(t, model.KindConstraintInfeasible, model.KindOf(err))
}

func TestIdle_NoTrading(t *testing.T) {
	batt := smallBattery
	batt.StartSocPercent = 50
	deltas, err := (&Idle{}).Plan(quietProblem([]float64{0.1, 0.3, 0.2}, batt))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, deltas)
}

func TestSchedule_Windows(t *testing.T) {
	s, err := NewSchedule(ScheduleParams{
		ChargeStart: "00:00", ChargeEnd: "01:00",
		DischargeStart: "01:00", DischargeEnd: "02:00",
		ChargePowerKW: 0.5, DischargePowerKW: 0.5,
	})
	require.NoError(t, err)
	deltas, err := s.Plan(quietProblem([]float64{0.1, 0.3, 0.2}, smallBattery))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, deltas[0], 1e-9)
	assert.InDelta(t, -0.5, deltas[1], 1e-9)
	assert.Zero(t, deltas[2])
}

func TestSchedule_ClipsToCorridor(t *testing.T) {
	s, err := NewSchedule(ScheduleParams{ChargeStart: "00:00", ChargeEnd: "02:00", DischargeStart: "02:00", ChargePowerKW: 5})
	require.NoError(t, err)
	deltas, err := s.Plan(quietProblem([]float64{0.1, 0.1}, smallBattery))
	require.NoError(t, err)
	assert.InDelta(t, 0.8, deltas[0], 1e-9)
	assert.InDelta(t, 0, deltas[1], 1e-9)
}

func TestSchedule_ShortHorizon(t *testing.T) {
	// Two hourly intervals make up a 120 minute horizon.
	p := quietProblem([]float64{0.1, 0.3}, smallBattery)
	require.Equal(t, 120, p.Grid.DayMinutes)

	s, err := NewSchedule(ScheduleParams{
		ChargeStart: "23:00", ChargeEnd: "01:00",
		DischargeStart: "01:00", DischargeEnd: "02:00",
		ChargePowerKW: 0.5, DischargePowerKW: 0.5,
	})
	require.NoError(t, err)
	deltas, err := s.Plan(p)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, deltas[0], 1e-9)
	assert.InDelta(t, -0.5, deltas[1], 1e-9)
}

func TestInWindow(t *testing.T) {
	assert.True(t, inWindow(600, 600, 660))
	assert.False(t, inWindow(660, 600, 660))
	assert.False(t, inWindow(600, 600, 600))
	assert.True(t, inWindow(1400, 1380, 60))
	assert.True(t, inWindow(30, 1380, 60))
	assert.False(t, inWindow(120, 1380, 60))
}

func TestBuild(t *testing.T) {
	for _, name := range Names() {
		s, err := Build(name, nil, smallBattery, Options{})
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
	}

	s, err := Build("", nil, smallBattery, Options{MaxWork: 10})
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.(*Optimal).Params.MaxWork)

	s, err = Build("optimal", map[string]any{"max_work": 1e12}, smallBattery, Options{MaxWork: 10})
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.(*Optimal).Params.MaxWork)

	s, err = Build("optimal", map[string]any{"max_work": 5}, smallBattery, Options{})
	require.NoError(t, err)
	assert.Equal(t, 5.0, s.(*Optimal).Params.MaxWork)

	_, err = Build("oracle", nil, smallBattery, Options{})
	assert.Equal(t, model.KindInvalidConfig, model.KindOf(err))

	_, err = Build("schedule", map[string]any{"charge_start": "25:00"}, smallBattery, Options{})
	assert.Equal(t, model.KindInvalidConfig, model.KindOf(err))
}
