package strategy

import (
	"math"

	"battery-dispatch/internal/flow"
	"battery-dispatch/internal/model"
)

// DefaultMaxWork bounds intervals × states × delta steps of one backward pass.
const DefaultMaxWork = 2e9

// OptimalParams tunes the dynamic-programming optimizer.
type OptimalParams struct {
	// MaxWork rejects batteries whose DP would be intractable.
	MaxWork float64
}

// Optimal maximizes the day's net trading profit with a backward DP over SoC
// discretized in model.SocStepKWh steps, then re-derives the policy along the
// real, continuous SoC trajectory.
type Optimal struct {
	Params OptimalParams
}

// Solution is the optimizer's output.
type Solution struct {
	Deltas []float64
	// Value is the DP's expected net profit (export revenue minus import
	// cost) of the real starting SoC.
	Value float64
}

func NewOptimal(params OptimalParams) *Optimal {
	if params.MaxWork <= 0 {
		params.MaxWork = DefaultMaxWork
	}
	return &Optimal{Params: params}
}

func (s *Optimal) Name() string { return "optimal" }

func (s *Optimal) Plan(p Problem) ([]float64, error) {
	sol, err := s.Solve(p)
	if err != nil {
		return nil, err
	}
	return sol.Deltas, nil
}

// Solve runs the backward pass and the policy extraction.
func (s *Optimal) Solve(p Problem) (*Solution, error) {
	l := p.Limits()
	n := p.Grid.IntervalsPerDay

	work := float64(n) * p.Battery.StateCount() * (2*l.DeltaStepCount() + 1)
	if !(work <= s.Params.MaxWork) {
		return nil, model.Errorf(model.KindProblemTooLarge,
			"optimizer would evaluate %.3g transitions (limit %.3g); reduce capacity or power limit", work, s.Params.MaxWork)
	}
	k := l.MaxDeltaSteps()

	dp := backward(p, l, k)

	soc := p.Battery.StartSocKWh()
	deltas := make([]float64, n)
	value := 0.0
	for i := 0; i < n; i++ {
		f := flow.Decompose(p.PV[i], p.Usage.Gross(i), soc, l)
		delta, v := bestDelta(f, p.Prices[i], dp[i+1], l, k)
		if math.IsInf(v, -1) {
			return nil, infeasibleAt(p, i)
		}
		if i == 0 {
			value = v
		}
		deltas[i] = delta
		soc = flow.Apply(f, delta, l)
	}
	return &Solution{Deltas: deltas, Value: value}, nil
}

// backward fills dp[i][j], the best profit from interval i to the end of the
// day starting at SoC j*SocStepKWh. dp[n] is zero: leftover energy has no value.
func backward(p Problem, l flow.Limits, k int) [][]float64 {
	n := p.Grid.IntervalsPerDay
	dp := make([][]float64, n+1)
	dp[n] = make([]float64, l.NumStates)
	for i := n - 1; i >= 0; i-- {
		dp[i] = make([]float64, l.NumStates)
		for j := range dp[i] {
			f := flow.Decompose(p.PV[i], p.Usage.Gross(i), float64(j)*model.SocStepKWh, l)
			_, dp[i][j] = bestDelta(f, p.Prices[i], dp[i+1], l, k)
		}
	}
	return dp
}

// bestDelta scans deltas in increasing order; the first maximum wins ties.
// It returns -Inf when no feasible delta leads to a reachable state.
func bestDelta(f flow.Flow, price float64, next []float64, l flow.Limits, k int) (float64, float64) {
	best := math.Inf(-1)
	chosen := 0.0
	for step := -k; step <= k; step++ {
		delta := float64(step) * model.SocStepKWh
		if !flow.Feasible(f, delta, l) {
			continue
		}
		v := -(f.NetAfterEigen+delta)*price + next[flow.StateIndex(f.SocAfterEigen+delta)]
		if v > best {
			best = v
			chosen = delta
		}
	}
	return chosen, best
}
