package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"battery-dispatch/internal/model"
)

// Recorder records simulation outcomes in Prometheus metrics. A nil
// *Recorder records nothing.
type Recorder struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder registers the simulation metrics on reg. If reg is nil, the
// default registerer is used. Already registered collectors are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_simulations_total",
		Help: "Total number of simulation runs by strategy and outcome",
	}, []string{"strategy", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_simulation_duration_seconds",
		Help:    "Wall time of one simulation run",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	return &Recorder{runs: runs, duration: duration}, nil
}

// ObserveRun counts one run. err is the run's error, nil on success.
func (r *Recorder) ObserveRun(strategy string, took time.Duration, err error) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(strategy, Outcome(err)).Inc()
	r.duration.WithLabelValues(strategy).Observe(took.Seconds())
}

// CountRun counts a run whose duration is not known on its own, such as one
// variation of a comparison.
func (r *Recorder) CountRun(strategy string, err error) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(strategy, Outcome(err)).Inc()
}

// Outcome is the label value for a run's error.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if k := model.KindOf(err); k != "" {
		return strings.ToLower(string(k))
	}
	return "error"
}
