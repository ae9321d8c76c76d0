package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records solve outcomes in Prometheus metrics.
type PromSink struct {
	solves   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	built    *prometheus.HistogramVec
}

// NewPromSink registers solve metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tnep_solves_total",
		Help: "Total number of TNEP solves",
	}, []string{"model", "solver", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tnep_solve_duration_seconds",
		Help:    "Wall-clock time spent in the solver",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"model", "solver", "status"})
	built := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tnep_built_branches",
		Help:    "Number of candidate branches selected per solve",
		Buckets: prometheus.LinearBuckets(0, 2, 10),
	}, []string{"model", "solver"})

	if err := reg.Register(solves); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solves = are.ExistingCollector.(*prometheus.CounterVec)
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
	if err := reg.Register(built); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			built = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{solves: solves, duration: duration, built: built}, nil
}

// RecordSolve increments the solve counter and observes the duration.
func (s *PromSink) RecordSolve(rec SolveRecord) error {
	s.solves.WithLabelValues(rec.Model, rec.Solver, rec.Status).Inc()
	s.duration.WithLabelValues(rec.Model, rec.Solver, rec.Status).Observe(rec.Duration.Seconds())
	s.built.WithLabelValues(rec.Model, rec.Solver).Observe(float64(rec.Built))
	return nil
}
