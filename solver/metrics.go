package solver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts integrator work, labelled by backend name.
type Metrics struct {
	Evaluations *prometheus.CounterVec
	Steps       *prometheus.CounterVec
	StepSize    *prometheus.HistogramVec
}

// NewMetrics creates the solver metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobamm_solver_rhs_evaluations_total",
				Help: "Total number of right-hand-side evaluations",
			},
			[]string{"method"},
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobamm_solver_steps_total",
				Help: "Total number of integration steps by outcome",
			},
			[]string{"method", "outcome"},
		),
		StepSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobamm_solver_step_size",
				Help:    "Size of accepted integration steps",
				Buckets: prometheus.ExponentialBuckets(1e-9, 10, 12),
			},
			[]string{"method"},
		),
	}
	for _, c := range []prometheus.Collector{m.Evaluations, m.Steps, m.StepSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) evaluated(method string) {
	if m != nil {
		m.Evaluations.WithLabelValues(method).Inc()
	}
}

func (m *Metrics) accepted(method string, h float64) {
	if m != nil {
		m.Steps.WithLabelValues(method, "accepted").Inc()
		m.StepSize.WithLabelValues(method).Observe(h)
	}
}

func (m *Metrics) rejected(method string) {
	if m != nil {
		m.Steps.WithLabelValues(method, "rejected").Inc()
	}
}
