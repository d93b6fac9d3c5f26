package guard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts guard decisions
type Metrics struct {
	decisions *prometheus.CounterVec
}

// NewMetrics registers the guard collectors with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authui_guard_decisions_total",
				Help: "Total number of route guard decisions",
			},
			[]string{"guard", "action"},
		),
	}
}

func (m *Metrics) observe(name string, d Decision) {
	m.decisions.WithLabelValues(name, d.Action.String()).Inc()
}
