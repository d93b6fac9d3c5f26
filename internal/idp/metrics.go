package idp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes
const (
	OutcomeSuccess       = "success"
	OutcomeError         = "error"
	OutcomeBadStatus     = "bad_status"
	OutcomeNotConfigured = "not_configured"
	OutcomeCached        = "cached"
)

// Metrics counts identity provider requests by outcome
type Metrics struct {
	requests *prometheus.CounterVec
}

// NewMetrics registers the identity provider collectors with reg. A nil
// reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "authui_idp_requests_total",
				Help: "Total number of identity provider sign-in experience lookups",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}
