package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus collectors. A dedicated Registerer is
// injected so unit tests can use isolated registries.
type Metrics struct {
	evaluations *prometheus.CounterVec
	redemptions *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discount_evaluations_total",
			Help: "Discount evaluations by outcome (eligible or rejection reason)",
		}, []string{"outcome"}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discount_redemptions_total",
			Help: "Redemption attempts by result",
		}, []string{"result"}),
	}
	reg.MustRegister(m.evaluations, m.redemptions)
	return m
}

func (m *Metrics) ObserveEvaluation(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.evaluations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRedemption(ok bool) {
	result := "rejected"
	if ok {
		result = "committed"
	}
	m.redemptions.WithLabelValues(result).Inc()
}
