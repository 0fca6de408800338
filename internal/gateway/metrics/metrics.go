package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus instruments for outbound dispatches. Receiver
// methods are nil-safe for tests.
type Metrics struct {
	Dispatches *prometheus.CounterVec
}

// New creates and registers all gateway metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		Dispatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payrail_gateway_dispatches_total",
			Help: "Outbound counterparty calls, by party, operation and outcome.",
		}, []string{"party", "operation", "outcome"}),
	}
}

func (m *Metrics) RecordDispatch(party, operation, outcome string) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(party, operation, outcome).Inc()
}
