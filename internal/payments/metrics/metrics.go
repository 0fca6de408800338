package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the payments protocol. All
// receiver methods are nil-safe so tests can pass a nil *Metrics.
type Metrics struct {
	RequestsProcessed *prometheus.CounterVec
	DuplicateRequests prometheus.Counter
	WebhookUpdates    *prometheus.CounterVec
	BatchSize         prometheus.Histogram
}

// New creates and registers all payments metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payrail_notifications_processed_total",
			Help: "Notification requests processed, by outcome.",
		}, []string{"outcome"}),
		DuplicateRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payrail_notifications_duplicate_total",
			Help: "Notification requests answered from the idempotency check.",
		}),
		WebhookUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payrail_webhook_updates_total",
			Help: "Webhook status updates, by result.",
		}, []string{"result"}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "payrail_notification_batch_size",
			Help:    "Size of accepted notification batches.",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		}),
	}
}

func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.RequestsProcessed.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordDuplicate() {
	if m == nil {
		return
	}
	m.DuplicateRequests.Inc()
}

func (m *Metrics) RecordWebhookUpdate(result string) {
	if m == nil {
		return
	}
	m.WebhookUpdates.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveBatchSize(n int) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(n))
}
