package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job outcomes
const (
	OutcomeAcked      = "acked"
	OutcomeRetried    = "retried"
	OutcomeDeadLetter = "dead_lettered"
	OutcomeUnknown    = "unknown_type"
	OutcomeMalformed  = "malformed"
)

// Metrics holds the pipeline's Prometheus collectors
type Metrics struct {
	WebhooksReceived  *prometheus.CounterVec
	JobsProcessed     *prometheus.CounterVec
	ReconcileDuration *prometheus.HistogramVec
	ItemsReconciled   *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WebhooksReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopify_insights",
			Name:      "webhooks_received_total",
			Help:      "Webhook requests by HTTP status.",
		}, []string{"status"}),
		JobsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopify_insights",
			Name:      "jobs_processed_total",
			Help:      "Queue jobs by type and outcome.",
		}, []string{"type", "outcome"}),
		ReconcileDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopify_insights",
			Name:      "reconcile_duration_seconds",
			Help:      "Time spent reconciling one job.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		ItemsReconciled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopify_insights",
			Name:      "items_reconciled_total",
			Help:      "Entities upserted by type.",
		}, []string{"type"}),
	}
}

// NewNop returns collectors registered on a private registry
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveReconcile records the duration of one reconcile call
func (m *Metrics) ObserveReconcile(jobType string, start time.Time) {
	m.ReconcileDuration.WithLabelValues(jobType).Observe(time.Since(start).Seconds())
}
