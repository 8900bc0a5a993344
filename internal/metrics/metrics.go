// Package metrics holds the Prometheus collectors of the payment service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	processed          *prometheus.CounterVec
	settlementDuration prometheus.Histogram
	validationFailures *prometheus.CounterVec
	refunds            prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_processed_total",
			Help: "Payment processing attempts by outcome.",
		}, []string{"outcome"}),
		settlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "payment_settlement_duration_seconds",
			Help:    "Time spent in the settlement step.",
			Buckets: prometheus.DefBuckets,
		}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_validation_failures_total",
			Help: "Rejected payment requests by error kind.",
		}, []string{"kind"}),
		refunds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payment_refunds_total",
			Help: "Payments moved to REFUNDED.",
		}),
	}

	reg.MustRegister(m.processed, m.settlementDuration, m.validationFailures, m.refunds)
	return m
}

// The recording methods are safe on a nil *Metrics.

func (m *Metrics) Processed(outcome string) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSettlement(d time.Duration) {
	if m == nil {
		return
	}
	m.settlementDuration.Observe(d.Seconds())
}

func (m *Metrics) ValidationFailure(kind string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) Refunded() {
	if m == nil {
		return
	}
	m.refunds.Inc()
}
