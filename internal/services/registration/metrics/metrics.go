// Package metrics exposes Prometheus counters for the registration service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook outcome label values.
const (
	WebhookOutcomeRecorded  = "recorded"
	WebhookOutcomeDuplicate = "duplicate"
	WebhookOutcomeRejected  = "rejected"
	WebhookOutcomeMalformed = "malformed"
	WebhookOutcomeFailed    = "failed"
)

// Metrics holds the service counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	SerialAllocations prometheus.Counter
	Submissions       *prometheus.CounterVec
	WebhookDeliveries *prometheus.CounterVec
	OrdersCreated     prometheus.Counter
}

// New creates and registers the service counters.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		SerialAllocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quizrally",
			Subsystem: "registration",
			Name:      "serial_allocations_total",
			Help:      "Serial numbers allocated from the durable counter.",
		}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizrally",
			Subsystem: "registration",
			Name:      "submissions_total",
			Help:      "Participant submissions by result.",
		}, []string{"result"}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizrally",
			Subsystem: "registration",
			Name:      "webhook_deliveries_total",
			Help:      "Payment webhook deliveries by outcome.",
		}, []string{"outcome"}),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quizrally",
			Subsystem: "registration",
			Name:      "orders_created_total",
			Help:      "Checkout orders created with the payment processor.",
		}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SerialAllocations,
		m.Submissions,
		m.WebhookDeliveries,
		m.OrdersCreated,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
