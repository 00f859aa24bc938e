// Package metrics holds the Prometheus collectors of the service. They are
// registered once on the default registry and exposed through Handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ordersvc"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"method", "route"})

	// PaymentEventsTotal counts payment events by reconciliation outcome,
	// plus "error" and "poison" for events that did not reach a decision.
	PaymentEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_events_total",
		Help:      "Payment events handled, by outcome.",
	}, []string{"outcome"})

	DeadLetteredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dead_lettered_total",
		Help:      "Messages routed to the dead-letter topic, by reason.",
	}, []string{"reason"})

	OutboxEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_events_total",
		Help:      "Outbox events relayed, by event type and result.",
	}, []string{"event_type", "result"})

	UnitOfWorkRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unit_of_work_retries_total",
		Help:      "Unit of work attempts repeated after a retryable failure.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		PaymentEventsTotal,
		DeadLetteredTotal,
		OutboxEventsTotal,
		UnitOfWorkRetriesTotal,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
