package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the prometheus vectors the services record into.
// Vectors are registered once at construction; handlers and services receive
// the struct via DI and never register metrics themselves.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	CheckoutsTotal     *prometheus.CounterVec // outcome
	ShipmentsCreated   *prometheus.CounterVec // shipping_type
	ShipmentsProcessed *prometheus.CounterVec // outcome: completed|failed
	NotifierPublishes  *prometheus.CounterVec // outcome
}

func New(namespace string) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CheckoutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Total number of order placements.",
		}, []string{"outcome"}),
		ShipmentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipments_created_total",
			Help:      "Shipments created, by shipping type.",
		}, []string{"shipping_type"}),
		ShipmentsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipments_processed_total",
			Help:      "Shipments driven to a terminal status, by outcome.",
		}, []string{"outcome"}),
		NotifierPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifier_publishes_total",
			Help:      "Shipment id publishes to the notifier, by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.HTTPRequests,
		m.HTTPLatency,
		m.CheckoutsTotal,
		m.ShipmentsCreated,
		m.ShipmentsProcessed,
		m.NotifierPublishes,
	)
	return m
}

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
