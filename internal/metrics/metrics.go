package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup results recorded by ObserveLookup.
const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupError    = "error"
)

// Create failure reasons recorded by ObserveCreateFailure.
const (
	CreateInvalid   = "invalid"
	CreateDuplicate = "duplicate"
	CreateStore     = "store"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	cardsCreated    prometheus.Counter
	createFailures  *prometheus.CounterVec
	lookups         *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the card collectors, plus the Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		cardsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wishcraft",
			Name:      "cards_created_total",
			Help:      "Cards successfully created.",
		}),
		createFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wishcraft",
			Name:      "card_create_failures_total",
			Help:      "Rejected or failed card creations by reason.",
		}, []string{"reason"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wishcraft",
			Name:      "card_lookups_total",
			Help:      "Card lookups by slug, by result.",
		}, []string{"result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wishcraft",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	reg.MustRegister(
		m.cardsCreated,
		m.createFailures,
		m.lookups,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// The observe methods are no-ops on a nil *Metrics.

func (m *Metrics) CardCreated() {
	if m == nil {
		return
	}
	m.cardsCreated.Inc()
}

func (m *Metrics) ObserveCreateFailure(reason string) {
	if m == nil {
		return
	}
	m.createFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveLookup(result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
