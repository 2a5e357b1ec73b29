// Package metrics exposes Prometheus collectors for the dashboard backend.
//
// Every method is safe on a nil *Metrics so components can run uninstrumented.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	forecastCache     *prometheus.CounterVec
	wsClients         prometheus.Gauge
	wsDelivered       *prometheus.CounterVec
}

// New registers the collectors, including the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		forecastCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_cache_lookups_total",
			Help: "Latest-forecast lookups by result (hit or miss).",
		}, []string{"result"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ws_connected_clients",
			Help: "Dashboard websocket connections currently open.",
		}),
		wsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ws_events_delivered_total",
			Help: "Events written to dashboard connections by event type.",
		}, []string{"type"}),
	}
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.forecastCache,
		m.wsClients,
		m.wsDelivered,
	)
	return m
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.forecastCache.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.forecastCache.WithLabelValues("miss").Inc()
}

// ClientConnected and ClientDisconnected track the websocket gauge.
func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.wsClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.wsClients.Dec()
}

// EventDelivered counts deliveries, one per reached connection.
func (m *Metrics) EventDelivered(eventType string, connections int) {
	if m == nil || connections <= 0 {
		return
	}
	m.wsDelivered.WithLabelValues(eventType).Add(float64(connections))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
