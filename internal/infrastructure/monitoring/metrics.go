package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Package metrics
	ManifestReads   *prometheus.CounterVec
	Installs        *prometheus.CounterVec
	InstallDuration prometheus.Histogram
	PackagesLoaded  prometheus.Gauge

	// Broadcast metrics
	Broadcasts    *prometheus.CounterVec
	WatchEvents   prometheus.Counter
	WSConnections prometheus.Gauge

	// Session metrics
	SessionsActive prometheus.Gauge
	Logins         *prometheus.CounterVec
}

// NewMetrics creates a metrics collector backed by its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webdesk_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webdesk_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		ManifestReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webdesk_package_manifest_reads_total",
				Help: "Package manifest reads by result",
			},
			[]string{"result"},
		),
		Installs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webdesk_package_installs_total",
				Help: "Package installs by result kind",
			},
			[]string{"result"},
		),
		InstallDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "webdesk_package_install_duration_seconds",
				Help:    "Package install duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		PackagesLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webdesk_packages_loaded",
				Help: "Number of discovered packages loaded at init",
			},
		),

		Broadcasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webdesk_broadcasts_total",
				Help: "Broadcast events published",
			},
			[]string{"name"},
		),
		WatchEvents: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "webdesk_watch_events_total",
				Help: "File watch change notifications",
			},
		),
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webdesk_ws_connections",
				Help: "Open websocket connections",
			},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webdesk_sessions_active",
				Help: "Number of active sessions",
			},
		),
		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webdesk_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordManifestRead records a manifest read outcome ("success" or "failure").
func (m *Metrics) RecordManifestRead(result string) {
	if m == nil {
		return
	}
	m.ManifestReads.WithLabelValues(result).Inc()
}

// RecordInstall records an install outcome and its duration.
func (m *Metrics) RecordInstall(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Installs.WithLabelValues(result).Inc()
	m.InstallDuration.Observe(duration.Seconds())
}

// SetPackagesLoaded sets the number of discovered packages
func (m *Metrics) SetPackagesLoaded(count int) {
	if m == nil {
		return
	}
	m.PackagesLoaded.Set(float64(count))
}

// RecordBroadcast records a published broadcast
func (m *Metrics) RecordBroadcast(name string) {
	if m == nil {
		return
	}
	m.Broadcasts.WithLabelValues(name).Inc()
}

// IncWatchEvents increments the watch notification counter
func (m *Metrics) IncWatchEvents() {
	if m == nil {
		return
	}
	m.WatchEvents.Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// SetSessionsActive sets the number of active sessions
func (m *Metrics) SetSessionsActive(count int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(count))
}

// RecordLogin records a login attempt ("success" or "failure").
func (m *Metrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}
