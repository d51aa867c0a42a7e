// Package metrics expone las metricas Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cesizen/internal/diagnostic"
)

// Manager agrupa los colectores. Un *Manager nil es valido y no registra nada.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	diagnostics         *prometheus.CounterVec
	diagnosticsRejected prometheus.Counter
	catalogCache        *prometheus.CounterVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "cesizen",
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	auto := promauto.With(m.registry)
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   m.buckets,
	}, []string{"route", "method"})
	m.diagnostics = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "diagnostics_total",
		Help:      "Scored stress diagnostics by risk tier.",
	}, []string{"tier"})
	m.diagnosticsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "diagnostics_rejected_total",
		Help:      "Diagnostic submissions without any usable event.",
	})
	m.catalogCache = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "catalog_cache_lookups_total",
		Help:      "Stress event catalog cache lookups by result.",
	}, []string{"result"})
	return m
}

func (m *Manager) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Manager) DiagnosticScored(tier diagnostic.RiskTier) {
	if m == nil {
		return
	}
	m.diagnostics.WithLabelValues(string(tier)).Inc()
}

func (m *Manager) DiagnosticRejected() {
	if m == nil {
		return
	}
	m.diagnosticsRejected.Inc()
}

func (m *Manager) CatalogCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.catalogCache.WithLabelValues(result).Inc()
}

// Handler sirve el registry en formato de exposicion Prometheus.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
