package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/urlquery/pkg/urlquery"
)

// Metrics holds the server's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	normalizations  *prometheus.CounterVec
	rawFilters      prometheus.Counter
	unknownSorts    prometheus.Counter
	commandsTotal   *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	wsErrors        *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		normalizations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalizations_total",
			Help:      "Query states normalized from URL search parameters",
		}, []string{"sort_param"}),

		rawFilters: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raw_filters_total",
			Help:      "Filter values kept as raw strings after validation failed",
		}),

		unknownSorts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_sorts_total",
			Help:      "Sort tokens dropped because the column is not sortable",
		}),

		commandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "WebSocket commands by op and status",
		}, []string{"op", "status"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live WebSocket sessions",
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_errors_total",
			Help:      "WebSocket errors by type",
		}, []string{"type"}),
	}
}

// RecordRequest records a finished HTTP request.
func (m *Metrics) RecordRequest(route, method string, code int, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordNormalization records one normalization result.
func (m *Metrics) RecordNormalization(n urlquery.Normalized) {
	if m == nil {
		return
	}
	m.normalizations.WithLabelValues(strconv.FormatBool(n.SortParam)).Inc()
	m.rawFilters.Add(float64(len(n.Raw)))
	m.unknownSorts.Add(float64(len(n.Unknown)))
}

// RecordCommand records a WebSocket command outcome.
func (m *Metrics) RecordCommand(op string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.commandsTotal.WithLabelValues(op, status).Inc()
}

// SessionOpened increments the live session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// SessionClosed decrements the live session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

// RecordWSError records a WebSocket error by type.
func (m *Metrics) RecordWSError(kind string) {
	if m == nil {
		return
	}
	m.wsErrors.WithLabelValues(kind).Inc()
}
