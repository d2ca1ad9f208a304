// Package metrics owns the service's prometheus collectors. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aischool"

// Metrics groups the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	sessions      *prometheus.CounterVec
	curveAnalyses *prometheus.CounterVec
	llmRequests   *prometheus.CounterVec
	llmRetries    *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Content cache lookups by key prefix and result.",
		}, []string{"prefix", "result"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "events_total",
			Help:      "Adaptive session lifecycle events.",
		}, []string{"event"}),
		curveAnalyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "curve",
			Name:      "analyses_total",
			Help:      "Learning curve analyses by outcome.",
		}, []string{"result"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Text generation requests by purpose and outcome.",
		}, []string{"purpose", "result"}),
		llmRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "retries_total",
			Help:      "Text generation retries by purpose and error class.",
		}, []string{"purpose", "reason"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.cacheLookups,
		m.sessions,
		m.curveAnalyses,
		m.llmRequests,
		m.llmRetries,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// CacheLookup records a content cache hit or miss.
func (m *Metrics) CacheLookup(prefix string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(prefix, result).Inc()
}

// Session lifecycle event labels.
const (
	SessionStarted   = "started"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
)

// SessionEvent counts an adaptive session lifecycle event.
func (m *Metrics) SessionEvent(event string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(event).Inc()
}

// Curve analysis outcome labels.
const (
	CurveUpdated  = "updated"
	CurveConflict = "conflict"
	CurveFailed   = "failed"
)

// CurveAnalysis counts a learning curve analysis outcome.
func (m *Metrics) CurveAnalysis(result string) {
	if m == nil {
		return
	}
	m.curveAnalyses.WithLabelValues(result).Inc()
}

// LLMRequest counts a text generation call.
func (m *Metrics) LLMRequest(purpose string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.llmRequests.WithLabelValues(purpose, result).Inc()
}

// LLMRetry counts a retried text generation call.
func (m *Metrics) LLMRetry(purpose, reason string) {
	if m == nil {
		return
	}
	m.llmRetries.WithLabelValues(purpose, reason).Inc()
}
