// Package metrics exposes Prometheus instrumentation for the search pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "homesearch"

// Tool call dispositions
const (
	CallExecuted = "executed"
	CallDropped  = "dropped"
	CallIgnored  = "ignored"
	CallInvalid  = "invalid"
)

// Metrics records gateway, cache, executor and model activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatewayRequests *prometheus.CounterVec
	gatewayLatency  prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	toolCalls       *prometheus.CounterVec
	modelRequests   *prometheus.CounterVec
}

// New registers the collectors on reg, or on the default registerer when
// reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		gatewayRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Listings API requests by outcome (ok, http_error, transport_error)",
		}, []string{"outcome"}),
		gatewayLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Listings API round-trip latency",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Listings cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "tool_calls_total",
			Help:      "Model-issued tool calls by disposition",
		}, []string{"disposition"}),
		modelRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "requests_total",
			Help:      "Model API requests by conversation phase and outcome",
		}, []string{"phase", "outcome"}),
	}
}

// ObserveGateway records one listings API round trip
func (m *Metrics) ObserveGateway(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.gatewayRequests.WithLabelValues(outcome).Inc()
	m.gatewayLatency.Observe(d.Seconds())
}

// CacheLookup records a cache hit, miss or error
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ToolCalls adds n calls with the given disposition
func (m *Metrics) ToolCalls(disposition string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.toolCalls.WithLabelValues(disposition).Add(float64(n))
}

// ModelRequest records one model API request
func (m *Metrics) ModelRequest(phase string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.modelRequests.WithLabelValues(phase, outcome).Inc()
}
