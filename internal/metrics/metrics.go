// Package metrics holds the Prometheus collectors of the console.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rescue_console"

type Metrics struct {
	OutboundRequests *prometheus.CounterVec
	OutboundDuration *prometheus.HistogramVec
	ForcedLogouts    *prometheus.CounterVec
	FreshnessUpdates *prometheus.CounterVec
	SessionChecks    *prometheus.CounterVec
	Logins           *prometheus.CounterVec
}

// New registers every collector on reg. Passing a fresh registry per test
// keeps registrations from colliding.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OutboundRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbound_requests_total",
			Help:      "Requests sent to the rescue backend by method and status class.",
		}, []string{"method", "status"}),

		OutboundDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbound_request_duration_seconds",
			Help:      "Round-trip time of backend requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		ForcedLogouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forced_logouts_total",
			Help:      "Logouts the console triggered on its own, by reason.",
		}, []string{"reason"}),

		FreshnessUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "freshness_markers_total",
			Help:      "Freshness markers seen on write responses, by outcome.",
		}, []string{"outcome"}),

		SessionChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_checks_total",
			Help:      "Periodic session checks, by result.",
		}, []string{"result"}),

		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts, by result.",
		}, []string{"result"}),
	}
}

// NewNop returns collectors registered nowhere, for callers that do not
// export metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	}
	return "error"
}
