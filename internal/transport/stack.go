package transport

import (
	"golang.org/x/time/rate"

	"rescue-console/internal/metrics"
)

type Options struct {
	RequestIDs *RequestIDs
	Tokens     TokenSource
	Validator  Validator
	Terminator Terminator
	Window     *FreshnessWindow
	Namespaces Namespaces

	// Optional stages.
	Limiter *rate.Limiter
	Metrics *metrics.Metrics
}

// Standard returns the console's interceptor order: correlation id first,
// then observation, throttling, credentials and finally freshness, which
// sits closest to the wire so it sees the raw write response.
func Standard(o Options) []Interceptor {
	interceptors := []Interceptor{RequestID(o.RequestIDs), Logging()}

	var observed func(FreshnessOutcome)
	if o.Metrics != nil {
		interceptors = append(interceptors, Instrument(o.Metrics))
		observed = func(outcome FreshnessOutcome) {
			o.Metrics.FreshnessUpdates.WithLabelValues(string(outcome)).Inc()
		}
	}
	if o.Limiter != nil {
		interceptors = append(interceptors, RateLimit(o.Limiter))
	}

	return append(interceptors,
		Authorization(o.Tokens, o.Validator, o.Terminator),
		Freshness(o.Window, o.Namespaces, observed),
	)
}
