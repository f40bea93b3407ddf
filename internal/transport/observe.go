package transport

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"rescue-console/internal/metrics"
)

// Logging records every backend call at a level matching its outcome.
func Logging() Interceptor {
	return func(req *http.Request, next Next) (*http.Response, error) {
		started := time.Now()
		resp, err := next(req)

		attrs := []any{
			"request_id", req.Header.Get(HeaderRequestID),
			"method", req.Method,
			"path", req.URL.Path,
			"duration_ms", time.Since(started).Milliseconds(),
		}

		switch {
		case err != nil:
			slog.Error("backend request failed", append(attrs, "error", err)...)
		case resp.StatusCode >= 500:
			slog.Error("backend request", append(attrs, "status", resp.StatusCode)...)
		case resp.StatusCode >= 400:
			slog.Warn("backend request", append(attrs, "status", resp.StatusCode)...)
		default:
			slog.Debug("backend request", append(attrs, "status", resp.StatusCode)...)
		}

		return resp, err
	}
}

func Instrument(m *metrics.Metrics) Interceptor {
	return func(req *http.Request, next Next) (*http.Response, error) {
		started := time.Now()
		resp, err := next(req)

		status := 0
		if err == nil {
			status = resp.StatusCode
		}
		m.OutboundRequests.WithLabelValues(req.Method, metrics.StatusClass(status)).Inc()
		m.OutboundDuration.WithLabelValues(req.Method).Observe(time.Since(started).Seconds())

		return resp, err
	}
}

// RateLimit holds each request until the limiter admits it or the request
// context ends.
func RateLimit(limiter *rate.Limiter) Interceptor {
	return func(req *http.Request, next Next) (*http.Response, error) {
		if err := limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
		return next(req)
	}
}
