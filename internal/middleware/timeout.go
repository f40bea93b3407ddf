package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout buffers the response, so it must not wrap the event stream or the
// backend proxy. Those use StreamingTimeout.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"request timed out"}}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}

// StreamingTimeout bounds a proxied call by maxDuration without buffering,
// keeping http.Flusher reachable for streamed backend responses.
func StreamingTimeout(maxDuration time.Duration) func(http.Handler) http.Handler {
	if maxDuration <= 0 {
		maxDuration = 30 * time.Second
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), maxDuration)
			defer cancel()

			// unblock a stuck write once the deadline passes
			rc := http.NewResponseController(w)
			_ = rc.SetWriteDeadline(time.Now().Add(maxDuration + time.Second))

			next.ServeHTTP(&flushWriter{ResponseWriter: w}, r.WithContext(ctx))
		})
	}
}

type flushWriter struct {
	http.ResponseWriter
}

func (fw *flushWriter) Unwrap() http.ResponseWriter {
	return fw.ResponseWriter
}

func (fw *flushWriter) Flush() {
	if f, ok := fw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
