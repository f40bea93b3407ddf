package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS lets the listed console UI origins reach the gateway. The UI never
// sends Authorization; the gateway owns the token, so an empty list allows
// no cross-origin caller at all.
func CORS(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID", "X-Fresh-Until"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-ID", "X-Fresh-Until"},
		MaxAge:           3600,
		AllowCredentials: false,
	}
	// rs/cors treats an empty list as "*"
	if len(origins) == 0 {
		opts.AllowOriginFunc = func(string) bool { return false }
	}

	return cors.New(opts).Handler
}
