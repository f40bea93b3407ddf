package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescue-console/internal/model"
)

type fixedSession struct {
	authenticated bool
	admin         bool
}

func (s fixedSession) IsAuthenticated(context.Context) bool { return s.authenticated }
func (s fixedSession) IsAdmin(context.Context) bool         { return s.admin }

func TestLogging_RequestID(t *testing.T) {
	var seen string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "ui-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "ui-123", seen)
	assert.Equal(t, "ui-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	handler := Logging(Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	require.NotNil(t, body.Meta)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body.Meta.RequestID)
}

func TestSessionGuard(t *testing.T) {
	cases := []struct {
		name    string
		session fixedSession
		admin   bool
		want    int
	}{
		{"anonymous", fixedSession{}, false, http.StatusUnauthorized},
		{"authenticated", fixedSession{authenticated: true}, false, http.StatusOK},
		{"admin route without role", fixedSession{authenticated: true}, true, http.StatusForbidden},
		{"admin route with role", fixedSession{authenticated: true, admin: true}, true, http.StatusOK},
		{"admin route anonymous", fixedSession{admin: true}, true, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			guard := NewSessionGuard(tc.session)
			handler := guard.RequireSession(okHandler())
			if tc.admin {
				handler = guard.RequireAdmin(okHandler())
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestCORS_OnlyListedOrigins(t *testing.T) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { reached = true })

	preflight := func(h http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/backend/admin/reset", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	listed := CORS([]string{"http://localhost:4200"})(next)

	rec := preflight(listed, "https://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))

	rec = preflight(listed, "http://localhost:4200")
	assert.Equal(t, "http://localhost:4200", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodDelete, rec.Header().Get("Access-Control-Allow-Methods"))

	rec = preflight(CORS(nil)(next), "https://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, reached)
}
