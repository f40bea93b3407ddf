package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescue-console/internal/model"
	"rescue-console/internal/storage"
	"rescue-console/internal/token/tokentest"
)

type backendLog struct {
	mu       sync.Mutex
	requests []*http.Request
	logouts  int
}

func (b *backendLog) add(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r.Clone(context.Background()))
	if r.URL.Path == "/api/logout" {
		b.logouts++
	}
}

func (b *backendLog) logoutCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logouts
}

func (b *backendLog) last(path string) *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].URL.Path == path {
			return b.requests[i]
		}
	}
	return nil
}

func newBackend(t *testing.T, issued string) (*httptest.Server, *backendLog) {
	t.Helper()

	log := &backendLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r)
		switch {
		case r.URL.Path == "/api/login":
			_ = json.NewEncoder(w).Encode(model.LoginResponse{Token: issued})
		case r.URL.Path == "/api/logout":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/api/urgencies":
			w.Header().Set("X-Fresh-Until", "2030-01-01T00:00:05Z")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(model.Urgency{ID: "u1", Status: model.UrgencyOpen})
		case r.URL.Path == "/api/urgencies":
			_ = json.NewEncoder(w).Encode([]model.Urgency{{ID: "u1"}})
		case r.URL.Path == "/api/shifts":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, log
}

func TestConsole_EndToEnd(t *testing.T) {
	issued := tokentest.Valid(t, time.Hour, "Administrator", 3)
	server, log := newBackend(t, issued)

	c, err := New(Options{
		BackendURL:          server.URL + "/api/",
		Local:               storage.NewMemory(),
		FreshnessNamespaces: []string{"urgencies"},
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	ctx := context.Background()

	info, err := c.Auth.Login(ctx, model.Credentials{Username: "ana", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, info.IsAdmin)

	_, err = c.API.Urgencies.Report(ctx, model.UrgencyReport{Title: "Rockfall", Severity: 3})
	require.NoError(t, err)

	_, err = c.API.Urgencies.List(ctx, model.UrgencyFilter{})
	require.NoError(t, err)

	read := log.last("/api/urgencies")
	require.NotNil(t, read)
	assert.Equal(t, http.MethodGet, read.Method)
	assert.Equal(t, "Bearer "+issued, read.Header.Get("Authorization"))
	assert.Equal(t, "2030-01-01T00:00:05Z", read.Header.Get("X-Fresh-Until"))
	assert.Len(t, read.Header.Get("X-Request-ID"), 32)

	login := log.last("/api/login")
	assert.Equal(t, login.Header.Get("X-Request-ID"), read.Header.Get("X-Request-ID"))
	assert.Empty(t, login.Header.Get("Authorization"))

	// a 401 while the token is live is passed through without logging out
	_, err = c.API.Shifts.List(ctx, model.ShiftFilter{})
	require.Error(t, err)
	assert.True(t, c.State.IsAuthenticated(ctx))
	assert.Zero(t, log.logouts)

	c.Auth.Logout(ctx)
	assert.False(t, c.State.IsAuthenticated(ctx))
	assert.Equal(t, 1, log.logouts)
	assert.Equal(t, "login", c.Views.CurrentView())
}

func TestConsole_ExpiredTokenLogsOutOnUnauthorized(t *testing.T) {
	server, log := newBackend(t, "")
	local := storage.NewMemory()
	require.NoError(t, local.SetItem(context.Background(), storage.KeyToken, tokentest.Expired(t)))

	c, err := New(Options{BackendURL: server.URL + "/api", Local: local})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	c.Views.SetView("shifts")

	assert.False(t, c.Resume(context.Background()))

	_, err = c.API.Shifts.List(context.Background(), model.ShiftFilter{})
	require.Error(t, err)

	_, ok, err := local.GetItem(context.Background(), storage.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, log.logouts)
	assert.Equal(t, "login", c.Views.CurrentView())
}

func TestConsole_ResumeLiveSession(t *testing.T) {
	server, _ := newBackend(t, "")
	local := storage.NewMemory()
	require.NoError(t, local.SetItem(context.Background(), storage.KeyToken, tokentest.Valid(t, time.Hour, "Medic", 1)))

	c, err := New(Options{BackendURL: server.URL, Local: local})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	assert.True(t, c.Resume(context.Background()))
	assert.True(t, c.Auth.SessionCheckRunning())
}

func TestConsole_ResumeExpiredSessionStillChecks(t *testing.T) {
	server, log := newBackend(t, "")
	local := storage.NewMemory()
	require.NoError(t, local.SetItem(context.Background(), storage.KeyToken, tokentest.Expired(t)))

	c, err := New(Options{BackendURL: server.URL + "/api", Local: local, CheckInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	c.Views.SetView("urgencies")

	assert.False(t, c.Resume(context.Background()))

	require.Eventually(t, func() bool {
		_, ok, _ := local.GetItem(context.Background(), storage.KeyToken)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return !c.Auth.SessionCheckRunning() }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, log.logoutCount())
	assert.Equal(t, "login", c.Views.CurrentView())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{BackendURL: "::", Local: storage.NewMemory()})
	assert.Error(t, err)

	_, err = New(Options{BackendURL: "http://backend.local"})
	assert.Error(t, err)
}
