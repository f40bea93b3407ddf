package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rescue-console/internal/event"
	"rescue-console/internal/metrics"
	"rescue-console/internal/model"
	"rescue-console/internal/session"
	"rescue-console/internal/storage"
	"rescue-console/internal/token"
	"rescue-console/internal/token/tokentest"
	"rescue-console/internal/transport"
	"rescue-console/pkg/apierror"
)

type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) CurrentView() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockNavigator) Redirect(view string) {
	m.Called(view)
}

type fakeBackend struct {
	server *httptest.Server

	logoutCalls atomic.Int32
	mu          sync.Mutex
	logoutAuth  []string
	logoutCode  int
	issued      string
}

func newFakeBackend(t *testing.T, issued string) *fakeBackend {
	t.Helper()

	b := &fakeBackend{issued: issued, logoutCode: http.StatusNoContent}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username != "ana" || creds.Password != "secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"INVALID_CREDENTIALS","message":"bad credentials"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(model.LoginResponse{Token: b.issued})
	})
	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logoutCalls.Add(1)
		b.mu.Lock()
		b.logoutAuth = append(b.logoutAuth, r.Header.Get("Authorization"))
		code := b.logoutCode
		b.mu.Unlock()
		w.WriteHeader(code)
	})
	mux.HandleFunc("GET /api/urgencies", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

type fixture struct {
	svc     *Service
	client  *http.Client
	tokens  *token.Store
	bus     *event.InMemoryBus
	nav     *MockNavigator
	backend *fakeBackend
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, issued string) *fixture {
	t.Helper()

	backend := newFakeBackend(t, issued)
	tokens := token.NewStore(storage.NewMemory())
	state := session.NewState(tokens, nil)
	bus := event.NewBus()
	nav := new(MockNavigator)
	m := metrics.New(prometheus.NewRegistry())

	var svc *Service
	client := transport.NewClient(nil, 5*time.Second, transport.Standard(transport.Options{
		RequestIDs: transport.NewRequestIDs(storage.NewMemory()),
		Tokens:     tokens,
		Validator:  state,
		Terminator: transport.TerminatorFunc(func(ctx context.Context, reason string) {
			svc.ForceLogout(ctx, reason)
		}),
		Window:  transport.NewFreshnessWindow(0, nil),
		Metrics: m,
	})...)

	svc, err := NewService(Config{
		BackendURL: backend.server.URL + "/api",
		Client:     client,
		Bare:       &http.Client{Timeout: time.Second},
		Tokens:     tokens,
		State:      state,
		Bus:        bus,
		Navigator:  nav,
		Metrics:    m,
	})
	require.NoError(t, err)
	t.Cleanup(svc.StopSessionCheck)

	return &fixture{svc: svc, client: client, tokens: tokens, bus: bus, nav: nav, backend: backend, metrics: m}
}

func nextEvent(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("no event published")
		return event.Event{}
	}
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Config{BackendURL: "not a url"})
	assert.Error(t, err)

	_, err = NewService(Config{BackendURL: "http://backend.local/api"})
	assert.Error(t, err)
}

func TestService_Login(t *testing.T) {
	t.Run("success stores token and announces the session", func(t *testing.T) {
		issued := tokentest.Valid(t, time.Hour, "Technical", 42)
		f := newFixture(t, issued)
		events, unsubscribe := f.bus.Subscribe()
		defer unsubscribe()

		info, err := f.svc.Login(context.Background(), model.Credentials{Username: " ana ", Password: "secret"})
		require.NoError(t, err)

		assert.True(t, info.Authenticated)
		assert.Equal(t, model.RoleTechnical, info.Role)
		assert.Equal(t, "42", info.UserID)
		assert.Equal(t, issued, f.tokens.Get(context.Background()))
		assert.True(t, f.svc.SessionCheckRunning())

		e := nextEvent(t, events)
		assert.Equal(t, event.TypeSessionLogin, e.Type)
		assert.Equal(t, "42", e.UserID)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Logins.WithLabelValues("success")))
	})

	t.Run("rejected credentials leave the console anonymous", func(t *testing.T) {
		f := newFixture(t, tokentest.Valid(t, time.Hour, "Medic", 1))
		// 401 on the login endpoint always ends whatever session exists.
		f.nav.On("CurrentView").Return(ViewLogin)
		f.nav.On("Redirect", ViewLogin).Return()

		_, err := f.svc.Login(context.Background(), model.Credentials{Username: "ana", Password: "wrong"})
		require.Error(t, err)
		assert.True(t, apierror.IsUnauthorized(err))

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)

		assert.Empty(t, f.tokens.Get(context.Background()))
		assert.False(t, f.svc.SessionCheckRunning())
		// no token was stored, so the backend is not told about a logout
		assert.Zero(t, f.backend.logoutCalls.Load())
		f.nav.AssertCalled(t, "Redirect", ViewLogin)
	})

	t.Run("missing fields never reach the backend", func(t *testing.T) {
		f := newFixture(t, "unused")

		_, err := f.svc.Login(context.Background(), model.Credentials{Username: "  "})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apierror.StatusCode(err))
	})
}

func TestService_Logout(t *testing.T) {
	t.Run("with a token notifies the backend once and clears state", func(t *testing.T) {
		f := newFixture(t, "")
		raw := tokentest.Valid(t, time.Hour, "Medic", 5)
		require.NoError(t, f.tokens.Set(context.Background(), raw))
		f.svc.StartSessionCheck(context.Background())
		f.nav.On("Redirect", ViewLogin).Return().Once()

		events, unsubscribe := f.bus.Subscribe()
		defer unsubscribe()

		f.svc.Logout(context.Background())

		assert.Equal(t, int32(1), f.backend.logoutCalls.Load())
		assert.Equal(t, []string{"Bearer " + raw}, f.backend.logoutAuth)
		assert.Empty(t, f.tokens.Get(context.Background()))
		assert.False(t, f.svc.SessionCheckRunning())

		e := nextEvent(t, events)
		assert.Equal(t, event.TypeSessionLogout, e.Type)
		assert.Equal(t, "5", e.UserID)
		f.nav.AssertExpectations(t)
	})

	t.Run("without a token skips the network", func(t *testing.T) {
		f := newFixture(t, "")
		f.nav.On("Redirect", ViewLogin).Return().Once()

		f.svc.Logout(context.Background())

		assert.Zero(t, f.backend.logoutCalls.Load())
		f.nav.AssertExpectations(t)
	})

	t.Run("backend failure does not prevent cleanup", func(t *testing.T) {
		f := newFixture(t, "")
		f.backend.logoutCode = http.StatusInternalServerError
		require.NoError(t, f.tokens.Set(context.Background(), tokentest.Valid(t, time.Hour, "Medic", 5)))
		f.nav.On("Redirect", ViewLogin).Return().Once()

		f.svc.Logout(context.Background())

		assert.Equal(t, int32(1), f.backend.logoutCalls.Load())
		assert.Empty(t, f.tokens.Get(context.Background()))
	})

	t.Run("unreachable backend does not prevent cleanup", func(t *testing.T) {
		f := newFixture(t, "")
		require.NoError(t, f.tokens.Set(context.Background(), tokentest.Valid(t, time.Hour, "Medic", 5)))
		f.backend.server.Close()
		f.nav.On("Redirect", ViewLogin).Return().Once()

		f.svc.Logout(context.Background())

		assert.Empty(t, f.tokens.Get(context.Background()))
		f.nav.AssertExpectations(t)
	})
}

func TestService_UnauthorizedThroughPipeline(t *testing.T) {
	t.Run("expired session logs out exactly once", func(t *testing.T) {
		f := newFixture(t, "")
		require.NoError(t, f.tokens.Set(context.Background(), tokentest.Expired(t)))
		f.nav.On("CurrentView").Return("urgencies")
		f.nav.On("Redirect", ViewLogin).Return().Once()

		req, err := http.NewRequest(http.MethodGet, f.backend.server.URL+"/api/urgencies", nil)
		require.NoError(t, err)
		resp, err := f.client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		// the caller still sees the 401
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, int32(1), f.backend.logoutCalls.Load())
		assert.Empty(t, f.tokens.Get(context.Background()))
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ForcedLogouts.WithLabelValues(transport.ReasonUnauthorized)))
		f.nav.AssertExpectations(t)
	})

	t.Run("live session keeps its token", func(t *testing.T) {
		f := newFixture(t, "")
		raw := tokentest.Valid(t, time.Hour, "Medic", 5)
		require.NoError(t, f.tokens.Set(context.Background(), raw))

		req, err := http.NewRequest(http.MethodGet, f.backend.server.URL+"/api/urgencies", nil)
		require.NoError(t, err)
		resp, err := f.client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Zero(t, f.backend.logoutCalls.Load())
		assert.Equal(t, raw, f.tokens.Get(context.Background()))
		f.nav.AssertNotCalled(t, "Redirect", mock.Anything)
	})
}

func TestService_CheckSession(t *testing.T) {
	t.Run("valid session is left alone", func(t *testing.T) {
		f := newFixture(t, "")
		require.NoError(t, f.tokens.Set(context.Background(), tokentest.Valid(t, time.Hour, "Medic", 5)))

		f.svc.CheckSession(context.Background())

		f.nav.AssertNotCalled(t, "Redirect", mock.Anything)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.SessionChecks.WithLabelValues("valid")))
	})

	t.Run("public view is left alone", func(t *testing.T) {
		for _, view := range []string{"home", "/login", "Register", ""} {
			f := newFixture(t, "")
			f.nav.On("CurrentView").Return(view)

			f.svc.CheckSession(context.Background())

			f.nav.AssertNotCalled(t, "Redirect", mock.Anything)
		}
	})

	t.Run("expired session on a protected view is ended", func(t *testing.T) {
		f := newFixture(t, "")
		require.NoError(t, f.tokens.Set(context.Background(), tokentest.Expired(t)))
		f.nav.On("CurrentView").Return("shifts")
		f.nav.On("Redirect", ViewLogin).Return().Once()

		f.svc.CheckSession(context.Background())

		assert.Empty(t, f.tokens.Get(context.Background()))
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ForcedLogouts.WithLabelValues(ReasonSessionExpired)))
		f.nav.AssertExpectations(t)
	})
}
