//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rescue-console/internal/console"
	"rescue-console/internal/database"
	"rescue-console/internal/model"
	"rescue-console/internal/storage"
	"rescue-console/internal/token/tokentest"
)

// fakeBackend answers the handful of rescue backend routes the console
// needs for a full session.
type fakeBackend struct {
	server  *httptest.Server
	token   string
	logouts atomic.Int32
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{token: tokentest.Valid(t, time.Hour, "Medic", 21)}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			_ = json.NewEncoder(w).Encode(model.LoginResponse{Token: b.token})
		case "/api/logout":
			b.logouts.Add(1)
			w.WriteHeader(http.StatusNoContent)
		case "/api/urgencies":
			if r.Header.Get("Authorization") != "Bearer "+b.token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode([]model.Urgency{{ID: "u1", Title: "Lost hiker", Status: model.UrgencyOpen}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) url() string {
	return b.server.URL + "/api"
}

func requireEnv(t *testing.T, key string) string {
	t.Helper()

	v := os.Getenv(key)
	if v == "" {
		t.Skipf("%s not set", key)
	}
	return v
}

func openPostgres(t *testing.T, namespace string) *storage.Postgres {
	t.Helper()

	ctx := context.Background()
	db, err := database.New(ctx, requireEnv(t, "DATABASE_URL"), 2, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	return storage.NewPostgres(db.Pool, namespace)
}

func openRedis(t *testing.T, prefix string) *storage.Redis {
	t.Helper()

	store, err := storage.NewRedis(context.Background(), requireEnv(t, "REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), 0, prefix)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newConsole(t *testing.T, backendURL string, local storage.Storage) *console.Console {
	t.Helper()

	c, err := console.New(console.Options{
		BackendURL:     backendURL,
		Local:          local,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}
