package transport

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"rescue-console/internal/storage"
)

const HeaderRequestID = "X-Request-ID"

// RequestIDs hands out the per-session correlation id, cached in session
// storage so every request of the session carries the same value.
type RequestIDs struct {
	session storage.Storage
	mu      sync.Mutex
}

func NewRequestIDs(session storage.Storage) *RequestIDs {
	return &RequestIDs{session: session}
}

// ID returns the cached id, generating and caching one on first use.
func (r *RequestIDs) ID(ctx context.Context) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	cached, ok, err := r.session.GetItem(ctx, storage.KeyRequestID)
	if err == nil && ok && cached != "" {
		return cached
	}

	id := newCorrelationID()
	if err := r.session.SetItem(ctx, storage.KeyRequestID, id); err != nil {
		slog.Warn("request id not cached", "error", err)
	}
	return id
}

// newCorrelationID renders 16 random bytes as 32 lowercase hex chars.
func newCorrelationID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// RequestID keeps an id already present on the request and otherwise
// attaches the session id.
func RequestID(ids *RequestIDs) Interceptor {
	return func(req *http.Request, next Next) (*http.Response, error) {
		if req.Header.Get(HeaderRequestID) != "" {
			return next(req)
		}

		out := cloneRequest(req)
		out.Header.Set(HeaderRequestID, ids.ID(req.Context()))
		return next(out)
	}
}
