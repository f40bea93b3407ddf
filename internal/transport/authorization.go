package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

const (
	HeaderAuthorization = "Authorization"

	ReasonUnauthorized = "unauthorized"
)

type TokenSource interface {
	Get(ctx context.Context) string
}

type Validator interface {
	IsAuthenticated(ctx context.Context) bool
}

// Terminator ends the session. Implementations must not route their own
// network calls back through this pipeline.
type Terminator interface {
	ForceLogout(ctx context.Context, reason string)
}

type TerminatorFunc func(ctx context.Context, reason string)

func (f TerminatorFunc) ForceLogout(ctx context.Context, reason string) {
	f(ctx, reason)
}

var authEndpointSuffixes = []string{"/login", "/oauth/token"}

func IsAuthEndpoint(path string) bool {
	path = strings.TrimRight(path, "/")
	for _, suffix := range authEndpointSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// Authorization attaches the bearer token when one is stored. A 401 answer
// ends the session only when the session is already invalid or the call was
// itself an authentication call; a 401 on any other endpoint while the token
// still looks valid is passed through untouched. The response always reaches
// the caller.
func Authorization(tokens TokenSource, validator Validator, terminator Terminator) Interceptor {
	return func(req *http.Request, next Next) (*http.Response, error) {
		out := req
		if raw := tokens.Get(req.Context()); raw != "" {
			out = cloneRequest(req)
			out.Header.Set(HeaderAuthorization, "Bearer "+raw)
		}

		resp, err := next(out)
		if err != nil || resp.StatusCode != http.StatusUnauthorized {
			return resp, err
		}

		authCall := IsAuthEndpoint(req.URL.Path)
		sessionValid := validator.IsAuthenticated(req.Context())
		if !authCall && sessionValid {
			slog.Debug("401 on protected endpoint with a live session; not logging out",
				"path", req.URL.Path, "request_id", out.Header.Get(HeaderRequestID))
			return resp, nil
		}

		slog.Info("401 ends the session",
			"path", req.URL.Path, "auth_endpoint", authCall, "session_valid", sessionValid)
		terminator.ForceLogout(context.WithoutCancel(req.Context()), ReasonUnauthorized)

		return resp, nil
	}
}
