package middleware

import (
	"context"
	"net/http"
)

type sessionValidator interface {
	IsAuthenticated(ctx context.Context) bool
	IsAdmin(ctx context.Context) bool
}

// SessionGuard rejects gateway routes that only make sense with a live
// console session. It looks at the session the gateway holds, not at
// anything the caller sends.
type SessionGuard struct {
	validator sessionValidator
}

func NewSessionGuard(validator sessionValidator) *SessionGuard {
	return &SessionGuard{validator: validator}
}

func (g *SessionGuard) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.validator.IsAuthenticated(r.Context()) {
			writeJSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "no active session")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *SessionGuard) RequireAdmin(next http.Handler) http.Handler {
	return g.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.validator.IsAdmin(r.Context()) {
			writeJSONError(w, r, http.StatusForbidden, "FORBIDDEN", "administrator role required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}
