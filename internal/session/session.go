// Package session derives the authentication state of the console from the
// stored token. Nothing here is persisted; every answer is recomputed.
package session

import (
	"context"
	"log/slog"
	"time"

	"rescue-console/internal/model"
	"rescue-console/internal/token"
)

type Clock func() time.Time

type Info struct {
	Authenticated bool       `json:"authenticated"`
	Role          model.Role `json:"role"`
	UserID        string     `json:"user_id"`
	IsAdmin       bool       `json:"is_admin"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

type State struct {
	tokens *token.Store
	now    Clock
}

func NewState(tokens *token.Store, now Clock) *State {
	if now == nil {
		now = time.Now
	}
	return &State{tokens: tokens, now: now}
}

func (s *State) claims(ctx context.Context) *token.Claims {
	raw := s.tokens.Get(ctx)
	if raw == "" {
		return nil
	}

	claims, err := token.Decode(raw)
	if err != nil {
		slog.Debug("stored token is not decodable", "error", err)
		return nil
	}
	return claims
}

// IsAuthenticated is true iff a token is stored and its exp is strictly in
// the future (second resolution).
func (s *State) IsAuthenticated(ctx context.Context) bool {
	claims := s.claims(ctx)
	return claims != nil && !claims.ExpiredAt(s.now())
}

// Role falls back to the least privileged role when there is no token or no
// role claim.
func (s *State) Role(ctx context.Context) model.Role {
	return roleOf(s.claims(ctx))
}

func (s *State) UserID(ctx context.Context) string {
	claims := s.claims(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserID
}

func (s *State) IsAdmin(ctx context.Context) bool {
	return s.Role(ctx) == model.RoleAdministrator
}

// Snapshot answers all questions from a single read of the token.
func (s *State) Snapshot(ctx context.Context) Info {
	claims := s.claims(ctx)
	role := roleOf(claims)

	info := Info{
		Authenticated: claims != nil && !claims.ExpiredAt(s.now()),
		Role:          role,
		IsAdmin:       role == model.RoleAdministrator,
	}
	if claims != nil {
		info.UserID = claims.UserID
		if claims.HasExpiry {
			expiresAt := claims.ExpiresAt.UTC()
			info.ExpiresAt = &expiresAt
		}
	}
	return info
}

func roleOf(claims *token.Claims) model.Role {
	if claims == nil || claims.Role == "" {
		return model.DefaultRole
	}
	return claims.Role
}
