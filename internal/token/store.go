package token

import (
	"context"
	"log/slog"

	"rescue-console/internal/storage"
)

// Store keeps the bearer token under the "token" key of local storage.
// Last writer wins.
type Store struct {
	local storage.Storage
}

func NewStore(local storage.Storage) *Store {
	return &Store{local: local}
}

// Get returns the stored token or "". Storage failures are logged and read
// as "no token" so callers degrade to unauthenticated.
func (s *Store) Get(ctx context.Context) string {
	value, ok, err := s.local.GetItem(ctx, storage.KeyToken)
	if err != nil {
		slog.Warn("token store read failed", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return value
}

func (s *Store) Set(ctx context.Context, raw string) error {
	return s.local.SetItem(ctx, storage.KeyToken, raw)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.local.RemoveItem(ctx, storage.KeyToken)
}
