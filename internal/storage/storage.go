package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"unicode"

	"rescue-console/pkg/apierror"
)

// Storage is a string key/value area with the semantics of browser web
// storage: a missing key is reported with ok == false, not an error.
// Implementations must be safe for concurrent use.
type Storage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key string, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Well-known keys.
const (
	KeyToken     = "token"
	KeyRequestID = "X-Request-ID"
)

func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return apierror.New("INVALID_KEY", "storage key cannot be empty", "", http.StatusBadRequest)
	}

	if hasControlCharacters(key) {
		return apierror.New("INVALID_KEY", "storage key contains invalid characters", fmt.Sprintf("%q", key), http.StatusBadRequest)
	}

	return nil
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}

// Memory keeps items for the lifetime of the process. It backs the
// session-scoped area and is the default in tests.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemory() *Memory {
	return &Memory{items: map[string]string{}}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.items[key]
	return value, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key string, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	m.items[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
