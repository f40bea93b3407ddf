package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"rescue-console/internal/model"
)

// File persists items as one JSON document, optionally sealed with a
// passphrase. Every write rewrites the file through a temp file and rename.
type File struct {
	path       string
	passphrase string

	mu     sync.Mutex
	items  map[string]string
	sealer *sealer
}

func NewFile(path string, passphrase string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage file path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	f := &File{path: path, passphrase: passphrase, items: map[string]string{}}
	if err := f.load(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) GetItem(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.items[key]
	return value, ok, nil
}

func (f *File) SetItem(_ context.Context, key string, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	previous, existed := f.items[key]
	f.items[key] = value
	if err := f.saveLocked(); err != nil {
		if existed {
			f.items[key] = previous
		} else {
			delete(f.items, key)
		}
		return err
	}

	return nil
}

func (f *File) RemoveItem(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	previous, existed := f.items[key]
	if !existed {
		return nil
	}

	delete(f.items, key)
	if err := f.saveLocked(); err != nil {
		f.items[key] = previous
		return err
	}

	return nil
}

func (f *File) load() error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return f.initSealer(nil)
	}
	if err != nil {
		return fmt.Errorf("read storage file: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return f.initSealer(nil)
	}

	if f.passphrase == "" {
		return f.decodeItems(data)
	}

	var sealed sealedFile
	if err := json.Unmarshal(data, &sealed); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrStorageCorrupt, f.path, err)
	}

	if err := f.initSealer(sealed.Salt); err != nil {
		return err
	}

	plain, err := f.sealer.open(sealed)
	if err != nil {
		return err
	}

	return f.decodeItems(plain)
}

func (f *File) decodeItems(data []byte) error {
	var items map[string]string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrStorageCorrupt, f.path, err)
	}
	// a file holding JSON null decodes to a nil map
	if items == nil {
		items = map[string]string{}
	}
	f.items = items
	return nil
}

func (f *File) initSealer(salt []byte) error {
	if f.passphrase == "" {
		return nil
	}

	s, err := newSealer(f.passphrase, salt)
	if err != nil {
		return err
	}
	f.sealer = s
	return nil
}

func (f *File) saveLocked() error {
	data, err := json.MarshalIndent(f.items, "", "  ")
	if err != nil {
		return err
	}

	if f.sealer != nil {
		sealed, err := f.sealer.seal(data)
		if err != nil {
			return err
		}
		if data, err = json.Marshal(sealed); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp storage file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close storage file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace storage file: %w", err)
	}

	return nil
}
