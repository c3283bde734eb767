// Package storage provides the string key-value stores used to persist
// session history and host state.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrInvalidKey = errors.New("invalid key")
)

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Store is a string-keyed blob store. Values are opaque bytes; callers
// decide the encoding.
type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
	// List returns the keys starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// ValidateKey rejects keys that cannot be stored safely by every backend:
// empty keys, keys starting with a dot, and keys containing anything
// other than letters, digits, '-', '_' and '.'.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if len(key) > 200 {
		return fmt.Errorf("%w: too long", ErrInvalidKey)
	}
	if strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: %q starts with '.'", ErrInvalidKey, key)
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidKey, key, r)
		}
	}
	return nil
}

// Open creates the store selected by cfg. A nil cfg selects the file driver
// rooted at dataDir/storage.
func Open(cfg *types.StorageConfig, dataDir string) (Store, error) {
	driver := DriverFile
	path := ""
	if cfg != nil {
		if cfg.Driver != "" {
			driver = strings.ToLower(cfg.Driver)
		}
		path = cfg.Path
	}

	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		if path == "" {
			path = filepath.Join(dataDir, "storage")
		}
		return NewFile(afero.NewOsFs(), path), nil
	case DriverSQLite:
		if path == "" {
			path = filepath.Join(dataDir, "actions.db")
		}
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
