package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const fileExt = ".json"

// File stores each key as <base>/<key>.json on an afero filesystem.
type File struct {
	fs       afero.Fs
	basePath string
	locks    *keyLocks
}

// NewFile creates a file-backed store. The base directory is created lazily.
func NewFile(fs afero.Fs, basePath string) *File {
	return &File{
		fs:       fs,
		basePath: basePath,
		locks:    newKeyLocks(),
	}
}

// keyToFile converts a key to a file path.
func (s *File) keyToFile(key string) string {
	return filepath.Join(s.basePath, key+fileExt)
}

func (s *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(key)
	defer unlock()

	data, err := afero.ReadFile(s.fs, s.keyToFile(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Set writes to a temp file first, then renames it over the target.
func (s *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	unlock := s.locks.lock(key)
	defer unlock()

	filePath := s.keyToFile(key)
	tmpPath := filePath + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, value, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := s.fs.Rename(tmpPath, filePath); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

func (s *File) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	unlock := s.locks.lock(key)
	defer unlock()

	if err := s.fs.Remove(s.keyToFile(key)); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *File) List(ctx context.Context, prefix string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	keys := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		key := strings.TrimSuffix(name, fileExt)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *File) Close() error { return nil }
