package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"file":   NewFile(afero.NewMemMapFs(), "/data/storage"),
		"sqlite": sqlite,
	}
}

func TestStore_SetAndGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.Set(ctx, "ltx-action-history-abc", []byte(`{"a":1}`)))

			got, err := s.Get(ctx, "ltx-action-history-abc")
			require.NoError(t, err)
			assert.Equal(t, `{"a":1}`, string(got))

			require.NoError(t, s.Set(ctx, "ltx-action-history-abc", []byte(`{"a":2}`)))
			got, err = s.Get(ctx, "ltx-action-history-abc")
			require.NoError(t, err)
			assert.Equal(t, `{"a":2}`, string(got))
		})
	}
}

func TestStore_GetNotFound(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.Set(ctx, "k", []byte("v")))
			require.NoError(t, s.Delete(ctx, "k"))

			_, err := s.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting an absent key is not an error.
			assert.NoError(t, s.Delete(ctx, "k"))
		})
	}
}

func TestStore_ListPrefix(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			keys, err := s.List(ctx, "ltx-")
			require.NoError(t, err)
			assert.Empty(t, keys)

			for _, k := range []string{"ltx-ui-state-b", "ltx-action-history-b", "ltx-action-history-a", "other"} {
				require.NoError(t, s.Set(ctx, k, []byte("{}")))
			}

			keys, err = s.List(ctx, "ltx-action-history-")
			require.NoError(t, err)
			assert.Equal(t, []string{"ltx-action-history-a", "ltx-action-history-b"}, keys)

			all, err := s.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 4)
		})
	}
}

func TestStore_InvalidKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, key := range []string{"", "../escape", ".hidden", "a/b", "spaced key"} {
				assert.ErrorIs(t, s.Set(ctx, key, []byte("x")), ErrInvalidKey, key)
				_, err := s.Get(ctx, key)
				assert.ErrorIs(t, err, ErrInvalidKey, key)
			}
		})
	}
}

func TestMemory_CopiesValues(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFile_Layout(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewFile(fs, "/data")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ltx-action-history-s1", []byte("[]")))

	exists, err := afero.Exists(fs, "/data/ltx-action-history-s1.json")
	require.NoError(t, err)
	assert.True(t, exists)

	tmp, err := afero.Exists(fs, "/data/ltx-action-history-s1.json.tmp")
	require.NoError(t, err)
	assert.False(t, tmp, "temp file should be renamed away")

	// Stray files are ignored by List.
	require.NoError(t, afero.WriteFile(fs, "/data/notes.txt", []byte("x"), 0644))
	keys, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"ltx-action-history-s1"}, keys)
}

func TestFile_ConcurrentWrites(t *testing.T) {
	s := NewFile(afero.NewMemMapFs(), "/data")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Set(ctx, "shared", []byte(`"value"`)))
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, `"value"`, string(got))
	assert.Equal(t, 0, s.locks.size())
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "actions.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestOpen_Drivers(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(nil, dir)
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	s, err = Open(&types.StorageConfig{Driver: "memory"}, dir)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(&types.StorageConfig{Driver: "SQLite"}, dir)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(&types.StorageConfig{Driver: "redis"}, dir)
	assert.Error(t, err)
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("ltx-action-history-01HZX.v2_a"))
	err := ValidateKey("a b")
	assert.True(t, errors.Is(err, ErrInvalidKey))
}
