package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// isolate points every config source at an empty temp directory.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	for _, env := range []string{EnvConfig, EnvConfigContent, EnvLogLevel, EnvSession, EnvStorage, EnvStoragePath, EnvHistorySize, EnvPort} {
		t.Setenv(env, "")
	}
	return tmp
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Empty(t *testing.T) {
	tmp := isolate(t)

	cfg, err := Load(tmp)
	require.NoError(t, err)
	assert.Equal(t, &types.Config{}, cfg)
	assert.Equal(t, 0, cfg.HistoryMaxSize())
	assert.True(t, cfg.CORSEnabled())
}

func TestLoad_JSONCWithComments(t *testing.T) {
	tmp := isolate(t)

	writeFile(t, filepath.Join(tmp, ProjectDirName, "actions.jsonc"), `{
		// storage backend
		"storage": {"driver": "sqlite", "path": "/tmp/a.db"},
		"history": {"maxSize": 25}, /* trailing */
		"server": {"port": 4242, "cors": false},
	}`)

	cfg, err := Load(tmp)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/a.db", cfg.Storage.Path)
	assert.Equal(t, 25, cfg.HistoryMaxSize())
	assert.Equal(t, 4242, cfg.Server.Port)
	assert.False(t, cfg.CORSEnabled())
}

func TestLoad_YAMLOverridesGlobal(t *testing.T) {
	tmp := isolate(t)

	writeFile(t, filepath.Join(tmp, "config", AppName, "actions.json"), `{
		"logLevel": "DEBUG",
		"session": "global",
		"host": {"knownFields": ["genre"]}
	}`)
	writeFile(t, filepath.Join(tmp, ProjectDirName, "actions.yaml"), `
session: project
host:
  knownFields: [genre, tone, lighting]
executor:
  silent: true
`)

	cfg, err := Load(tmp)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "project", cfg.Session)
	assert.Equal(t, []string{"genre", "tone", "lighting"}, cfg.Host.KnownFields)
	require.NotNil(t, cfg.Executor)
	assert.True(t, cfg.Executor.Silent)
}

func TestLoad_Interpolation(t *testing.T) {
	tmp := isolate(t)
	t.Setenv("TEST_LTX_SESSION", "from-env")

	writeFile(t, filepath.Join(tmp, ProjectDirName, "actions.json"), `{"session": "{env:TEST_LTX_SESSION}"}`)

	cfg, err := Load(tmp)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Session)
}

func TestLoad_ConfigFileAndInlineContent(t *testing.T) {
	tmp := isolate(t)

	custom := filepath.Join(tmp, "elsewhere", "custom.json")
	writeFile(t, custom, `{"session": "custom", "logLevel": "WARN"}`)
	t.Setenv(EnvConfig, custom)
	t.Setenv(EnvConfigContent, `{"session": "inline"}`)

	cfg, err := Load(tmp)
	require.NoError(t, err)
	assert.Equal(t, "inline", cfg.Session)
	assert.Equal(t, "WARN", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmp := isolate(t)

	writeFile(t, filepath.Join(tmp, ProjectDirName, "actions.json"), `{"server": {"port": 1000}}`)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvSession, "env-session")
	t.Setenv(EnvStorage, "memory")
	t.Setenv(EnvStoragePath, "/srv/kv")
	t.Setenv(EnvHistorySize, "7")
	t.Setenv(EnvPort, "8080")

	cfg, err := Load(tmp)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "env-session", cfg.Session)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "/srv/kv", cfg.Storage.Path)
	assert.Equal(t, 7, cfg.HistoryMaxSize())
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_Errors(t *testing.T) {
	tmp := isolate(t)

	t.Setenv(EnvHistorySize, "lots")
	_, err := Load(tmp)
	assert.Error(t, err)

	t.Setenv(EnvHistorySize, "")
	writeFile(t, filepath.Join(tmp, ProjectDirName, "actions.json"), `{"history": `)
	_, err = Load(tmp)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	tmp := isolate(t)
	cors := false
	cfg := &types.Config{
		LogLevel: "INFO",
		Storage:  &types.StorageConfig{Driver: "file", Path: "/data"},
		Server:   &types.ServerConfig{Port: 9000, CORS: &cors},
	}

	for _, name := range []string{"actions.json", "actions.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmp, ProjectDirName, name)
			require.NoError(t, Save(cfg, path))
			defer os.Remove(path)

			loaded, err := Load(tmp)
			require.NoError(t, err)
			assert.Equal(t, "INFO", loaded.LogLevel)
			assert.Equal(t, "/data", loaded.Storage.Path)
			assert.Equal(t, 9000, loaded.Server.Port)
			assert.False(t, loaded.CORSEnabled())
		})
	}
}

func TestGetPaths(t *testing.T) {
	tmp := isolate(t)

	p := GetPaths()
	assert.Equal(t, filepath.Join(tmp, "config", AppName), p.Config)
	assert.Equal(t, filepath.Join(tmp, "data", AppName), p.Data)
	require.NoError(t, p.EnsurePaths())
	assert.DirExists(t, p.State)

	assert.Equal(t, filepath.Join(p.Config, "actions.json"), GlobalConfigPath())
	assert.Equal(t, filepath.Join("proj", ProjectDirName, "actions.json"), ProjectConfigPath("proj"))
}

func TestFiles_Order(t *testing.T) {
	tmp := isolate(t)
	t.Setenv(EnvConfig, "/etc/custom.json")

	files := Files(tmp)
	require.Len(t, files, 2*len(FileNames)+1)
	assert.Equal(t, filepath.Join(tmp, "config", AppName, "actions.json"), files[0])
	assert.Equal(t, filepath.Join(tmp, ProjectDirName, "actions.yml"), files[2*len(FileNames)-1])
	assert.Equal(t, "/etc/custom.json", files[len(files)-1])
}

func TestWatch_DebouncesWrites(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "actions.json")
	writeFile(t, path, `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := watch(ctx, 50*time.Millisecond, path)

	for i := 0; i < 3; i++ {
		writeFile(t, path, `{"session":"x"}`)
	}

	select {
	case _, ok := <-ch:
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a reload signal")
	}

	// Writes to unrelated files in the same directory are ignored.
	writeFile(t, filepath.Join(tmp, "other.json"), `{}`)
	select {
	case <-ch:
		t.Fatal("unexpected reload for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel closes after cancel")
	case <-time.After(time.Second):
		t.Fatal("watch goroutine did not stop")
	}
}
