// Package testutil starts real action servers on free ports and provides
// HTTP and SSE clients for black-box suites.
package testutil

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/app"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/server"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// TestServer wraps a running server and the runtime behind it.
type TestServer struct {
	Server  *server.Server
	Runtime *app.Runtime
	BaseURL string
	DataDir string
	port    int
	ownsDir bool
}

// TestServerOption configures TestServer
type TestServerOption func(*testServerConfig)

type testServerConfig struct {
	dataDir string
	session string
	config  *types.Config
}

// WithDataDir reuses a data directory, so a second server sees what the
// first one persisted.
func WithDataDir(dir string) TestServerOption {
	return func(c *testServerConfig) {
		c.dataDir = dir
	}
}

// WithSession sets the session id.
func WithSession(id string) TestServerOption {
	return func(c *testServerConfig) {
		c.session = id
	}
}

// WithConfig replaces the application config.
func WithConfig(cfg *types.Config) TestServerOption {
	return func(c *testServerConfig) {
		c.config = cfg
	}
}

// StartTestServer creates, restores and starts a test server.
func StartTestServer(opts ...TestServerOption) (*TestServer, error) {
	cfg := &testServerConfig{config: &types.Config{}}
	for _, opt := range opts {
		opt(cfg)
	}

	ownsDir := false
	if cfg.dataDir == "" {
		dir, err := os.MkdirTemp("", "ltx-actions-test-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp dir: %w", err)
		}
		cfg.dataDir = dir
		ownsDir = true
	}
	cleanup := func() {
		if ownsDir {
			os.RemoveAll(cfg.dataDir)
		}
	}

	rt, err := app.New(app.Options{
		Session: cfg.session,
		Config:  cfg.config,
		DataDir: cfg.dataDir,
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to build runtime: %w", err)
	}
	rt.Restore(context.Background())

	port, err := findAvailablePort()
	if err != nil {
		rt.Close()
		cleanup()
		return nil, fmt.Errorf("failed to find available port: %w", err)
	}

	serverConfig := server.FromAppConfig(cfg.config)
	serverConfig.Port = port
	serverConfig.Hostname = "127.0.0.1"
	serverConfig.Defaults = rt.DefaultOptions()
	srv := server.New(serverConfig, rt.Service, rt.Host, rt.Bus)

	go func() {
		_ = srv.Start()
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	if err := waitForServer(baseURL, 10*time.Second); err != nil {
		srv.Shutdown(context.Background())
		rt.Close()
		cleanup()
		return nil, fmt.Errorf("server failed to start: %w", err)
	}

	return &TestServer{
		Server:  srv,
		Runtime: rt,
		BaseURL: baseURL,
		DataDir: cfg.dataDir,
		port:    port,
		ownsDir: ownsDir,
	}, nil
}

// Stop shuts down the server, saves the UI state and cleans up a data
// directory the server created itself.
func (ts *TestServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ts.Server.Shutdown(ctx); err != nil {
		return err
	}
	if err := ts.Runtime.SaveState(ctx); err != nil {
		return err
	}
	if err := ts.Runtime.Close(); err != nil {
		return err
	}
	if ts.ownsDir {
		os.RemoveAll(ts.DataDir)
	}
	return nil
}

// Client returns a new test client for this server
func (ts *TestServer) Client() *TestClient {
	return NewTestClient(ts.BaseURL)
}

// SSEClient returns a new SSE client for this server
func (ts *TestServer) SSEClient() *SSEClient {
	return NewSSEClient(ts.BaseURL)
}

// findAvailablePort finds an available TCP port
func findAvailablePort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}

// waitForServer waits for the server to be ready
func waitForServer(baseURL string, timeout time.Duration) error {
	client := NewTestClient(baseURL)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(context.Background(), "/actions/schema")
		if err == nil && resp.StatusCode == http.StatusOK {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}

	return fmt.Errorf("server not ready after %v", timeout)
}
