// Package app wires configuration, storage, the event bus, the reference
// UI host and the session service into one runtime shared by the CLI, the
// HTTP server and the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/config"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/event"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/executor"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/history"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/session"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/storage"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/uistate"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// DefaultSession is used when neither a flag, the environment nor the
// config names a session and a fresh one was not requested.
const DefaultSession = "default"

// Options select how a runtime is built.
type Options struct {
	// Directory is the project directory whose .ltx-actions config is read.
	Directory string
	// Session overrides the configured session id.
	Session string
	// NewSession generates a ULID session id when none is configured.
	NewSession bool
	// Config skips loading and uses this configuration instead.
	Config *types.Config
	// DataDir overrides the XDG data directory used for storage.
	DataDir string
}

// Runtime is a fully wired action protocol instance.
type Runtime struct {
	Config   *types.Config
	Store    storage.Store
	Bus      *event.Bus
	Host     *uistate.Host
	Executor *executor.Executor
	History  *history.Manager
	Tracker  *session.Tracker
	Service  *session.Service
}

// New loads configuration and builds a runtime.
func New(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		cfg, err = config.Load(opts.Directory)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		paths := config.GetPaths()
		if err := paths.EnsurePaths(); err != nil {
			return nil, fmt.Errorf("failed to create data directories: %w", err)
		}
		dataDir = paths.Data
	}

	store, err := storage.Open(cfg.Storage, dataDir)
	if err != nil {
		return nil, err
	}

	sessionID := resolveSession(opts, cfg)
	err = session.ValidateID(sessionID)
	if err == nil {
		err = storage.ValidateKey(uistate.KeyPrefix + sessionID)
	}
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}

	bus := event.NewBus()

	var hostOpts []uistate.Option
	hostOpts = append(hostOpts, uistate.WithBus(bus))
	if cfg.Host != nil {
		hostOpts = append(hostOpts, uistate.WithKnownFields(cfg.Host.KnownFields))
	}
	host := uistate.NewHost(hostOpts...)

	exec := executor.New(host.Capabilities(), executor.WithBus(bus))

	var histOpts []history.Option
	if n := cfg.HistoryMaxSize(); n > 0 {
		histOpts = append(histOpts, history.WithMaxSize(n))
	}
	hist := history.NewManager(histOpts...)

	tracker := session.NewTracker(store, sessionID)
	svc := session.NewService(exec, hist, tracker, session.WithBus(bus))

	logging.Debug().
		Str("session", sessionID).
		Str("storage", driverName(cfg)).
		Str("dataDir", dataDir).
		Msg("runtime ready")

	return &Runtime{
		Config:   cfg,
		Store:    store,
		Bus:      bus,
		Host:     host,
		Executor: exec,
		History:  hist,
		Tracker:  tracker,
		Service:  svc,
	}, nil
}

func resolveSession(opts Options, cfg *types.Config) string {
	switch {
	case strings.TrimSpace(opts.Session) != "":
		return strings.TrimSpace(opts.Session)
	case strings.TrimSpace(cfg.Session) != "":
		return strings.TrimSpace(cfg.Session)
	case opts.NewSession:
		return strings.ToLower(ulid.Make().String())
	default:
		return DefaultSession
	}
}

func driverName(cfg *types.Config) string {
	if cfg.Storage == nil || cfg.Storage.Driver == "" {
		return storage.DriverFile
	}
	return cfg.Storage.Driver
}

// SessionID returns the session the runtime persists to.
func (r *Runtime) SessionID() string { return r.Tracker.SessionID() }

// DefaultOptions returns the configured execution options.
func (r *Runtime) DefaultOptions() executor.Options {
	if r.Config.Executor == nil {
		return executor.Options{}
	}
	return executor.Options{
		SkipErrors: r.Config.Executor.SkipErrors,
		Silent:     r.Config.Executor.Silent,
	}
}

// Restore loads the persisted history log and UI state of the session.
// It returns the number of history entries restored.
func (r *Runtime) Restore(ctx context.Context) int {
	n := r.Service.Restore(ctx)
	if err := r.Host.Load(ctx, r.Store, r.SessionID()); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logging.Warn().Err(err).Str("session", r.SessionID()).Msg("failed to restore ui state")
	}
	return n
}

// SaveState persists the UI state of the session.
func (r *Runtime) SaveState(ctx context.Context) error {
	return r.Host.Save(ctx, r.Store, r.SessionID())
}

// Close releases the bus and the store.
func (r *Runtime) Close() error {
	return errors.Join(r.Bus.Close(), r.Store.Close())
}
