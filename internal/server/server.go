// Package server provides the HTTP server for the action protocol.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/event"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/executor"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/session"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/uistate"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// Config holds server configuration.
type Config struct {
	Port         int
	Hostname     string
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Defaults applies to runs whose request does not set the options.
	Defaults executor.Options
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:         4096,
		Hostname:     "127.0.0.1",
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No write timeout for SSE and WebSocket
	}
}

// FromAppConfig overlays the server section of an application config onto
// the defaults.
func FromAppConfig(appConfig *types.Config) *Config {
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}
	cfg.EnableCORS = appConfig.CORSEnabled()
	if appConfig.Server != nil {
		if appConfig.Server.Port != 0 {
			cfg.Port = appConfig.Server.Port
		}
		if appConfig.Server.Hostname != "" {
			cfg.Hostname = appConfig.Server.Hostname
		}
	}
	if appConfig.Executor != nil {
		cfg.Defaults = executor.Options{
			SkipErrors: appConfig.Executor.SkipErrors,
			Silent:     appConfig.Executor.Silent,
		}
	}
	return cfg
}

// Server is the HTTP server.
type Server struct {
	config  *Config
	router  *chi.Mux
	httpSrv *http.Server
	service *session.Service
	host    *uistate.Host
	bus     *event.Bus

	mu       sync.RWMutex
	defaults executor.Options
}

// New creates a new Server instance.
func New(cfg *Config, service *session.Service, host *uistate.Host, bus *event.Bus) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		service:  service,
		host:     host,
		bus:      bus,
		defaults: cfg.Defaults,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware for the server.
func (s *Server) setupMiddleware() {
	// Request ID
	s.router.Use(middleware.RequestID)

	// Logging
	s.router.Use(requestLogger)

	// Recover from panics
	s.router.Use(middleware.Recoverer)

	// Real IP
	s.router.Use(middleware.RealIP)

	// CORS
	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
}

// requestLogger logs one line per request through the global zerolog logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logging.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("requestID", middleware.GetReqID(r.Context())).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// Reload applies a freshly loaded configuration: the log level and the
// default run options. Listener settings need a restart.
func (s *Server) Reload(appConfig *types.Config) {
	if appConfig == nil {
		return
	}
	logging.Apply(appConfig)
	var defaults executor.Options
	if appConfig.Executor != nil {
		defaults = executor.Options{
			SkipErrors: appConfig.Executor.SkipErrors,
			Silent:     appConfig.Executor.Silent,
		}
	}
	s.mu.Lock()
	s.defaults = defaults
	s.mu.Unlock()
	logging.Info().Str("logLevel", appConfig.LogLevel).Msg("configuration reloaded")
}

func (s *Server) defaultOptions() executor.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Hostname, s.config.Port)
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	logging.Info().Str("addr", s.httpSrv.Addr).Msg("server listening")
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
