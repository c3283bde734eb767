package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/app"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/config"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/event"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/server"
)

var (
	servePort     int
	serveHostname string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the action protocol HTTP server",
	Long: `Start a server that executes command batches over HTTP and WebSocket
and streams protocol events over SSE.

Configuration files are watched; log level and default run options are
reloaded on change.`,
	Annotations: map[string]string{annotationLogs: "true"},
	RunE:        runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default 4096)")
	serveCmd.Flags().StringVar(&serveHostname, "hostname", "", "Hostname to listen on (default 127.0.0.1)")
}

func runServe(cmd *cobra.Command, args []string) error {
	dir, err := GetWorkDir(workDir)
	if err != nil {
		return err
	}

	rt, err := openRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	restored := rt.Restore(ctx)
	logging.Info().
		Str("version", Version).
		Str("directory", dir).
		Str("session", rt.SessionID()).
		Int("restored", restored).
		Msg("starting action server")

	serverConfig := server.FromAppConfig(rt.Config)
	if servePort != 0 {
		serverConfig.Port = servePort
	}
	if serveHostname != "" {
		serverConfig.Hostname = serveHostname
	}
	serverConfig.Defaults = rt.DefaultOptions()

	srv := server.New(serverConfig, rt.Service, rt.Host, rt.Bus)

	stopSaver := persistState(ctx, rt)
	defer stopSaver()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		for range config.Watch(gctx, config.Files(dir)...) {
			cfg, err := config.Load(dir)
			if err != nil {
				logging.Warn().Err(err).Msg("ignoring invalid configuration")
				continue
			}
			srv.Reload(cfg)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("server shutdown error")
		}
		stopSaver()
		if err := rt.SaveState(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("failed to save ui state")
		}
		return nil
	})

	err = g.Wait()
	logging.Info().Msg("server stopped")
	return err
}

// persistState saves the UI state whenever a command changes it. One
// goroutine does the saving and a burst of changes collapses into a single
// save of the latest state. The returned func stops the saver and waits
// for an in-flight save; it is safe to call more than once.
func persistState(ctx context.Context, rt *app.Runtime) func() {
	pending := make(chan struct{}, 1)
	quit := make(chan struct{})
	done := make(chan struct{})

	unsubscribe := rt.Bus.Subscribe(event.StateChanged, func(event.Event) {
		select {
		case pending <- struct{}{}:
		default:
		}
	})

	saveCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		for {
			select {
			case <-quit:
				return
			case <-pending:
				if err := rt.SaveState(saveCtx); err != nil {
					logging.Warn().Err(err).Str("session", rt.SessionID()).Msg("failed to save ui state")
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			close(quit)
			<-done
		})
	}
}
