// Command ltx-actions-mcp serves the action protocol tools over MCP on stdio
// for clients that launch a dedicated binary.
package main

import (
	"context"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/app"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/config"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/mcpserver/actions"
)

func main() {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.Disabled
	if level := os.Getenv(config.EnvLogLevel); level != "" {
		cfg.Level = logging.ParseLevel(level)
	}
	logging.Init(cfg)

	dir, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	rt, err := app.New(app.Options{Directory: dir})
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close()
	logging.BindSession(rt.SessionID())

	ctx := context.Background()
	rt.Restore(ctx)

	err = server.ServeStdio(actions.NewServer(rt.Service, rt.Host))
	if saveErr := rt.SaveState(ctx); saveErr != nil {
		log.Printf("failed to save ui state: %v", saveErr)
	}
	if err != nil {
		log.Fatal(err)
	}
}
