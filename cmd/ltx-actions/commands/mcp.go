package commands

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/mcpserver/actions"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the action tools over MCP on stdio",
	Long: `Serve execute, validate, state, undo and redo tools to an MCP client over
stdin/stdout. Logs never go to stdout; use --print-logs to send them to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		rt.Restore(ctx)

		err = server.ServeStdio(actions.NewServer(rt.Service, rt.Host))
		if saveErr := rt.SaveState(ctx); saveErr != nil {
			logging.Warn().Err(saveErr).Msg("failed to save ui state")
		}
		return err
	},
}
