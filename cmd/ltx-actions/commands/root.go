// Package commands provides the CLI commands for ltx-actions.
package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/app"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	printLogs bool
	logLevel  string
	sessionID string
	workDir   string
)

// annotationLogs marks commands that always log to stderr.
const annotationLogs = "logs"

var rootCmd = &cobra.Command{
	Use:   "ltx-actions",
	Short: "Run assistant-issued UI commands against the LTX prompt builder",
	Long: `ltx-actions parses, validates and executes the JSON command batches an
assistant emits to drive the LTX prompt builder UI, and keeps an undo/redo
history of every batch per session.

Run 'ltx-actions run commands.json' to execute a batch, or 'ltx-actions serve'
to expose the protocol over HTTP.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "Session ID whose history is used")
	rootCmd.PersistentFlags().StringVar(&workDir, "directory", "", "Project directory (defaults to the working directory)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("ltx-actions %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads .env files and configures logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	if workDir != "" {
		_ = godotenv.Load(filepath.Join(workDir, ".env"))
	}

	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(logLevel)
	cfg.Pretty = true
	if !printLogs && cmd.Annotations[annotationLogs] == "" {
		cfg.Output = io.Discard
	}
	logging.Init(cfg)
	return nil
}

// openRuntime builds the runtime for the current flags. The config's log
// level applies unless --log-level was given.
func openRuntime(cmd *cobra.Command, newSession bool) (*app.Runtime, error) {
	dir, err := GetWorkDir(workDir)
	if err != nil {
		return nil, err
	}
	rt, err := app.New(app.Options{
		Directory:  dir,
		Session:    sessionID,
		NewSession: newSession,
	})
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("log-level") && rt.Config.LogLevel != "" {
		logging.SetLevel(logging.ParseLevel(rt.Config.LogLevel))
	}
	logging.BindSession(rt.SessionID())
	return rt, nil
}

// GetWorkDir returns the working directory from flag or current directory.
func GetWorkDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}
