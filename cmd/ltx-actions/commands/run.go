package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/executor"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
)

var (
	runSkipErrors bool
	runSilent     bool
	runJSON       bool
	runDiff       bool
)

var runCmd = &cobra.Command{
	Use:   "run [file|-]",
	Short: "Execute a batch of UI commands",
	Long: `Execute a JSON command batch against the session's UI state and record
it in the undo history.

The batch is read from the given file, or from stdin when the argument is
'-' or omitted. It is either a JSON array of commands or a single command
object.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runSkipErrors, "skip-errors", false, "Do not notify or exit non-zero on failed commands")
	runCmd.Flags().BoolVar(&runSilent, "silent", false, "Suppress failure notifications")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the report as JSON")
	runCmd.Flags().BoolVar(&runDiff, "diff", false, "Print a diff of the UI state")
}

func runRun(cmd *cobra.Command, args []string) error {
	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	rt, err := openRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	rt.Restore(ctx)

	opts := rt.DefaultOptions()
	if cmd.Flags().Changed("skip-errors") {
		opts.SkipErrors = runSkipErrors
	}
	if cmd.Flags().Changed("silent") {
		opts.Silent = runSilent
	}

	before := rt.Host.State()
	report := rt.Service.Run(ctx, input, opts)
	after := rt.Host.State()

	if err := rt.SaveState(ctx); err != nil {
		logging.Warn().Err(err).Str("session", rt.SessionID()).Msg("failed to save ui state")
	}

	r := NewRenderer(cmd.OutOrStdout(), runJSON)
	if err := r.Report(report); err != nil {
		return err
	}
	if len(after.Toasts) > len(before.Toasts) {
		r.Toasts(after.Toasts[len(before.Toasts):])
	}
	if runDiff {
		if err := r.StateDiff(before, after); err != nil {
			return err
		}
	}

	return runError(report.FailureCount, len(report.ParseErrors), opts)
}

// runError turns failures into a non-zero exit unless errors are skipped.
func runError(failures, parseErrors int, opts executor.Options) error {
	if opts.SkipErrors {
		return nil
	}
	switch {
	case failures > 0 && parseErrors > 0:
		return fmt.Errorf("%d commands failed, %d rejected by the parser", failures, parseErrors)
	case failures > 0:
		return fmt.Errorf("%d commands failed", failures)
	case parseErrors > 0:
		return fmt.Errorf("%d commands rejected by the parser", parseErrors)
	}
	return nil
}

// readInput reads the command payload from a file argument or stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}
