package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/app"
)

var (
	historyJSON  bool
	exportQuery  string
	exportOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and navigate the session's command history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded batches",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
		return NewRenderer(cmd.OutOrStdout(), historyJSON).History(rt.History.Snapshot())
	}),
}

var historyUndoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Step the history pointer back one batch",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
		moved := rt.Service.Undo(cmd.Context())
		return NewRenderer(cmd.OutOrStdout(), historyJSON).Moved("undo", moved, rt.History.Snapshot())
	}),
}

var historyRedoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Step the history pointer forward one batch",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
		moved := rt.Service.Redo(cmd.Context())
		return NewRenderer(cmd.OutOrStdout(), historyJSON).Moved("redo", moved, rt.History.Snapshot())
	}),
}

var historyGotoCmd = &cobra.Command{
	Use:   "goto <index>",
	Short: "Move the history pointer to an entry (-1 for before the first)",
	Args:  cobra.ExactArgs(1),
	RunE: withRuntime(func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("index must be an integer: %q", args[0])
		}
		if !rt.Service.GoTo(cmd.Context(), index) {
			return fmt.Errorf("index %d out of range (history has %d entries)", index, len(rt.History.Entries()))
		}
		return NewRenderer(cmd.OutOrStdout(), historyJSON).Moved("goto", true, rt.History.Snapshot())
	}),
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history log as JSON",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
		data, err := rt.Service.Export()
		if err != nil {
			return err
		}
		if exportQuery != "" {
			if data, err = applyQuery(exportQuery, data); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}),
}

var historyImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Replace the history log with an exported one",
	Args:  cobra.ExactArgs(1),
	RunE: withRuntime(func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
		input, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		if err := rt.Service.Import(cmd.Context(), []byte(input)); err != nil {
			return fmt.Errorf("import rejected: %w", err)
		}
		return NewRenderer(cmd.OutOrStdout(), historyJSON).History(rt.History.Snapshot())
	}),
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the session's history",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
		rt.Service.ClearHistory(cmd.Context())
		return NewRenderer(cmd.OutOrStdout(), historyJSON).History(rt.History.Snapshot())
	}),
}

func init() {
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "Print output as JSON")
	historyExportCmd.Flags().StringVarP(&exportQuery, "query", "q", "", "jq filter applied to the exported log")
	historyExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyUndoCmd)
	historyCmd.AddCommand(historyRedoCmd)
	historyCmd.AddCommand(historyGotoCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyImportCmd)
	historyCmd.AddCommand(historyClearCmd)
}

// withRuntime opens the session runtime and restores its history before
// running fn.
func withRuntime(fn func(cmd *cobra.Command, rt *app.Runtime, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()
		rt.Restore(cmd.Context())
		return fn(cmd, rt, args)
	}
}

// applyQuery runs a jq filter over a JSON document. Multiple results are
// returned as a JSON array.
func applyQuery(filter string, data []byte) ([]byte, error) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("query parse error: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("query compile error: %w", err)
	}

	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, err
	}

	var results []any
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("query error: %w", err)
		}
		results = append(results, v)
	}

	if len(results) == 1 {
		return json.MarshalIndent(results[0], "", "  ")
	}
	if results == nil {
		results = []any{}
	}
	return json.MarshalIndent(results, "", "  ")
}
