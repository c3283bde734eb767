package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate [file|-]",
	Short: "Check a command batch without executing it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		result := action.ParseCommands(input)
		if err := NewRenderer(cmd.OutOrStdout(), validateJSON).Validation(result); err != nil {
			return err
		}
		if !result.OK() || len(result.Commands) == 0 {
			return errors.New("invalid command batch")
		}
		return nil
	},
}

var schemaJSON bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List the supported command types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return NewRenderer(cmd.OutOrStdout(), schemaJSON).Schema()
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the result as JSON")
	schemaCmd.Flags().BoolVar(&schemaJSON, "json", false, "Print the catalog as JSON")
}
