// Package main provides the entry point for the ltx-actions CLI.
package main

import (
	"fmt"
	"os"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/cmd/ltx-actions/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
