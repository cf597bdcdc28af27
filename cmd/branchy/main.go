// Package main provides the entry point for the branchy editor backend CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TodayNightt/branchy-text-editor/cmd/branchy/commands"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "branchy",
		Short: "Branchy editor backend - incremental parsing and semantic highlighting",
		Long: `Branchy is the native backend for a source-code editor, providing
incremental tree-sitter parsing and delta-encoded semantic-highlighting
tokens over an MCP command surface.

Commands:
  serve      Start the editor command surface over MCP stdio
  languages  List every supported language
  legend     Print a language's semantic-token legend
  parse      Parse a file and print its tree and highlight stream
  inspect    Summarize a file's parse tree shape`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (no subcommand reads this flag)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output (no subcommand reads this flag)")

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewLanguagesCommand())
	rootCmd.AddCommand(commands.NewLegendCommand())
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
