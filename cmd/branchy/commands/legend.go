package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/TodayNightt/branchy-text-editor/internal/langregistry"
	"github.com/TodayNightt/branchy-text-editor/internal/queryregistry"
)

// NewLegendCommand builds `branchy legend <language>`, printing the
// modified token-type/modifier legend get_tokens_legend would return.
func NewLegendCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "legend <language>",
		Short:         "Print a language's semantic-token legend",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			tag := langregistry.LanguageTag(args[0])

			registry, err := queryregistry.New()
			if err != nil {
				return err
			}

			entry, err := registry.Get(tag)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Index", "Token type"})

			for i, tt := range entry.ModifiedLegend.TokenTypes {
				t.AppendRow(table.Row{i, tt})
			}

			t.Render()

			fmt.Println()
			fmt.Println(color.CyanString("Modifiers:"))

			for i, m := range entry.ModifiedLegend.Modifiers {
				fmt.Printf("  %d: %s\n", i, m)
			}

			return nil
		},
	}
}
