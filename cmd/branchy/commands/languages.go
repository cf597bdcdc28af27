package commands

import (
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/TodayNightt/branchy-text-editor/internal/langregistry"
)

// NewLanguagesCommand builds `branchy languages`, a tabular listing of
// every supported LanguageTag, styled like the teacher's
// cmd/codefang/commands/render.go diagnostic output.
func NewLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "languages",
		Short:         "List every supported language",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Language", "Query installed"})

			for _, tag := range langregistry.All() {
				_, ok := langregistry.LanguageToAssets(tag)
				status := color.GreenString("yes")

				if !ok {
					status = color.RedString("no")
				}

				t.AppendRow(table.Row{tag.String(), status})
			}

			t.Render()

			return nil
		},
	}
}
