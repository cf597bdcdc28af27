package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/TodayNightt/branchy-text-editor/internal/editorerr"
	"github.com/TodayNightt/branchy-text-editor/internal/highlight"
	"github.com/TodayNightt/branchy-text-editor/internal/langregistry"
	"github.com/TodayNightt/branchy-text-editor/internal/parserpool"
	"github.com/TodayNightt/branchy-text-editor/internal/queryregistry"
)

// NewParseCommand builds `branchy parse <file>`: parses a file and prints
// its tree S-expression plus the delta-encoded highlight stream as a
// table, styled like the teacher's cmd/codefang/commands/render.go.
func NewParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "parse <file>",
		Short:         "Parse a file and print its tree and highlight stream",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return runParse(cobraCmd.Context(), args[0])
		},
	}
}

func runParse(ctx context.Context, path string) error {
	ext := filepath.Ext(path)

	tag, ok := langregistry.ExtensionToLanguage(ext)
	if !ok {
		return editorerr.File(fmt.Sprintf("LanguageNotSupportError(%q)", ext))
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return editorerr.IO("read file", err)
	}

	pool := parserpool.New()

	tree, err := pool.Parse(ctx, tag, source, nil)
	if err != nil {
		return err
	}
	defer tree.Close()

	fmt.Println(tree.RootNode().String())
	fmt.Println()

	registry, err := queryregistry.New()
	if err != nil {
		return err
	}

	entry, err := registry.Get(tag)
	if err != nil {
		return err
	}

	tokens := highlight.Iterate(entry, tree.RootNode(), source)
	resolved := highlight.Resolve(entry, tokens)
	remapped := highlight.Remap(entry, resolved)
	stream := highlight.Emit(remapped)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"delta_row", "delta_col", "length", "token_type", "modifier"})

	for i := 0; i+5 <= len(stream); i += 5 {
		t.AppendRow(table.Row{stream[i], stream[i+1], stream[i+2], stream[i+3], stream[i+4]})
	}

	t.Render()

	return nil
}
