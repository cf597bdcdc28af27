package highlight_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TodayNightt/branchy-text-editor/internal/highlight"
	"github.com/TodayNightt/branchy-text-editor/internal/langregistry"
	"github.com/TodayNightt/branchy-text-editor/internal/parserpool"
	"github.com/TodayNightt/branchy-text-editor/internal/queryregistry"
)

// scenarioASource is SPEC_FULL.md §8 scenario A's literal input.
const scenarioASource = "function main() { for (let i = 0; i < 10; i++) {} } main();"

func parseScenarioA(t *testing.T) (*queryregistry.Registry, *queryregistry.QueryEntry, []byte) {
	t.Helper()

	reg, err := queryregistry.New()
	require.NoError(t, err)

	entry, err := reg.Get(langregistry.JavaScript)
	require.NoError(t, err)

	return reg, entry, []byte(scenarioASource)
}

func TestScenarioATreeShape(t *testing.T) {
	t.Parallel()

	_, _, source := parseScenarioA(t)

	pool := parserpool.New()
	tree, err := pool.Parse(context.Background(), langregistry.JavaScript, source, nil)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.False(t, root.IsNull())
	assert.Equal(t, "program", root.Type())
}

// TestScenarioBHighlightsOverFullBuffer exercises the full iterate/sort/
// remap/emit chain over scenario A's buffer and checks the well-formedness
// properties from SPEC_FULL.md §8 invariant 4 and scenario B.
func TestScenarioBHighlightsOverFullBuffer(t *testing.T) {
	t.Parallel()

	_, entry, source := parseScenarioA(t)

	pool := parserpool.New()
	tree, err := pool.Parse(context.Background(), langregistry.JavaScript, source, nil)
	require.NoError(t, err)
	defer tree.Close()

	tokens := highlight.Iterate(entry, tree.RootNode(), source)
	require.NotEmpty(t, tokens)

	resolved := highlight.Resolve(entry, tokens)
	remapped := highlight.Remap(entry, resolved)
	stream := highlight.Emit(remapped)

	require.NotEmpty(t, stream)
	assert.Equal(t, 0, len(stream)%5, "delta stream length must be a multiple of 5")
	assert.Equal(t, uint32(0), stream[0], "first token's delta_row must be 0")

	assertMonotoneDeltaStream(t, stream)
}

func assertMonotoneDeltaStream(t *testing.T, stream []uint32) {
	t.Helper()

	var row, col uint32

	var prevRow, prevCol uint32

	first := true

	for i := 0; i+5 <= len(stream); i += 5 {
		deltaRow, deltaCol := stream[i], stream[i+1]

		if deltaRow == 0 {
			col += deltaCol
		} else {
			row += deltaRow
			col = deltaCol
		}

		if !first {
			assert.True(t, row > prevRow || (row == prevRow && col >= prevCol),
				"positions must be non-decreasing: (%d,%d) after (%d,%d)", row, col, prevRow, prevCol)
		}

		prevRow, prevCol = row, col
		first = false
	}
}

func TestRemapProducesIndicesWithinModifiedLegend(t *testing.T) {
	t.Parallel()

	_, entry, source := parseScenarioA(t)

	pool := parserpool.New()
	tree, err := pool.Parse(context.Background(), langregistry.JavaScript, source, nil)
	require.NoError(t, err)
	defer tree.Close()

	tokens := highlight.Iterate(entry, tree.RootNode(), source)
	resolved := highlight.Resolve(entry, tokens)
	remapped := highlight.Remap(entry, resolved)

	maxModifiers := len(entry.ModifiedLegend.Modifiers)
	if maxModifiers == 0 {
		maxModifiers = 1
	}

	for _, r := range remapped {
		assert.Less(t, int(r.NewTokenType), len(entry.ModifiedLegend.TokenTypes))
		assert.Less(t, int(r.NewModifier), maxModifiers)
	}
}

func TestEmitDropsExactRangeDuplicates(t *testing.T) {
	t.Parallel()

	tokens := []highlight.RemapResult{
		{Token: highlight.Token{StartByte: 0, EndByte: 3, StartRow: 0, StartCol: 0, Length: 3}, NewTokenType: 1},
		{Token: highlight.Token{StartByte: 0, EndByte: 3, StartRow: 0, StartCol: 0, Length: 3}, NewTokenType: 2},
	}

	stream := highlight.Emit(tokens)
	assert.Len(t, stream, 5)
}
