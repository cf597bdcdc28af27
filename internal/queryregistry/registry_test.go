package queryregistry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TodayNightt/branchy-text-editor/internal/langregistry"
	"github.com/TodayNightt/branchy-text-editor/internal/queryregistry"
)

func TestNewCompilesEveryLanguage(t *testing.T) {
	t.Parallel()

	reg, err := queryregistry.New()
	require.NoError(t, err)

	for _, tag := range langregistry.All() {
		entry, err := reg.Get(tag)
		require.NoError(t, err, tag)
		assert.NotNil(t, entry.Query, tag)
		assert.NotEmpty(t, entry.UnmodifiedLegend, tag)
		assert.NotEmpty(t, entry.ModifiedLegend.TokenTypes, tag)
	}
}

func TestGetUnknownLanguageIsNotFound(t *testing.T) {
	t.Parallel()

	reg, err := queryregistry.New()
	require.NoError(t, err)

	_, err = reg.Get(langregistry.LanguageTag("cobol"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NotFoundError")
}

func TestJavaScriptLegendCarriesLocalsSpecialIndices(t *testing.T) {
	t.Parallel()

	reg, err := queryregistry.New()
	require.NoError(t, err)

	entry, err := reg.Get(langregistry.JavaScript)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, entry.ScopeIndex, 0)
	assert.GreaterOrEqual(t, entry.DefinitionIndex, 0)
	assert.GreaterOrEqual(t, entry.ReferenceIndex, 0)
	assert.Equal(t, "local.scope", entry.UnmodifiedLegend[entry.ScopeIndex])
	assert.Equal(t, "local.definition", entry.UnmodifiedLegend[entry.DefinitionIndex])
	assert.Equal(t, "local.reference", entry.UnmodifiedLegend[entry.ReferenceIndex])
}

func TestPythonHasNoLocalsSpecialIndices(t *testing.T) {
	t.Parallel()

	reg, err := queryregistry.New()
	require.NoError(t, err)

	entry, err := reg.Get(langregistry.Python)
	require.NoError(t, err)

	assert.Equal(t, -1, entry.ScopeIndex)
	assert.Equal(t, -1, entry.DefinitionIndex)
	assert.Equal(t, -1, entry.ReferenceIndex)
}

func TestModifiedLegendDedupsAndSplitsOnDot(t *testing.T) {
	t.Parallel()

	reg, err := queryregistry.New()
	require.NoError(t, err)

	entry, err := reg.Get(langregistry.JavaScript)
	require.NoError(t, err)

	variableIdx, ok := entry.TokenTypeIndex("variable")
	require.True(t, ok)

	builtinIdx, ok := entry.ModifierIndex("builtin")
	if ok {
		assert.NotEqual(t, variableIdx, builtinIdx)
	}

	seen := make(map[string]bool)
	for _, tt := range entry.ModifiedLegend.TokenTypes {
		assert.False(t, seen[tt], "duplicate token type %s", tt)
		seen[tt] = true
	}
}
