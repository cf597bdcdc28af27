package mcpsurface_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TodayNightt/branchy-text-editor/internal/mcpsurface"
)

func TestNewSurfaceRegistersEveryCommand(t *testing.T) {
	t.Parallel()

	surface, err := mcpsurface.NewSurface(mcpsurface.Deps{})
	require.NoError(t, err)

	names := surface.ListToolNames()
	assert.Contains(t, names, mcpsurface.ToolOpenFile)
	assert.Contains(t, names, mcpsurface.ToolCloseFile)
	assert.Contains(t, names, mcpsurface.ToolGetSourceCodeIfAny)
	assert.Contains(t, names, mcpsurface.ToolSaveFile)
	assert.Contains(t, names, mcpsurface.ToolHandleFileChanges)
	assert.Contains(t, names, mcpsurface.ToolSetHighlights)
	assert.Contains(t, names, mcpsurface.ToolReset)
	assert.Contains(t, names, mcpsurface.ToolGetTokensLegend)
	assert.Contains(t, names, mcpsurface.ToolGetCurrentlySupportedLangs)
	assert.Contains(t, names, mcpsurface.ToolGetFileSystemInfo)
	assert.Len(t, names, 10)
}

func TestRunReturnsWhenContextCanceled(t *testing.T) {
	t.Parallel()

	surface, err := mcpsurface.NewSurface(mcpsurface.Deps{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = surface.Run(ctx)
}
