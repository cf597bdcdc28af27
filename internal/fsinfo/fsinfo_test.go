package fsinfo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TodayNightt/branchy-text-editor/internal/fsinfo"
)

func TestGetListsFilesAndDirectoriesWithAbsolutePaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.js"), []byte("const x = 1;"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "nested.py"), []byte("x = 1"), 0o644))

	info, err := fsinfo.Get(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(info.CurrentDirectory))
	require.Len(t, info.Entries, 2)

	var file, subdir *fsinfo.DirectoryItem

	for i := range info.Entries {
		e := info.Entries[i]
		if e.IsFile {
			file = &e
		} else {
			subdir = &e
		}
	}

	require.NotNil(t, file)
	assert.Equal(t, "javascript", file.Language)
	assert.NotEmpty(t, file.Size)
	assert.True(t, filepath.IsAbs(file.Path))

	require.NotNil(t, subdir)
	require.Len(t, subdir.Children, 1)
	assert.Equal(t, "python", subdir.Children[0].Language)
}

func TestGetDefaultsToHomeWithShallowerDepth(t *testing.T) {
	t.Parallel()

	info, err := fsinfo.Get("")
	require.NoError(t, err)
	assert.NotEmpty(t, info.CurrentDirectory)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	absHome, err := filepath.Abs(home)
	require.NoError(t, err)
	assert.Equal(t, absHome, info.CurrentDirectory)

	// Depth 2: top-level entries and their children are listed, but no
	// grandchildren.
	for _, entry := range info.Entries {
		for _, child := range entry.Children {
			assert.Empty(t, child.Children)
		}
	}
}
