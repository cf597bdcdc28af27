package filetable_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TodayNightt/branchy-text-editor/internal/filetable"
	"github.com/TodayNightt/branchy-text-editor/internal/langregistry"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadAssignsIDAndClassifiesLanguage(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "main.js", "const x = 1;")
	table := filetable.New()

	file, err := table.Load(path)
	require.NoError(t, err)
	require.NotNil(t, file.Language)
	assert.Equal(t, langregistry.JavaScript, *file.Language)
	assert.Equal(t, "main.js", file.Name)
}

func TestLoadUnsupportedExtensionStillOpens(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "notes.txt", "hello")
	table := filetable.New()

	file, err := table.Load(path)
	require.NoError(t, err)
	assert.Nil(t, file.Language)
}

func TestLoadSamePathReturnsSameFile(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "main.py", "x = 1")
	table := filetable.New()

	first, err := table.Load(path)
	require.NoError(t, err)

	second, err := table.Load(path)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestUpdateBufferAndReadBack(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "main.py", "x = 1")
	table := filetable.New()

	file, err := table.Load(path)
	require.NoError(t, err)

	require.NoError(t, table.UpdateBuffer(file.ID, []byte("x = 2")))

	refreshed, err := table.Get(file.ID)
	require.NoError(t, err)
	assert.Equal(t, "x = 2", string(refreshed.Buffer))
}

func TestReadIntoBufferRereadsFromDisk(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "main.py", "x = 1")
	table := filetable.New()

	file, err := table.Load(path)
	require.NoError(t, err)

	require.NoError(t, table.UpdateBuffer(file.ID, []byte("x = 2")))
	require.NoError(t, os.WriteFile(path, []byte("x = 3"), 0o644))

	buf, err := table.ReadIntoBuffer(file.ID)
	require.NoError(t, err)
	assert.Equal(t, "x = 3", string(buf))

	refreshed, err := table.Get(file.ID)
	require.NoError(t, err)
	assert.Equal(t, "x = 3", string(refreshed.Buffer))
}

func TestSavePersistsBufferToDisk(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "main.py", "x = 1")
	table := filetable.New()

	file, err := table.Load(path)
	require.NoError(t, err)

	require.NoError(t, table.UpdateBuffer(file.ID, []byte("x = 99")))
	require.NoError(t, table.Save(file.ID))

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 99", string(onDisk))
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "main.py", "x = 1")
	table := filetable.New()

	file, err := table.Load(path)
	require.NoError(t, err)

	table.Close(file.ID)
	table.Close(file.ID) // second close on an already-closed id must not panic

	_, err = table.Get(file.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NotFoundError")
}

func TestCacheHitsAndMissesTrackReuseVsDiskReads(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "main.py", "x = 1")
	table := filetable.New()

	_, err := table.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), table.CacheHits())
	assert.Equal(t, int64(1), table.CacheMisses())

	_, err = table.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1), table.CacheHits())
	assert.Equal(t, int64(1), table.CacheMisses())
}

func TestGetReturnsDefensiveCopy(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "main.py", "x = 1")
	table := filetable.New()

	file, err := table.Load(path)
	require.NoError(t, err)

	copy1, err := table.Get(file.ID)
	require.NoError(t, err)
	copy1.Buffer[0] = 'Y'

	copy2, err := table.Get(file.ID)
	require.NoError(t, err)
	assert.Equal(t, byte('x'), copy2.Buffer[0])
}

func TestClearRemovesAllFiles(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "main.py", "x = 1")
	table := filetable.New()

	file, err := table.Load(path)
	require.NoError(t, err)

	table.Clear()

	_, err = table.Get(file.ID)
	require.Error(t, err)
}
