package editorerr_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TodayNightt/branchy-text-editor/internal/editorerr"
)

func TestErrorFormatting(t *testing.T) {
	t.Parallel()

	err := editorerr.File("ReadFileError : disk full")
	assert.Equal(t, "FileError", err.Kind())
	assert.Equal(t, "FileError::ReadFileError : disk full", err.Error())
}

func TestToResponseTaggedError(t *testing.T) {
	t.Parallel()

	err := editorerr.NotFound("unknown file id 42")
	kind, message := editorerr.ToResponse(err)

	assert.Equal(t, "NotFoundError", kind)
	assert.Equal(t, "NotFoundError::unknown file id 42", message)
}

func TestToResponseWrappedError(t *testing.T) {
	t.Parallel()

	cause := editorerr.IO("read", assertErr)
	wrapped := fmt.Errorf("command failed: %w", cause)

	kind, message := editorerr.ToResponse(wrapped)

	assert.Equal(t, "IOError", kind)
	assert.Contains(t, message, "IOError::read")
}

func TestToResponseUntaggedError(t *testing.T) {
	t.Parallel()

	kind, message := editorerr.ToResponse(assertErr)

	require.Equal(t, "IOError", kind)
	assert.Equal(t, assertErr.Error(), message)
}

func TestToResponseNil(t *testing.T) {
	t.Parallel()

	kind, message := editorerr.ToResponse(nil)

	assert.Empty(t, kind)
	assert.Empty(t, message)
}

var assertErr = fmt.Errorf("boom")
