package outwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.js")
	require.NoError(t, Write(path, "export {}"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "export {}", string(got))
}

func TestWriteOverwritesExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.js")
	require.NoError(t, Write(path, "first"))
	require.NoError(t, Write(path, "second"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestWriteLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.js")
	require.NoError(t, Write(path, "content"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.js", entries[0].Name())
}
