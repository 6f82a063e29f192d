package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("component A{}"), 0o644))
}

func TestWalkFindsLvFilesRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.lv"))
	writeFile(t, filepath.Join(root, "nested", "b.lv"))
	writeFile(t, filepath.Join(root, "ignore.txt"))

	got, err := Walk(context.Background(), DefaultScope(root))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestWalkHonorsExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.lv"))
	writeFile(t, filepath.Join(root, "vendor", "b.lv"))

	scope := DefaultScope(root)
	scope.Exclude = []string{"**/vendor/**"}

	got, err := Walk(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, filepath.Join(root, "a.lv"), got[0])
}

func TestWalkHonorsMaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.lv"))
	writeFile(t, filepath.Join(root, "one", "two", "b.lv"))

	scope := DefaultScope(root)
	scope.MaxDepth = 1

	got, err := Walk(context.Background(), scope)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWalkRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.lv")
	writeFile(t, file)

	_, err := Walk(context.Background(), Scope{Path: file})
	require.Error(t, err)
}
