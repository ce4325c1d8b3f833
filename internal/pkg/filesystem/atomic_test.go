package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, WriteFileAtomic(path, []byte("new"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteFileAtomicFailsWhenDirectoryMissing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "data.json")
	err := WriteFileAtomic(path, []byte("x"), 0o644)
	require.Error(t, err)
	assert.ErrorContains(t, err, "create temp file")
}

func TestExpandPath(t *testing.T) {
	home := UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".maildraft"), ExpandPath("~/.maildraft"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
	assert.Equal(t, "", ExpandPath(""))
}
