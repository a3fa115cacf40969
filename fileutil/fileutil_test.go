package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistenceChecks(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.True(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "nope")))

	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(file))

	assert.True(t, IsRegular(file))
	assert.False(t, IsRegular(dir))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "nested", "checksums.json")

	require.NoError(t, WriteFileAtomic(dest, []byte("one"), 0644))
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "one", string(b))

	require.NoError(t, WriteFileAtomic(dest, []byte("two"), 0644))
	b, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
