package checksum

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasher(t *testing.T) {
	tests := []struct {
		algo    string
		want    string
		wantErr bool
	}{
		{"", MD5, false},
		{"md5", MD5, false},
		{" SHA256 ", SHA256, false},
		{"crc32", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.algo, func(t *testing.T) {
			h, err := NewHasher(tt.algo)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownAlgorithm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.Algorithm())
		})
	}
}

func TestHashFile(t *testing.T) {
	tests := []struct {
		algo    string
		content string
		want    string
	}{
		{MD5, "", "d41d8cd98f00b204e9800998ecf8427e"},
		{MD5, "hello", "5d41402abc4b2a76b9719d911017c592"},
		{MD5, "abc", "900150983cd24fb0d6963f7d28e17f72"},
		{SHA256, "hello", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.algo+"/"+tt.content, func(t *testing.T) {
			h, err := NewHasher(tt.algo)
			require.NoError(t, err)

			path := filepath.Join(dir, "f")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			got, err := h.HashFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Re-hashing an unmodified file is stable.
			again, err := h.HashFile(path)
			require.NoError(t, err)
			assert.Equal(t, got, again)

			streamed, err := h.Hash(strings.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, got, streamed)
		})
	}
}

func TestHashFile_Missing(t *testing.T) {
	h, err := NewHasher(MD5)
	require.NoError(t, err)

	_, err = h.HashFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestStore_LoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksums.json")

	s, err := LoadStore(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.NoFileExists(t, path)
}

func TestStore_PutPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksums.json")

	s, err := LoadStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put("b.pdf", "bb"))
	require.NoError(t, s.Put("a.pdf", "aa"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]string
	require.NoError(t, json.Unmarshal(b, &onDisk))
	assert.Equal(t, map[string]string{"a.pdf": "aa", "b.pdf": "bb"}, onDisk)

	reloaded, err := LoadStore(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, reloaded.Names())
	d, ok := reloaded.Get("a.pdf")
	assert.True(t, ok)
	assert.Equal(t, "aa", d)
}

func TestStore_ConcurrentPut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksums.json")
	s, err := LoadStore(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, name := range []string{"1", "2", "3", "4", "5"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			assert.NoError(t, s.Put(name+".pdf", name))
		}(name)
	}
	wg.Wait()

	reloaded, err := LoadStore(path)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Len())
}

func TestStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksums.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadStore(path)
	assert.Error(t, err)
}

func TestManifest_OrderedAndOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	m := NewManifest()
	m.Append(3, Record{Name: "c.pdf", URL: "https://x/c.pdf", Size: 3, Checksum: "cc"})
	m.Append(1, Record{Name: "a.pdf", URL: "https://x/a.pdf", Size: 1, Checksum: "aa"})
	require.NoError(t, m.Save(path))

	recs, err := ReadManifest(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a.pdf", recs[0].Name)
	assert.Equal(t, "c.pdf", recs[1].Name)

	// A later run replaces the manifest rather than extending it.
	next := NewManifest()
	require.NoError(t, next.Save(path))
	recs, err = ReadManifest(path)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
