package hasher

import (
	"bytes"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/devclean/pkg/devclean/types"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestHashMatchesSHA256(t *testing.T) {
	dir := t.TempDir()
	// Larger than one chunk and not a multiple of it.
	data := bytes.Repeat([]byte("devclean"), ChunkSize/4+13)
	path := filepath.Join(dir, "big.bin")
	writeFile(t, path, data)

	got, ok := New(nil).Hash(path)
	require.True(t, ok)
	assert.Equal(t, types.Digest(sha256.Sum256(data)), got)
}

func TestHashEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	writeFile(t, path, nil)

	got, ok := New(nil).Hash(path)
	require.True(t, ok)
	assert.Equal(t, types.Digest(sha256.Sum256(nil)), got)
}

func TestHashIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("same content"))
	writeFile(t, filepath.Join(dir, "b.txt"), []byte("same content"))
	writeFile(t, filepath.Join(dir, "c.txt"), []byte("other content"))

	h := New(nil)
	a, okA := h.Hash(filepath.Join(dir, "a.txt"))
	b, okB := h.Hash(filepath.Join(dir, "b.txt"))
	c, okC := h.Hash(filepath.Join(dir, "c.txt"))
	require.True(t, okA && okB && okC)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 3, h.Hashed)
}

func TestHashMissingFile(t *testing.T) {
	_, ok := New(nil).Hash(filepath.Join(t.TempDir(), "missing"))
	assert.False(t, ok)
}

func TestHashDirectoryFails(t *testing.T) {
	_, ok := New(nil).Hash(t.TempDir())
	assert.False(t, ok)
}

func TestMemoReusesUnchangedFiles(t *testing.T) {
	memo, err := OpenMemo(filepath.Join(t.TempDir(), "digests"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = memo.Close() })

	path := filepath.Join(t.TempDir(), "file.bin")
	writeFile(t, path, []byte("first version"))

	h := New(memo)
	first, ok := h.Hash(path)
	require.True(t, ok)
	again, ok := h.Hash(path)
	require.True(t, ok)

	assert.Equal(t, first, again)
	assert.Equal(t, 1, h.Hashed)
	assert.Equal(t, 1, h.Reused)

	count, err := memo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoInvalidatedByChange(t *testing.T) {
	memo, err := OpenMemo(filepath.Join(t.TempDir(), "digests"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = memo.Close() })

	path := filepath.Join(t.TempDir(), "file.bin")
	writeFile(t, path, []byte("version one"))

	h := New(memo)
	before, ok := h.Hash(path)
	require.True(t, ok)

	writeFile(t, path, []byte("version two!"))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	after, ok := h.Hash(path)
	require.True(t, ok)
	assert.NotEqual(t, before, after)
	assert.Equal(t, 2, h.Hashed)
	assert.Equal(t, types.Digest(sha256.Sum256([]byte("version two!"))), after)
}

func TestMemoPruneAndClear(t *testing.T) {
	memo, err := OpenMemo(filepath.Join(t.TempDir(), "digests"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = memo.Close() })

	dir := t.TempDir()
	keep := filepath.Join(dir, "keep")
	gone := filepath.Join(dir, "gone")
	writeFile(t, keep, []byte("k"))

	require.NoError(t, memo.Store(keep, 1, 1, types.Digest{1}))
	require.NoError(t, memo.Store(gone, 1, 1, types.Digest{2}))

	removed, err := memo.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	d, ok := memo.Lookup(keep, 1, 1)
	assert.True(t, ok)
	assert.Equal(t, types.Digest{1}, d)

	_, ok = memo.Lookup(keep, 2, 1)
	assert.False(t, ok, "size mismatch invalidates the entry")

	require.NoError(t, memo.Clear())
	count, err := memo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}
