package deleter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.log")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	assert.True(t, Delete(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteDirectoryRecursive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "node_modules")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "b", "index.js"), []byte("x"), 0o644))

	assert.True(t, Delete(dir))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingPathFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	assert.False(t, Delete(missing))
	assert.True(t, errors.Is(Remove(missing), ErrNotExist))
}

func TestDeleteAllAccounting(t *testing.T) {
	dir := t.TempDir()
	var targets []Target
	for i, name := range []string{"a", "b", "c"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(name), 0o644))
		targets = append(targets, Target{Path: p, Size: int64(100 * (i + 1))})
	}
	// Two targets that cannot be deleted.
	targets = append(targets,
		Target{Path: filepath.Join(dir, "missing-1"), Size: 1000},
		Target{Path: filepath.Join(dir, "missing-2"), Size: 2000},
	)

	var seen []Progress
	r := DeleteAll(targets, Options{OnProgress: func(p Progress) { seen = append(seen, p) }})

	assert.Equal(t, 3, r.Deleted)
	assert.Equal(t, 2, r.Failed)
	assert.Equal(t, int64(600), r.BytesFreed, "only pre-recorded sizes of successes count")
	require.Len(t, r.Failures, 2)
	assert.Equal(t, filepath.Join(dir, "missing-1"), r.Failures[0].Path)
	assert.Len(t, r.Removed, 3)

	require.Len(t, seen, 5)
	assert.Equal(t, 5, seen[4].Done)
	assert.Equal(t, 5, seen[4].Total)
	assert.True(t, seen[0].OK)
	assert.False(t, seen[3].OK)
}

func TestDeleteAllEmpty(t *testing.T) {
	r := DeleteAll(nil, Options{})
	assert.Zero(t, r.Deleted)
	assert.Zero(t, r.Failed)
	assert.Zero(t, r.BytesFreed)
}
