package walker

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkfile creates a file with the given content, creating parent directories.
func mkfile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// collect runs the walk and returns relative paths mapped to their depth.
func collect(t *testing.T, w *Walker, root string) map[string]int {
	t.Helper()
	got := make(map[string]int)
	for e := range w.Walk(root) {
		rel, err := filepath.Rel(root, e.Path)
		require.NoError(t, err)
		got[filepath.ToSlash(rel)] = e.Depth
	}
	return got
}

func TestWalkDepthBound(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "a.txt"), "a")
	mkfile(t, filepath.Join(root, "d0", "b.txt"), "b")
	mkfile(t, filepath.Join(root, "d0", "d1", "c.txt"), "c")
	mkfile(t, filepath.Join(root, "d0", "d1", "d2", "d.txt"), "d")

	got := collect(t, &Walker{MaxDepth: 1}, root)

	assert.Equal(t, map[string]int{
		"a.txt":    0,
		"d0":       0,
		"d0/b.txt": 1,
		"d0/d1":    1,
	}, got)
}

func TestWalkZeroDepthListsChildrenOnly(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "sub", "deep.txt"), "x")

	got := collect(t, &Walker{MaxDepth: 0}, root)

	assert.Equal(t, map[string]int{"sub": 0}, got)
}

func TestWalkPrune(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "project", "node_modules", "pkg", "index.js"), "x")
	mkfile(t, filepath.Join(root, "project", "src", "main.js"), "x")

	w := &Walker{
		MaxDepth: 5,
		Prune:    func(e Entry) bool { return e.Name == "node_modules" },
	}
	got := collect(t, w, root)

	assert.Contains(t, got, "project/node_modules")
	assert.Contains(t, got, "project/src/main.js")
	assert.NotContains(t, got, "project/node_modules/pkg")
	assert.NotContains(t, got, "project/node_modules/pkg/index.js")
}

func TestWalkEntryFields(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "file.log"), "hello")
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0o755))

	entries := make(map[string]Entry)
	for e := range (&Walker{MaxDepth: 3}).Walk(root) {
		entries[e.Name] = e
	}

	require.Contains(t, entries, "file.log")
	require.Contains(t, entries, "dir")
	assert.False(t, entries["file.log"].IsDir)
	assert.Equal(t, int64(5), entries["file.log"].Info.Size())
	assert.True(t, entries["dir"].IsDir)
}

func TestWalkEarlyStop(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d"} {
		mkfile(t, filepath.Join(root, name), name)
	}

	count := 0
	for range (&Walker{MaxDepth: 3}).Walk(root) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestWalkMissingRootReportsError(t *testing.T) {
	var errs []string
	w := &Walker{
		MaxDepth: 3,
		OnError:  func(path string, _ error) { errs = append(errs, path) },
	}
	missing := filepath.Join(t.TempDir(), "missing")

	got := collect(t, w, missing)

	assert.Empty(t, got)
	assert.Equal(t, []string{missing}, errs)
}

func TestWalkBrokenSymlinkIsolated(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "a.txt"), "a")
	mkfile(t, filepath.Join(root, "z.txt"), "z")
	require.NoError(t, os.Symlink(filepath.Join(root, "nowhere"), filepath.Join(root, "m-broken")))

	var errs []string
	w := &Walker{
		MaxDepth: 3,
		OnError:  func(path string, _ error) { errs = append(errs, filepath.Base(path)) },
	}
	got := collect(t, w, root)

	assert.Contains(t, got, "a.txt")
	assert.Contains(t, got, "z.txt")
	assert.NotContains(t, got, "m-broken")
	assert.Equal(t, []string{"m-broken"}, errs)
}

func TestWalkSymlinkCycleTerminates(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "a", "file.txt"), "x")
	require.NoError(t, os.Symlink(root, filepath.Join(root, "a", "loop")))
	require.NoError(t, os.Symlink(filepath.Join(root, "a"), filepath.Join(root, "alias")))

	got := collect(t, &Walker{MaxDepth: 50}, root)

	var paths []string
	for p := range got {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	// The root is visited before the walk starts, so a/loop is dropped. The
	// alias and the real directory share an identity, so only one of them
	// appears and the file is reached exactly once.
	assert.NotContains(t, got, "a/loop")
	fileCount := 0
	for _, p := range paths {
		if filepath.Base(p) == "file.txt" {
			fileCount++
		}
	}
	assert.Equal(t, 1, fileCount, "paths: %v", paths)
}

func TestWalkSharedVisitedSkipsOverlap(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "project", "src", "main.go"), "x")
	mkfile(t, filepath.Join(root, "other", "notes.txt"), "y")

	w := &Walker{MaxDepth: 5, Visited: make(map[FileID]bool)}

	first := collect(t, w, root)
	assert.Contains(t, first, "project/src/main.go")

	assert.Empty(t, collect(t, w, root), "a root walked before yields nothing")
	assert.Empty(t, collect(t, w, filepath.Join(root, "project")), "a directory reached earlier yields nothing")
}

func TestWalkSharedVisitedNestedRootFirst(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "project", "app.log"), "x")
	mkfile(t, filepath.Join(root, "other", "notes.txt"), "y")

	w := &Walker{MaxDepth: 5, Visited: make(map[FileID]bool)}

	nested := collect(t, w, filepath.Join(root, "project"))
	assert.Contains(t, nested, "app.log")

	outer := collect(t, w, root)
	assert.Contains(t, outer, "other/notes.txt")
	assert.NotContains(t, outer, "project")
	assert.NotContains(t, outer, "project/app.log")
}

func TestWalkWithoutSharedVisitedRepeats(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "a.txt"), "a")

	w := &Walker{MaxDepth: 1}
	assert.Contains(t, collect(t, w, root), "a.txt")
	assert.Contains(t, collect(t, w, root), "a.txt")
}

func TestWalkSharedVisitedRootBeyondEarlierDepth(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "d0", "deep.log"), "x")

	w := &Walker{MaxDepth: 0, Visited: make(map[FileID]bool)}

	first := collect(t, w, root)
	assert.Contains(t, first, "d0")
	assert.NotContains(t, first, "d0/deep.log")

	// d0 was reached but never listed, so walking it as a root still
	// produces its children.
	assert.Contains(t, collect(t, w, filepath.Join(root, "d0")), "deep.log")
}
