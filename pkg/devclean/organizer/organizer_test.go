package organizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestOrganizeBuckets(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "photo.JPG"), "img")
	touch(t, filepath.Join(dir, "report.pdf"), "doc")
	touch(t, filepath.Join(dir, "main.go"), "code")
	touch(t, filepath.Join(dir, "mystery.bin"), "other")
	touch(t, filepath.Join(dir, "nested", "deep.png"), "not moved")

	s, err := (&Organizer{}).Organize(dir)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Moved)
	assert.Equal(t, 0, s.Failed)
	assert.Equal(t, 4, s.Buckets)
	assert.Len(t, s.Moves, 4)

	assert.Equal(t, "img", read(t, filepath.Join(dir, "Images", "photo.JPG")))
	assert.Equal(t, "doc", read(t, filepath.Join(dir, "Documents", "report.pdf")))
	assert.Equal(t, "code", read(t, filepath.Join(dir, "Code", "main.go")))
	assert.Equal(t, "other", read(t, filepath.Join(dir, "Others", "mystery.bin")))
	assert.Equal(t, "not moved", read(t, filepath.Join(dir, "nested", "deep.png")))

	assert.Equal(t, []string{"Code", "Documents", "Images", "Others", "nested"}, listDir(t, dir))
}

func TestOrganizeCollisionNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Images", "cat.png"), "existing")
	touch(t, filepath.Join(dir, "Images", "cat_1.png"), "existing-1")
	touch(t, filepath.Join(dir, "cat.png"), "incoming")

	s, err := (&Organizer{}).Organize(dir)
	require.NoError(t, err)
	require.Equal(t, 1, s.Moved)

	assert.Equal(t, "existing", read(t, filepath.Join(dir, "Images", "cat.png")))
	assert.Equal(t, "existing-1", read(t, filepath.Join(dir, "Images", "cat_1.png")))
	assert.Equal(t, "incoming", read(t, filepath.Join(dir, "Images", "cat_2.png")))
	assert.Equal(t, filepath.Join(dir, "Images", "cat_2.png"), s.Moves[0].To)
}

func TestOrganizeTwoRunsSameName(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "notes.txt"), "first")
	_, err := (&Organizer{}).Organize(dir)
	require.NoError(t, err)

	touch(t, filepath.Join(dir, "notes.txt"), "second")
	s, err := (&Organizer{}).Organize(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Moved)

	assert.Equal(t, []string{"notes.txt", "notes_1.txt"}, listDir(t, filepath.Join(dir, "Documents")))
	assert.Equal(t, "first", read(t, filepath.Join(dir, "Documents", "notes.txt")))
	assert.Equal(t, "second", read(t, filepath.Join(dir, "Documents", "notes_1.txt")))
}

func TestOrganizeDotfileSuffix(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Others", ".env"), "old")
	touch(t, filepath.Join(dir, ".env"), "new")

	_, err := (&Organizer{}).Organize(dir)
	require.NoError(t, err)
	assert.Equal(t, "new", read(t, filepath.Join(dir, "Others", ".env_1")))
}

func TestOrganizeMissingTarget(t *testing.T) {
	_, err := (&Organizer{}).Organize(filepath.Join(t.TempDir(), "Downloads"))
	assert.True(t, errors.Is(err, ErrTargetMissing))
}

func TestOrganizeFileTarget(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	touch(t, file, "x")

	_, err := (&Organizer{}).Organize(file)
	assert.True(t, errors.Is(err, ErrTargetMissing))
}

func TestOrganizeEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := (&Organizer{}).Organize(dir)
	require.NoError(t, err)
	assert.Zero(t, s.Moved)
	assert.Zero(t, s.Buckets)
	assert.Empty(t, listDir(t, dir))
}

func TestOrganizeBucketBlockedByFile(t *testing.T) {
	dir := t.TempDir()
	// A regular file named like a bucket prevents the bucket folder.
	touch(t, filepath.Join(dir, "Images"), "not a folder")
	touch(t, filepath.Join(dir, "a.png"), "img")

	s, err := (&Organizer{}).Organize(dir)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Moved, "the Images file itself goes to Others")
	assert.Equal(t, "img", read(t, filepath.Join(dir, "a.png")))
}

func TestOrganizeProgress(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp3"), "a")
	touch(t, filepath.Join(dir, "b.zip"), "b")

	var done []int
	o := &Organizer{OnProgress: func(d, total int, _ string) {
		done = append(done, d)
		assert.Equal(t, 2, total)
	}}
	_, err := o.Organize(dir)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, done)
}

func TestPreviewGroupsInTableOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "z.exe"), "")
	touch(t, filepath.Join(dir, "a.unknown"), "")
	touch(t, filepath.Join(dir, "m.png"), "")
	touch(t, filepath.Join(dir, "n.gif"), "")

	groups, err := Preview(dir)
	require.NoError(t, err)

	var names []string
	for _, g := range groups {
		names = append(names, g.Bucket)
	}
	assert.Equal(t, []string{"Images", "Executables", "Others"}, names)
	assert.Len(t, groups[0].Files, 2)
}

func TestWatchOrganizesNewFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "first.txt"), "1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan Summary, 10)
	errc := make(chan error, 1)
	go func() {
		errc <- (&Organizer{}).Watch(ctx, dir, 50*time.Millisecond, func(s Summary, err error) {
			if err == nil {
				runs <- s
			}
		})
	}()

	select {
	case s := <-runs:
		assert.Equal(t, 1, s.Moved)
	case <-time.After(5 * time.Second):
		t.Fatal("initial organize did not run")
	}

	touch(t, filepath.Join(dir, "second.mp4"), "2")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-runs:
			if s.Moved == 1 {
				assert.Equal(t, "2", read(t, filepath.Join(dir, "Videos", "second.mp4")))
				cancel()
				require.NoError(t, <-errc)
				return
			}
		case <-deadline:
			t.Fatal("new file was not organized")
		}
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := (&Organizer{}).Watch(context.Background(), filepath.Join(t.TempDir(), "x"), time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrTargetMissing)
}
