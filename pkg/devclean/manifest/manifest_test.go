package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

func newAt(t *testing.T, dir string, now time.Time) *Manifest {
	t.Helper()
	m, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	m.now = func() time.Time { return now }
	return m
}

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Fatal("New(\"\") error = nil, want error")
	}

	m, err := New(t.TempDir())
	if err != nil || m == nil {
		t.Fatalf("New() = %v, %v", m, err)
	}
}

func TestManifest_Log(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "manifests")
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	m := newAt(t, dir, now)

	files := []FileRecord{
		{Path: "/p/a/node_modules", Size: 1000, Kind: "node_modules"},
		{Path: "/p/b/dist", Size: 500, Kind: "build"},
		{Path: "/p/c/dist", Size: 700, Kind: "build", Error: "permission denied"},
	}

	e, err := m.Log(OpClean, "/p", files)
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	if ok, _ := regexp.MatchString(`^clean-2025-06-15T10-30-00-[0-9a-f]{8}$`, e.ID); !ok {
		t.Errorf("ID = %q, unexpected format", e.ID)
	}
	if e.Summary.TotalFiles != 2 || e.Summary.TotalBytes != 1500 || e.Summary.Failed != 1 {
		t.Errorf("Summary = %+v, want 2 files, 1500 bytes, 1 failed", e.Summary)
	}
	if _, err := os.Stat(filepath.Join(dir, e.ID+".json")); err != nil {
		t.Errorf("entry file missing: %v", err)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestManifest_ListAndGet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i, op := range []OperationType{OpClean, OpDedupe, OpOrganize} {
		m := newAt(t, dir, base.Add(time.Duration(i)*time.Hour))
		e, err := m.Log(op, "", nil)
		if err != nil {
			t.Fatalf("Log() error = %v", err)
		}
		ids = append(ids, e.ID)
	}

	// Garbage in the directory is ignored.
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := newAt(t, dir, base)

	t.Run("newest first", func(t *testing.T) {
		entries, err := m.List(0)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("List() len = %d, want 3", len(entries))
		}
		if entries[0].Operation != OpOrganize || entries[2].Operation != OpClean {
			t.Errorf("order = %s, %s, %s", entries[0].Operation, entries[1].Operation, entries[2].Operation)
		}
		if entries[2].Files == nil {
			t.Error("Files decoded as nil, want empty slice")
		}
	})

	t.Run("limit", func(t *testing.T) {
		entries, err := m.List(2)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("List(2) len = %d", len(entries))
		}
	})

	t.Run("get exact", func(t *testing.T) {
		e, err := m.Get(ids[1])
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if e.Operation != OpDedupe {
			t.Errorf("Operation = %s, want dedupe", e.Operation)
		}
	})

	t.Run("get prefix", func(t *testing.T) {
		e, err := m.Get("organize-")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if e.ID != ids[2] {
			t.Errorf("ID = %s, want %s", e.ID, ids[2])
		}
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := m.Get("nope")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})
}

func TestManifest_GetAmbiguousPrefix(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := newAt(t, dir, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	for range 2 {
		if _, err := m.Log(OpClean, "", nil); err != nil {
			t.Fatal(err)
		}
	}

	_, err := m.Get("clean-")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ambiguity error", err)
	}
}

func TestManifest_ListMissingDir(t *testing.T) {
	t.Parallel()

	m := newAt(t, filepath.Join(t.TempDir(), "absent"), time.Now())
	entries, err := m.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("List() = %v, want empty slice", entries)
	}
}

func TestManifest_Cleanup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	old := newAt(t, dir, now.AddDate(0, 0, -40))
	if _, err := old.Log(OpClean, "", nil); err != nil {
		t.Fatal(err)
	}
	recent := newAt(t, dir, now.AddDate(0, 0, -2))
	if _, err := recent.Log(OpDedupe, "", nil); err != nil {
		t.Fatal(err)
	}

	m := newAt(t, dir, now)

	if n, err := m.Cleanup(0); err != nil || n != 0 {
		t.Fatalf("Cleanup(0) = %d, %v; want 0, nil", n, err)
	}

	n, err := m.Cleanup(30)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Cleanup() removed %d, want 1", n)
	}

	entries, _ := m.List(0)
	if len(entries) != 1 || entries[0].Operation != OpDedupe {
		t.Errorf("remaining = %+v", entries)
	}
}
