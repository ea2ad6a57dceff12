package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/devclean/cmd/devclean/tui"
	"github.com/jamesainslie/devclean/pkg/devclean/classify"
	"github.com/jamesainslie/devclean/pkg/devclean/config"
	"github.com/jamesainslie/devclean/pkg/devclean/deleter"
	"github.com/jamesainslie/devclean/pkg/devclean/manifest"
	"github.com/jamesainslie/devclean/pkg/devclean/organizer"
	"github.com/jamesainslie/devclean/pkg/devclean/stats"
	"github.com/jamesainslie/devclean/pkg/devclean/types"
	"github.com/spf13/viper"
)

func TestConfirmWithYes(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("yes", true)

	ok, err := confirm("Delete?")
	if err != nil || !ok {
		t.Errorf("confirm() = %v, %v; want true, nil with --yes", ok, err)
	}
}

func TestConfirmWithoutTerminal(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()
	if tui.Interactive() {
		t.Skip("test needs a non-interactive stdin")
	}

	ok, err := confirm("Delete?")
	if ok || !errors.Is(err, tui.ErrNotInteractive) {
		t.Errorf("confirm() = %v, %v; want false, ErrNotInteractive", ok, err)
	}
}

func TestDeletionRecords(t *testing.T) {
	report := deleter.Report{
		Removed:  []deleter.Target{{Path: "/p/node_modules", Size: 100}},
		Failures: []deleter.Failure{{Path: "/p/dist", Error: "permission denied"}},
	}
	kinds := map[string]string{"/p/node_modules": "node_modules", "/p/dist": "build"}

	records := deletionRecords(report, func(p string) string { return kinds[p] }, nil)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Path != "/p/node_modules" || records[0].Size != 100 || records[0].Kind != "node_modules" {
		t.Errorf("removed record = %+v", records[0])
	}
	if !records[1].Failed() || records[1].Kind != "build" {
		t.Errorf("failure record = %+v", records[1])
	}
}

func TestRecordOperationWritesManifest(t *testing.T) {
	cfg := &config.Config{}
	cfg.Manifest.Enabled = true
	cfg.Manifest.Path = t.TempDir()

	recordOperation(cfg, manifest.OpClean, "/p", []manifest.FileRecord{{Path: "/p/dist", Size: 42}})

	m, err := manifest.New(cfg.Manifest.Path)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := m.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Summary.TotalBytes != 42 {
		t.Errorf("entries = %+v, want one clean entry of 42 bytes", entries)
	}
}

func TestRecordOperationDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Manifest.Path = filepath.Join(t.TempDir(), "manifests")

	recordOperation(cfg, manifest.OpClean, "/p", nil)

	if _, err := os.Stat(cfg.Manifest.Path); !os.IsNotExist(err) {
		t.Error("manifest directory should not exist when history is disabled")
	}
}

func TestRecordStats(t *testing.T) {
	cfg := &config.Config{}
	cfg.Stats.Path = filepath.Join(t.TempDir(), "stats.json")

	recordScan(cfg)
	recordClean(cfg, 2048)

	st := stats.NewFileStore(cfg.Stats.Path).Load()
	if st.TotalScans != 1 || st.TotalCleans != 1 || st.TotalSpaceFreed != 2048 {
		t.Errorf("stats = %+v", st)
	}
}

func TestPlanDetails(t *testing.T) {
	plan := &types.ScanResult{}
	plan.Add(types.ReclaimableItem{Path: "/a/node_modules", Size: 2048, Kind: types.KindNodeModules})
	plan.Add(types.ReclaimableItem{Path: "/a/x.log", Size: 10, Kind: types.KindLog})

	lines := planDetails(plan)
	if len(lines) != 2 {
		t.Fatalf("planDetails() = %v, want 2 lines", lines)
	}
	if !strings.HasPrefix(lines[0], "node_modules") || !strings.HasPrefix(lines[1], "log") {
		t.Errorf("planDetails() = %v, want kinds in report order", lines)
	}
}

func TestCleanableSize(t *testing.T) {
	r := &types.ScanResult{}
	r.Add(types.ReclaimableItem{Path: "/a/node_modules", Size: 100, Kind: types.KindNodeModules, IsStale: true})
	r.Add(types.ReclaimableItem{Path: "/b/node_modules", Size: 1000, Kind: types.KindNodeModules})
	r.Add(types.ReclaimableItem{Path: "/a/dist", Size: 10, Kind: types.KindBuild})

	if got := cleanableSize(r); got != 110 {
		t.Errorf("cleanableSize() = %d, want 110 (fresh node_modules excluded)", got)
	}
}

func TestKeepDescription(t *testing.T) {
	if !strings.Contains(keepDescription(types.KeepOldest), "oldest") {
		t.Error("oldest policy not described")
	}
	if !strings.Contains(keepDescription(types.KeepFirst), "first") {
		t.Error("first policy not described")
	}
}

func TestOrganizeRecords(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "Images", "a.png")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dest, []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := organizer.Summary{
		Moves:    []organizer.Move{{From: filepath.Join(dir, "a.png"), To: dest, Bucket: "Images"}},
		Failures: []organizer.Failure{{Path: filepath.Join(dir, "b.txt"), Error: "busy"}},
	}
	records := organizeRecords(s)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Dest != dest || records[0].Kind != "Images" || records[0].Size != 5 {
		t.Errorf("move record = %+v", records[0])
	}
	if !records[1].Failed() {
		t.Errorf("failure record = %+v", records[1])
	}
}

func TestFileRecordText(t *testing.T) {
	tests := []struct {
		rec  manifest.FileRecord
		want string
	}{
		{manifest.FileRecord{Path: "/a"}, "/a"},
		{manifest.FileRecord{Path: "/a", Dest: "/b/a"}, "/a -> /b/a"},
		{manifest.FileRecord{Path: "/a", Error: "gone"}, "/a (gone)"},
	}
	for _, tt := range tests {
		if got := fileRecordText(tt.rec); got != tt.want {
			t.Errorf("fileRecordText(%+v) = %q, want %q", tt.rec, got, tt.want)
		}
	}
	if got := fileRecordSize(manifest.FileRecord{Error: "x"}); got != "failed" {
		t.Errorf("fileRecordSize(failed) = %q", got)
	}
}

func TestWhenText(t *testing.T) {
	if !strings.Contains(whenText(nil), "never") {
		t.Error("nil time should render as never")
	}
	ts := time.Now().Add(-2 * time.Hour)
	if !strings.Contains(whenText(&ts), "ago") {
		t.Errorf("whenText() = %q, want relative time", whenText(&ts))
	}
}

func TestFilterEntries(t *testing.T) {
	entries := []manifest.Entry{
		{ID: "a", Operation: manifest.OpClean},
		{ID: "b", Operation: manifest.OpOrganize},
		{ID: "c", Operation: manifest.OpClean},
		{ID: "d", Operation: manifest.OpClean},
	}

	tests := []struct {
		name  string
		op    manifest.OperationType
		limit int
		want  string
	}{
		{"all", "", 0, "abcd"},
		{"limited", "", 2, "ab"},
		{"by operation", manifest.OpClean, 0, "acd"},
		{"by operation limited", manifest.OpClean, 2, "ac"},
		{"no match", manifest.OpCache, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got strings.Builder
			for _, e := range filterEntries(entries, tt.op, tt.limit) {
				got.WriteString(e.ID)
			}
			if got.String() != tt.want {
				t.Errorf("filterEntries() = %q, want %q", got.String(), tt.want)
			}
		})
	}

	if len(entries) != 4 || entries[1].ID != "b" {
		t.Error("filterEntries() modified its input")
	}
}

func TestPrintEntry(t *testing.T) {
	entry := &manifest.Entry{
		ID:        "clean-2025-06-15T10-30-00-1b4e28ba",
		Timestamp: time.Now().Add(-time.Hour),
		Operation: manifest.OpOrganize,
		Target:    "/home/u/Downloads",
		Files: []manifest.FileRecord{
			{Path: "/d/a.png", Dest: "/d/Images/a.png", Size: 10},
			{Path: "/d/b.pdf", Error: "permission denied"},
			{Path: "/d/c.zip", Dest: "/d/Archives/c.zip"},
		},
		Summary: manifest.Summary{TotalFiles: 3, TotalBytes: 10, Failed: 1},
	}

	var buf bytes.Buffer
	printEntry(&buf, entry, 2)
	out := buf.String()

	for _, want := range []string{
		entry.ID,
		"organize",
		"/home/u/Downloads",
		"Failed:",
		"/d/a.png -> /d/Images/a.png",
		"/d/b.pdf (permission denied)",
		"... and 1 more",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("printEntry() output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "c.zip") {
		t.Errorf("printEntry() printed past maxFiles:\n%s", out)
	}
}

func TestPrintEntries(t *testing.T) {
	var buf bytes.Buffer
	printEntries(&buf, []manifest.Entry{{
		ID:        "clean-2025-06-15T10-30-00-1b4e28ba",
		Timestamp: time.Now(),
		Operation: manifest.OpClean,
		Summary:   manifest.Summary{TotalFiles: 4, TotalBytes: 2048, Failed: 1},
	}})

	out := buf.String()
	for _, want := range []string{"ID", "clean-2025-06-15T10-30-00-1b4e28ba", "4 (1 failed)", "2.0 KiB"} {
		if !strings.Contains(out, want) {
			t.Errorf("printEntries() output missing %q:\n%s", want, out)
		}
	}
}

func TestCleanHelpNamesBuildFolders(t *testing.T) {
	long := cleanCmd.Long
	open := strings.Index(long, "build output folder (")
	if open < 0 {
		t.Fatalf("clean help does not list build folders:\n%s", long)
	}
	list := long[open+len("build output folder ("):]
	list = list[:strings.Index(list, ")")]

	for _, name := range strings.Split(list, ", ") {
		if name == "..." {
			continue
		}
		if !slices.Contains(classify.BuildFolders, name) {
			t.Errorf("clean help names %q, which is not a build folder", name)
		}
	}
}
