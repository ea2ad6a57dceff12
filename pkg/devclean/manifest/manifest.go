package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when no entry has the requested ID.
var ErrNotFound = errors.New("manifest entry not found")

// DefaultDir returns $XDG_DATA_HOME/devclean/manifests.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "devclean", "manifests")
}

// Manifest stores entries as one JSON file each.
type Manifest struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// New creates a Manifest rooted at dir. The directory is created on the
// first Log.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir, now: time.Now}, nil
}

// Dir returns the manifest directory.
func (m *Manifest) Dir() string {
	return m.dir
}

// Log records an operation on target and returns the stored entry. Failed
// records are kept but excluded from the byte total.
func (m *Manifest) Log(op OperationType, target string, files []FileRecord) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()

	var sum Summary
	for _, f := range files {
		if f.Failed() {
			sum.Failed++
			continue
		}
		sum.TotalFiles++
		sum.TotalBytes += f.Size
	}
	if files == nil {
		files = []FileRecord{}
	}

	entry := &Entry{
		ID:        newID(op, now),
		Timestamp: now,
		Operation: op,
		Target:    target,
		Files:     files,
		Summary:   sum,
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := m.write(entry); err != nil {
		return nil, fmt.Errorf("writing manifest entry: %w", err)
	}
	return entry, nil
}

func (m *Manifest) write(entry *Entry) error {
	path := filepath.Join(m.dir, entry.ID+".json")

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// List returns entries newest first. A limit of 0 or less returns all of
// them. Unreadable files are skipped.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get returns the entry with the given ID or a unique ID prefix.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	var match *Entry
	for i := range entries {
		e := &entries[i]
		if e.ID == id {
			return e, nil
		}
		if strings.HasPrefix(e.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous entry ID prefix: %s", id)
			}
			match = e
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}

// Cleanup removes entries recorded more than retentionDays ago and returns
// how many were removed. A retention of 0 or less keeps everything.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading manifest directory: %w", err)
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		e, err := m.read(f.Name())
		if err != nil || !e.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, f.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (m *Manifest) readAll() ([]Entry, error) {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("reading manifest directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		e, err := m.read(f.Name())
		if err != nil {
			continue
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

func (m *Manifest) read(name string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// newID returns an ID like "clean-2025-06-15T10-30-00-1b4e28ba".
func newID(op OperationType, ts time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s", op, ts.Format("2006-01-02T15-04-05"), suffix)
}
