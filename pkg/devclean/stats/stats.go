// Package stats keeps the usage counters devclean accumulates across runs.
//
// Updates are a load, merge and save with no locking. Two devclean
// processes finishing at the same time can lose one update; the last writer
// wins.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
)

// Stats are the persisted counters.
type Stats struct {
	TotalScans      int64      `json:"totalScans"`
	TotalCleans     int64      `json:"totalCleans"`
	TotalSpaceFreed int64      `json:"totalSpaceFreed"`
	LastScan        *time.Time `json:"lastScan"`
	LastClean       *time.Time `json:"lastClean"`
}

// Store loads and saves Stats.
type Store interface {
	// Load returns the stored counters, or zero values if none can be read.
	Load() Stats

	// Save replaces the stored counters.
	Save(Stats) error
}

// RecordScan increments the scan counter and stamps the scan time.
func RecordScan(s Store, now time.Time) error {
	st := s.Load()
	st.TotalScans++
	t := now.UTC()
	st.LastScan = &t
	return s.Save(st)
}

// RecordClean increments the clean counter, adds freed bytes and stamps the
// clean time.
func RecordClean(s Store, freed int64, now time.Time) error {
	st := s.Load()
	st.TotalCleans++
	if freed > 0 {
		st.TotalSpaceFreed += freed
	}
	t := now.UTC()
	st.LastClean = &t
	return s.Save(st)
}

// DefaultPath returns $XDG_DATA_HOME/devclean/stats.json.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "devclean", "stats.json")
}

// FileStore keeps Stats in a JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the file. A missing, unreadable or corrupt file yields zero
// values.
func (f *FileStore) Load() Stats {
	var st Stats
	data, err := os.ReadFile(f.path)
	if err != nil {
		return Stats{}
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return Stats{}
	}
	return st
}

// Save writes the file through a temporary file and rename.
func (f *FileStore) Save(st Stats) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating stats directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing stats: %w", err)
	}
	return nil
}

// MemoryStore keeps Stats in memory.
type MemoryStore struct {
	mu sync.Mutex
	st Stats
}

// Load returns the current counters.
func (m *MemoryStore) Load() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st
}

// Save replaces the counters.
func (m *MemoryStore) Save(st Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
