package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// RotationConfig controls log rotation.
type RotationConfig struct {
	// MaxSize is the size in bytes that triggers rotation. Zero uses 5 MiB.
	MaxSize int64

	// MaxAge is the number of days rotated files are kept. Zero disables
	// age-based removal.
	MaxAge int

	// MaxBackups caps the number of rotated files. Zero keeps all of them.
	MaxBackups int

	// Daily rotates the first time a write lands on a new calendar day.
	Daily bool
}

// DefaultRotationConfig returns the rotation used by the CLI.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    5 * 1024 * 1024,
		MaxAge:     14,
		MaxBackups: 3,
		Daily:      false,
	}
}

// rotatedStamp is the timestamp inserted into rotated file names.
const rotatedStamp = "20060102-150405"

// RotatingWriter is an io.WriteCloser that rotates its file by size or day.
// Writes are serialized within the process and, where the platform supports
// it, guarded by an advisory file lock across processes.
type RotatingWriter struct {
	mu      sync.Mutex
	path    string
	cfg     RotationConfig
	file    *os.File
	size    int64
	opened  time.Time
	nowFunc func() time.Time
}

// NewRotatingWriter opens path for appending, creating parent directories.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg, nowFunc: time.Now}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.prune()
	return w, nil
}

// Write appends p, rotating first if p would push the file past MaxSize or
// the day has changed.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	if w.due(int64(len(p))) {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	lockFile(w.file)
	n, err := w.file.Write(p)
	unlockFile(w.file)

	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing log file: %w", err)
	}
	return n, nil
}

// Close syncs and closes the file. It is safe to call more than once.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	_ = w.file.Sync()
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	w.file = f
	w.size = info.Size()
	w.opened = info.ModTime()
	if w.size == 0 {
		w.opened = w.nowFunc()
	}
	return nil
}

func (w *RotatingWriter) due(n int64) bool {
	if w.size > 0 && w.size+n > w.cfg.MaxSize {
		return true
	}
	if w.cfg.Daily {
		y1, m1, d1 := w.opened.Date()
		y2, m2, d2 := w.nowFunc().Date()
		return y1 != y2 || m1 != m2 || d1 != d2
	}
	return false
}

func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	w.file = nil

	if err := os.Rename(w.path, w.backupName(w.nowFunc())); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("renaming log file: %w", err)
	}
	if err := w.open(); err != nil {
		return err
	}
	w.opened = w.nowFunc()
	w.prune()
	return nil
}

// backupName returns "<base>.<stamp><ext>", adding a counter if a backup
// with the same stamp already exists.
func (w *RotatingWriter) backupName(t time.Time) string {
	ext := filepath.Ext(w.path)
	base := strings.TrimSuffix(w.path, ext)
	name := fmt.Sprintf("%s.%s%s", base, t.Format(rotatedStamp), ext)
	for i := 1; ; i++ {
		if _, err := os.Lstat(name); os.IsNotExist(err) {
			return name
		}
		name = fmt.Sprintf("%s.%s-%d%s", base, t.Format(rotatedStamp), i, ext)
	}
}

// backups lists rotated files, newest first.
func (w *RotatingWriter) backups() []string {
	dir := filepath.Dir(w.path)
	ext := filepath.Ext(w.path)
	prefix := strings.TrimSuffix(filepath.Base(w.path), ext) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == filepath.Base(w.path) {
			continue
		}
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ext) {
			names = append(names, name)
		}
	}
	// Stamps sort chronologically.
	slices.Sort(names)
	slices.Reverse(names)

	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(dir, n)
	}
	return out
}

// prune removes backups beyond MaxBackups or older than MaxAge days.
func (w *RotatingWriter) prune() {
	cutoff := time.Time{}
	if w.cfg.MaxAge > 0 {
		cutoff = w.nowFunc().AddDate(0, 0, -w.cfg.MaxAge)
	}

	for i, p := range w.backups() {
		drop := w.cfg.MaxBackups > 0 && i >= w.cfg.MaxBackups
		if !drop && !cutoff.IsZero() {
			if info, err := os.Stat(p); err == nil && info.ModTime().Before(cutoff) {
				drop = true
			}
		}
		if drop {
			_ = os.Remove(p)
		}
	}
}
