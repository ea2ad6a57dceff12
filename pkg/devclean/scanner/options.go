// Package scanner inventories reclaimable development artifacts under a set
// of root directories.
package scanner

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jamesainslie/devclean/pkg/devclean/types"
)

// Defaults for Options.
const (
	DefaultMaxDepth    = 3
	DefaultStaleMonths = 3
)

// progressEvery is how many visited entries pass between progress reports
// when no new item was found.
const progressEvery = 256

// Options configures a Scanner.
type Options struct {
	// Roots are scanned in order. Missing roots are recorded as errors.
	Roots []string

	// MaxDepth is the deepest level listed below each root (0 lists only
	// the root's children).
	MaxDepth int

	// StaleMonths is the staleness window in calendar months. A folder is
	// stale when its parent directory was last modified before
	// Now minus StaleMonths.
	StaleMonths int

	// Now is the reference time for staleness. Zero uses time.Now.
	Now time.Time

	// OnProgress, if set, receives periodic snapshots.
	OnProgress func(types.ScanProgress)
}

// DefaultOptions returns options with the default depth and window and no
// roots.
func DefaultOptions() Options {
	return Options{
		MaxDepth:    DefaultMaxDepth,
		StaleMonths: DefaultStaleMonths,
	}
}

// applyDefaults fills in unset fields.
func (o *Options) applyDefaults() {
	if o.MaxDepth < 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.StaleMonths <= 0 {
		o.StaleMonths = DefaultStaleMonths
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
}

// DefaultRoots returns the developer directories under home that exist:
// Downloads, Desktop, Documents, Projects, Code and workspace, plus
// Developer on macOS.
func DefaultRoots(home, goos string) []string {
	names := []string{"Downloads", "Desktop", "Documents", "Projects", "Code", "workspace"}
	if goos == "darwin" {
		names = append(names, "Developer")
	}

	var roots []string
	for _, name := range names {
		p := filepath.Join(home, name)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			roots = append(roots, p)
		}
	}
	return roots
}
