// Package sizer computes the recursive byte size of a path.
package sizer

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/devclean/pkg/devclean/logging"
	"github.com/jamesainslie/devclean/pkg/devclean/walker"
)

// SizeOf returns the total size of the regular files under path. Symlinks
// are followed. Directories and files are tracked by their (device, inode)
// identity, so link cycles terminate and a file reachable through several
// links is counted once. Entries that cannot be read are left out of the sum.
func SizeOf(path string) int64 {
	a := &accumulator{
		seen: make(map[walker.FileID]struct{}),
		log:  logging.Get("sizer"),
	}
	a.add(path)
	return a.total
}

type accumulator struct {
	mu    sync.Mutex
	seen  map[walker.FileID]struct{}
	total int64
	log   *logging.Logger
}

// add sizes path after resolving any symlink it points through.
func (a *accumulator) add(path string) {
	info, err := os.Stat(path)
	if err != nil {
		a.log.Debug("stat failed", "path", path, "err", err)
		return
	}
	switch {
	case info.IsDir():
		if !a.claimDir(path, info) {
			return
		}
		a.walk(path)
	case info.Mode().IsRegular():
		a.file(path, info)
	}
}

// walk sums a directory tree with a single fastwalk worker.
func (a *accumulator) walk(dir string) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		a.log.Debug("resolve failed", "path", dir, "err", err)
		return
	}

	conf := fastwalk.Config{Follow: false, NumWorkers: 1}
	err = fastwalk.Walk(&conf, resolved, func(path string, d fs.DirEntry, err error) error {
		// The root was claimed before the walk started.
		if path == resolved && err == nil {
			return nil
		}
		return a.visit(path, d, err)
	})
	if err != nil {
		a.log.Debug("walk failed", "path", resolved, "err", err)
	}
}

func (a *accumulator) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		a.log.Debug("skipping entry", "path", path, "err", err)
		return nil
	}

	switch {
	case d.Type()&fs.ModeSymlink != 0:
		a.add(path)
	case d.IsDir():
		info, err := d.Info()
		if err != nil {
			a.log.Debug("skipping directory", "path", path, "err", err)
			return fastwalk.SkipDir
		}
		if !a.claimDir(path, info) {
			return fastwalk.SkipDir
		}
	case d.Type().IsRegular():
		info, err := d.Info()
		if err != nil {
			a.log.Debug("skipping file", "path", path, "err", err)
			return nil
		}
		a.file(path, info)
	}
	return nil
}

// claimDir marks a directory as visited. It returns false if it already was.
func (a *accumulator) claimDir(path string, info fs.FileInfo) bool {
	id, _, ok := walker.Identity(path, info)
	if !ok {
		return true
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, seen := a.seen[id]; seen {
		return false
	}
	a.seen[id] = struct{}{}
	return true
}

// file adds a regular file's size unless the same file was already counted
// through another link.
func (a *accumulator) file(path string, info fs.FileInfo) {
	id, _, ok := walker.Identity(path, info)

	a.mu.Lock()
	defer a.mu.Unlock()
	if ok {
		if _, seen := a.seen[id]; seen {
			return
		}
		a.seen[id] = struct{}{}
	}
	a.total += info.Size()
}
