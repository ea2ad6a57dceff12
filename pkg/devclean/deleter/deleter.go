// Package deleter permanently removes files and directories.
//
// There is no trash and no undo. Each removal is independent: a failure on
// one target never stops a batch, and the batch report counts both outcomes.
package deleter

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jamesainslie/devclean/pkg/devclean/logging"
)

// ErrNotExist is returned by Remove when the target does not exist.
var ErrNotExist = errors.New("path does not exist")

// Remove deletes path. Directories are removed recursively. A path that does
// not exist is an error, unlike os.RemoveAll.
func Remove(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return fmt.Errorf("cannot delete %q: %w", path, err)
	}

	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", path, err)
	}
	return nil
}

// Delete removes path and reports whether it succeeded.
func Delete(path string) bool {
	if err := Remove(path); err != nil {
		logging.Get("deleter").Debug("delete failed", "path", path, "err", err)
		return false
	}
	return true
}

// Target is an item queued for deletion. Size is the size recorded when the
// item was found; it is what BytesFreed counts on success.
type Target struct {
	Path string
	Size int64
}

// Failure records a target that could not be removed.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Report summarizes a batch deletion.
type Report struct {
	Deleted    int       `json:"deleted"`
	Failed     int       `json:"failed"`
	BytesFreed int64     `json:"bytes_freed"`
	Removed    []Target  `json:"-"`
	Failures   []Failure `json:"failures,omitempty"`
}

// Progress is passed to Options.OnProgress after each target.
type Progress struct {
	Done  int
	Total int
	Path  string
	OK    bool
}

// Options configures DeleteAll.
type Options struct {
	// OnProgress, if set, is called after each target.
	OnProgress func(Progress)

	// Pace is an optional delay between targets. It only slows the batch
	// down for display purposes and defaults to zero.
	Pace time.Duration
}

// DeleteAll removes every target and reports the outcome.
func DeleteAll(targets []Target, opts Options) Report {
	log := logging.Get("deleter")
	var r Report

	for i, t := range targets {
		err := Remove(t.Path)
		if err != nil {
			log.Warn("delete failed", "path", t.Path, "err", err)
			r.Failed++
			r.Failures = append(r.Failures, Failure{Path: t.Path, Error: err.Error()})
		} else {
			log.Debug("deleted", "path", t.Path, "size", t.Size)
			r.Deleted++
			r.BytesFreed += t.Size
			r.Removed = append(r.Removed, t)
		}

		if opts.OnProgress != nil {
			opts.OnProgress(Progress{Done: i + 1, Total: len(targets), Path: t.Path, OK: err == nil})
		}
		if opts.Pace > 0 && i < len(targets)-1 {
			time.Sleep(opts.Pace)
		}
	}

	log.Info("batch delete complete", "deleted", r.Deleted, "failed", r.Failed, "freed", r.BytesFreed)
	return r
}
