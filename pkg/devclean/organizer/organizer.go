// Package organizer sorts the files of a directory into category folders.
package organizer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jamesainslie/devclean/pkg/devclean/classify"
	"github.com/jamesainslie/devclean/pkg/devclean/logging"
)

// ErrTargetMissing is returned when the directory to organize does not exist
// or is not a directory. Nothing is changed in that case.
var ErrTargetMissing = errors.New("target directory not found")

// Move records a single file relocation.
type Move struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Bucket string `json:"bucket"`
}

// Failure records a file that could not be moved.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Summary reports an Organize run.
type Summary struct {
	// Moved is the number of files relocated.
	Moved int `json:"moved"`

	// Failed is the number of files left in place because of an error.
	Failed int `json:"failed"`

	// Buckets is the number of non-empty buckets.
	Buckets int `json:"buckets"`

	Moves    []Move    `json:"moves,omitempty"`
	Failures []Failure `json:"failures,omitempty"`
}

// Group is the set of files headed for one bucket.
type Group struct {
	Bucket string
	Files  []string
}

// Organizer moves the direct regular-file children of a directory into
// per-category subfolders.
type Organizer struct {
	// OnProgress, if set, is called after each file.
	OnProgress func(done, total int, path string)

	// Pace is an optional delay between files for display purposes.
	Pace time.Duration
}

// Preview returns the files of dir grouped by bucket, in bucket table order
// with Others last. Only regular files directly inside dir are listed.
func Preview(dir string) ([]Group, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrTargetMissing, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	byBucket := make(map[string][]string)
	for _, de := range entries {
		fi, err := os.Stat(filepath.Join(dir, de.Name()))
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		b := classify.BucketFor(de.Name())
		byBucket[b] = append(byBucket[b], de.Name())
	}

	var groups []Group
	for _, b := range classify.Buckets {
		if files := byBucket[b.Name]; len(files) > 0 {
			groups = append(groups, Group{Bucket: b.Name, Files: files})
		}
	}
	if files := byBucket[classify.Others]; len(files) > 0 {
		groups = append(groups, Group{Bucket: classify.Others, Files: files})
	}
	return groups, nil
}

// Organize moves every direct regular-file child of dir into a bucket
// folder. Existing files are never overwritten: a colliding name gets a
// numeric suffix before its extension (name_1.ext, name_2.ext, ...).
// Failures on individual files are counted and do not stop the run.
func (o *Organizer) Organize(dir string) (Summary, error) {
	log := logging.Get("organizer")

	groups, err := Preview(dir)
	if err != nil {
		return Summary{}, err
	}

	total := 0
	for _, g := range groups {
		total += len(g.Files)
	}

	var s Summary
	done := 0
	for _, g := range groups {
		bucketDir := filepath.Join(dir, g.Bucket)
		mkErr := os.MkdirAll(bucketDir, 0o755)
		if mkErr == nil {
			s.Buckets++
		} else {
			log.Warn("cannot create bucket", "path", bucketDir, "err", mkErr)
		}

		for _, name := range g.Files {
			src := filepath.Join(dir, name)
			var dst string
			err := mkErr
			if err == nil {
				dst, err = moveInto(src, bucketDir, name)
			}

			if err != nil {
				log.Debug("move failed", "path", src, "err", err)
				s.Failed++
				s.Failures = append(s.Failures, Failure{Path: src, Error: err.Error()})
			} else {
				s.Moved++
				s.Moves = append(s.Moves, Move{From: src, To: dst, Bucket: g.Bucket})
			}

			done++
			if o.OnProgress != nil {
				o.OnProgress(done, total, src)
			}
			if o.Pace > 0 && done < total {
				time.Sleep(o.Pace)
			}
		}
	}

	log.Info("organize complete", "dir", dir, "moved", s.Moved, "failed", s.Failed, "buckets", s.Buckets)
	return s, nil
}

// moveInto moves src into bucketDir under name or the first free suffixed
// variant. The number of candidates tried is bounded by the bucket's entry
// count plus one, which always includes a free name.
func moveInto(src, bucketDir, name string) (string, error) {
	entries, err := os.ReadDir(bucketDir)
	if err != nil {
		return "", fmt.Errorf("reading bucket: %w", err)
	}

	ext := classify.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for i := 0; i <= len(entries); i++ {
		candidate := name
		if i > 0 {
			candidate = base + "_" + strconv.Itoa(i) + ext
		}
		dst := filepath.Join(bucketDir, candidate)

		err := place(src, dst)
		if err == nil {
			return dst, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no free name for %s in %s", name, bucketDir)
}

// place moves src to dst without replacing an existing dst. A hard link
// claims the destination atomically; where links are unsupported it falls
// back to a checked rename.
func place(src, dst string) error {
	if err := os.Link(src, dst); err == nil {
		if err := os.Remove(src); err != nil {
			_ = os.Remove(dst)
			return err
		}
		return nil
	} else if errors.Is(err, fs.ErrExist) {
		return err
	}

	if _, err := os.Lstat(dst); err == nil {
		return fs.ErrExist
	}
	return os.Rename(src, dst)
}
