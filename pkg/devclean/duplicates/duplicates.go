// Package duplicates finds files with byte-identical content under a
// directory.
package duplicates

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jamesainslie/devclean/pkg/devclean/deleter"
	"github.com/jamesainslie/devclean/pkg/devclean/hasher"
	"github.com/jamesainslie/devclean/pkg/devclean/logging"
	"github.com/jamesainslie/devclean/pkg/devclean/types"
	"github.com/jamesainslie/devclean/pkg/devclean/walker"
)

// Defaults for Detector.
const (
	DefaultMaxDepth = 3
	DefaultMinSize  = 1024
)

// Detector groups files under a root by content digest.
type Detector struct {
	// MaxDepth is the deepest level listed below the root.
	MaxDepth int

	// MinSize is the size floor. Only files strictly larger are considered.
	MinSize int64

	// Hasher computes digests. Nil uses a Hasher without a memo.
	Hasher *hasher.Hasher

	// OnHash, if set, is called before each file is hashed with the number
	// of files hashed so far and the number of candidates.
	OnHash func(done, total int, path string)
}

// New returns a Detector with the default depth and size floor.
func New() *Detector {
	return &Detector{MaxDepth: DefaultMaxDepth, MinSize: DefaultMinSize}
}

// Find walks root and returns every set of two or more files with identical
// content. Directories named node_modules or starting with a dot are not
// entered. Sets are ordered by the discovery of their first member and
// members keep discovery order.
func (d *Detector) Find(ctx context.Context, root string) ([]types.DuplicateSet, error) {
	log := logging.Get("duplicates")

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("duplicates root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("duplicates root %s: not a directory", root)
	}

	w := &walker.Walker{
		MaxDepth: d.MaxDepth,
		Prune:    skipDir,
		OnError: func(path string, err error) {
			log.Debug("entry error", "path", path, "err", err)
		},
	}

	var files []types.DuplicateFile
	bySize := make(map[int64]int)
	seen := make(map[walker.FileID]struct{})
	for e := range w.Walk(root) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir || !e.Info.Mode().IsRegular() || e.Info.Size() <= d.MinSize {
			continue
		}
		// Further links to an already listed file are not copies.
		if id, _, ok := walker.Identity(e.Path, e.Info); ok {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		files = append(files, types.DuplicateFile{
			Path:    e.Path,
			Size:    e.Info.Size(),
			ModTime: e.Info.ModTime(),
		})
		bySize[e.Info.Size()]++
	}

	// A file with a unique size cannot have a duplicate.
	var hashable []types.DuplicateFile
	for _, f := range files {
		if bySize[f.Size] > 1 {
			hashable = append(hashable, f)
		}
	}
	log.Debug("candidates", "files", len(files), "hashable", len(hashable))

	h := d.Hasher
	if h == nil {
		h = hasher.New(nil)
	}

	groups := make(map[types.Digest]int)
	var sets []types.DuplicateSet
	for i, f := range hashable {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.OnHash != nil {
			d.OnHash(i, len(hashable), f.Path)
		}

		digest, ok := h.Hash(f.Path)
		if !ok {
			continue
		}
		idx, seen := groups[digest]
		if !seen {
			idx = len(sets)
			groups[digest] = idx
			sets = append(sets, types.DuplicateSet{Digest: digest})
		}
		sets[idx].Files = append(sets[idx].Files, f)
	}

	out := sets[:0]
	for _, s := range sets {
		if len(s.Files) >= 2 {
			out = append(out, s)
		}
	}
	log.Info("duplicate search complete", "root", root, "sets", len(out))
	return out, nil
}

// skipDir prunes dependency folders and hidden directories.
func skipDir(e walker.Entry) bool {
	return e.Name == "node_modules" || strings.HasPrefix(e.Name, ".")
}

// Plan returns the files to delete so that exactly one member of each set
// survives under policy.
func Plan(sets []types.DuplicateSet, policy types.KeepPolicy) []deleter.Target {
	var targets []deleter.Target
	for i := range sets {
		keep := sets[i].Keeper(policy)
		for j, f := range sets[i].Files {
			if j == keep {
				continue
			}
			targets = append(targets, deleter.Target{Path: f.Path, Size: f.Size})
		}
	}
	return targets
}

// Wasted returns the total bytes held by non-keepers across sets.
func Wasted(sets []types.DuplicateSet) int64 {
	var total int64
	for i := range sets {
		total += sets[i].Wasted()
	}
	return total
}
