// Package walker provides bounded-depth, lazy directory traversal.
//
// Depth 0 is the root's direct children. A directory yielded at depth d is
// listed with depth d+1, and listing stops once the depth exceeds MaxDepth,
// so entries of depth 0 through MaxDepth are produced. Symbolic links are
// followed, and every directory is tracked by its (device, inode) identity so
// a link cycle is entered at most once.
package walker

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// Entry is a single filesystem object produced by a walk.
type Entry struct {
	// Path is the joined path of the entry, rooted at the walk root.
	Path string

	// Name is the base name of the entry.
	Name string

	// IsDir reports whether the entry resolves to a directory.
	IsDir bool

	// Depth is the entry's distance from the root (0 for direct children).
	Depth int

	// Info is the followed (stat, not lstat) metadata of the entry.
	Info fs.FileInfo
}

// Walker enumerates a directory tree.
type Walker struct {
	// MaxDepth is the deepest level whose entries are yielded.
	MaxDepth int

	// Prune, when it returns true for a directory entry, keeps the walker
	// from descending into it. The entry itself is still yielded.
	Prune func(Entry) bool

	// OnError receives per-entry failures. The walk always continues.
	OnError func(path string, err error)

	// Visited, when non-nil, is shared by every walk of this Walker. It maps
	// each directory reached so far to whether it was listed. A root that was
	// already listed yields nothing, and a directory reached before is not
	// yielded again, so overlapping roots never produce an entry twice. Nil
	// gives each walk its own set.
	Visited map[FileID]bool
}

// Walk returns a lazy sequence of the entries under root. Stopping the range
// loop early stops the traversal.
func (w *Walker) Walk(root string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		visited := w.Visited
		if visited == nil {
			visited = make(map[FileID]bool)
		}
		if info, err := os.Stat(root); err == nil {
			if id, _, ok := Identity(root, info); ok {
				if visited[id] {
					return
				}
				visited[id] = true
			}
		}
		w.walkDir(root, 0, visited, yield)
	}
}

// walkDir lists dir at the given depth. It returns false once the consumer
// has asked to stop.
func (w *Walker) walkDir(dir string, depth int, visited map[FileID]bool, yield func(Entry) bool) bool {
	if depth > w.MaxDepth {
		return true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.report(dir, err)
		return true
	}

	for _, de := range entries {
		path := filepath.Join(dir, de.Name())

		info, err := os.Stat(path)
		if err != nil {
			w.report(path, err)
			continue
		}

		e := Entry{
			Path:  path,
			Name:  de.Name(),
			IsDir: info.IsDir(),
			Depth: depth,
			Info:  info,
		}

		var id FileID
		tracked := false
		if e.IsDir {
			if id, _, tracked = Identity(path, info); tracked {
				if _, seen := visited[id]; seen {
					continue
				}
				visited[id] = false
			}
		}

		if !yield(e) {
			return false
		}

		if e.IsDir && depth < w.MaxDepth && (w.Prune == nil || !w.Prune(e)) {
			if tracked {
				visited[id] = true
			}
			if !w.walkDir(path, depth+1, visited, yield) {
				return false
			}
		}
	}

	return true
}

func (w *Walker) report(path string, err error) {
	if w.OnError != nil {
		w.OnError(path, err)
	}
}
