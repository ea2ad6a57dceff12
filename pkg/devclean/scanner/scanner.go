package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jamesainslie/devclean/pkg/devclean/classify"
	"github.com/jamesainslie/devclean/pkg/devclean/logging"
	"github.com/jamesainslie/devclean/pkg/devclean/sizer"
	"github.com/jamesainslie/devclean/pkg/devclean/types"
	"github.com/jamesainslie/devclean/pkg/devclean/walker"
)

// Scanner walks its roots and classifies what it finds.
type Scanner struct {
	opts   Options
	cutoff time.Time
	log    *logging.Logger

	result   *types.ScanResult
	entries  int64
	lastSent int64

	// visited is shared by the walks of one Scan so overlapping roots
	// contribute each entry once.
	visited map[walker.FileID]bool
	// folders holds the resolved paths of folder items found so far.
	folders []string
}

// New creates a Scanner. Defaults are applied to unset options.
func New(opts Options) *Scanner {
	opts.applyDefaults()
	return &Scanner{
		opts:   opts,
		cutoff: opts.Now.AddDate(0, -opts.StaleMonths, 0),
		log:    logging.Get("scanner"),
	}
}

// Scan walks every root in order and returns the merged result. A root that
// is missing or not a directory is recorded in the result's Errors and
// skipped. Cancellation is checked between entries; an interrupted scan
// returns the partial result along with ctx.Err().
func (s *Scanner) Scan(ctx context.Context) (*types.ScanResult, error) {
	start := time.Now()
	s.result = &types.ScanResult{}
	s.entries = 0
	s.lastSent = 0
	s.visited = make(map[walker.FileID]bool)
	s.folders = nil

	defer func() {
		s.result.Elapsed = time.Since(start)
	}()

	for _, root := range s.opts.Roots {
		if err := ctx.Err(); err != nil {
			return s.result, err
		}

		abs, err := s.checkRoot(root)
		if err != nil {
			s.log.Warn("skipping root", "root", root, "err", err)
			s.recordError(root, err)
			continue
		}
		if s.covered(abs) {
			s.log.Info("skipping root already scanned", "root", abs)
			continue
		}
		s.result.Roots = append(s.result.Roots, abs)

		s.log.Info("scanning root", "root", abs, "max_depth", s.opts.MaxDepth)
		if err := s.scanRoot(ctx, abs); err != nil {
			return s.result, err
		}
	}

	s.log.Info("scan complete",
		"items", s.result.Count(),
		"total", types.FormatSize(s.result.TotalSize),
		"errors", len(s.result.Errors))
	return s.result, nil
}

func (s *Scanner) checkRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: not a directory", abs)
	}
	return abs, nil
}

// covered reports whether root was listed by an earlier root's walk or lies
// inside a folder item that was already sized as a whole.
func (s *Scanner) covered(root string) bool {
	if info, err := os.Stat(root); err == nil {
		if id, _, ok := walker.Identity(root, info); ok && s.visited[id] {
			return true
		}
	}

	resolved := resolve(root)
	for _, dir := range s.folders {
		if within(resolved, dir) {
			return true
		}
	}
	return false
}

// resolve returns path with symlinks evaluated, or path itself when that
// fails.
func resolve(path string) string {
	if r, err := filepath.EvalSymlinks(path); err == nil {
		return r
	}
	return path
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (s *Scanner) scanRoot(ctx context.Context, root string) error {
	w := &walker.Walker{
		MaxDepth: s.opts.MaxDepth,
		Visited:  s.visited,
		Prune: func(e walker.Entry) bool {
			return classify.Classify(e.Name, true).Folder()
		},
		OnError: func(path string, err error) {
			s.log.Debug("entry error", "path", path, "err", err)
			s.recordError(path, err)
		},
	}

	for e := range w.Walk(root) {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.entries++

		if item, ok := s.classify(e); ok {
			if e.IsDir {
				s.folders = append(s.folders, resolve(e.Path))
			}
			s.result.Add(item)
			s.report(root, e.Path, true)
			continue
		}
		s.report(root, e.Path, false)
	}
	return nil
}

// classify turns a walker entry into a reclaimable item.
func (s *Scanner) classify(e walker.Entry) (types.ReclaimableItem, bool) {
	cat := classify.Classify(e.Name, e.IsDir)

	switch cat {
	case classify.NodeModules, classify.BuildFolder:
		item := types.ReclaimableItem{
			Path:    e.Path,
			Size:    sizer.SizeOf(e.Path),
			Kind:    types.KindBuild,
			IsStale: s.isStale(filepath.Dir(e.Path)),
			ModTime: e.Info.ModTime(),
		}
		if cat == classify.NodeModules {
			item.Kind = types.KindNodeModules
		} else {
			item.Subtype = e.Name
		}
		return item, true

	case classify.LogFile, classify.TempFile:
		item := types.ReclaimableItem{
			Path:    e.Path,
			Size:    e.Info.Size(),
			Kind:    types.KindLog,
			ModTime: e.Info.ModTime(),
		}
		if cat == classify.TempFile {
			item.Kind = types.KindTemp
		}
		return item, true
	}

	return types.ReclaimableItem{}, false
}

// isStale reports whether dir was last modified before the cutoff. A
// directory that cannot be read is treated as recently modified.
func (s *Scanner) isStale(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil {
		s.log.Debug("stat parent failed", "path", dir, "err", err)
		return false
	}
	return info.ModTime().Before(s.cutoff)
}

func (s *Scanner) recordError(path string, err error) {
	s.result.Errors = append(s.result.Errors, types.ScanError{
		Path:  path,
		Error: err.Error(),
	})
}

func (s *Scanner) report(root, path string, found bool) {
	if s.opts.OnProgress == nil {
		return
	}
	if !found && s.entries-s.lastSent < progressEvery {
		return
	}
	s.lastSent = s.entries
	s.opts.OnProgress(types.ScanProgress{
		Root:        root,
		CurrentPath: path,
		Entries:     s.entries,
		Items:       s.result.Count(),
		Bytes:       s.result.TotalSize,
	})
}
