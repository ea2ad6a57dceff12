// Package filter narrows, sorts and caps the items of a scan report.
package filter

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/jamesainslie/devclean/pkg/devclean/types"
)

// SortField specifies the field to sort items by.
type SortField int

const (
	// SortSize sorts items by size in bytes.
	SortSize SortField = iota
	// SortPath sorts items by path.
	SortPath
	// SortKind sorts items by kind, then subtype.
	SortKind
	// SortAge sorts items by modification time, oldest first.
	SortAge
)

var sortNames = map[SortField]string{
	SortSize: "size",
	SortPath: "path",
	SortKind: "kind",
	SortAge:  "age",
}

// String returns the flag spelling of the field.
func (s SortField) String() string {
	if n, ok := sortNames[s]; ok {
		return n
	}
	return "size"
}

var (
	// ErrInvalidSortField indicates an unrecognized sort field.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrInvalidKind indicates an unrecognized item kind.
	ErrInvalidKind = errors.New("invalid kind")

	// ErrInvalidPattern indicates a glob pattern that does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// ParseSortField parses "size", "path", "kind" or "age", case-insensitively.
func ParseSortField(s string) (SortField, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, n := range sortNames {
		if n == s {
			return f, nil
		}
	}
	return SortSize, fmt.Errorf("%w: %q", ErrInvalidSortField, s)
}

// kindAliases lets users type the shorter or plural names shown in reports.
var kindAliases = map[string]types.Kind{
	"node_modules": types.KindNodeModules,
	"node":         types.KindNodeModules,
	"build":        types.KindBuild,
	"builds":       types.KindBuild,
	"log":          types.KindLog,
	"logs":         types.KindLog,
	"temp":         types.KindTemp,
	"tmp":          types.KindTemp,
}

// ParseKinds parses kind names. Each element may itself be comma separated.
func ParseKinds(names []string) ([]types.Kind, error) {
	var kinds []types.Kind
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			k, ok := kindAliases[part]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrInvalidKind, part)
			}
			if !slices.Contains(kinds, k) {
				kinds = append(kinds, k)
			}
		}
	}
	return kinds, nil
}

// Filter selects report items.
type Filter struct {
	// Kinds restricts items to these kinds. Empty means all.
	Kinds []types.Kind

	// MinSize excludes items smaller than this many bytes.
	MinSize int64

	// StaleOnly keeps only stale items. Files are never stale.
	StaleOnly bool

	// Exclude drops items whose path matches any glob.
	Exclude []string

	// SortBy orders items inside each partition.
	SortBy SortField

	// SortDescending reverses the order.
	SortDescending bool

	// Limit caps the items shown per partition. 0 means unlimited.
	Limit int

	excludes []glob.Glob
}

// Option configures a Filter.
type Option func(*Filter)

// New creates a Filter sorted by size, largest first, with no limit.
func New(opts ...Option) *Filter {
	f := &Filter{SortBy: SortSize, SortDescending: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithKinds sets the kinds to keep.
func WithKinds(kinds ...types.Kind) Option {
	return func(f *Filter) { f.Kinds = kinds }
}

// WithMinSize sets the minimum item size. Negative values mean 0.
func WithMinSize(n int64) Option {
	return func(f *Filter) { f.MinSize = max(n, 0) }
}

// WithStaleOnly keeps only stale items.
func WithStaleOnly(v bool) Option {
	return func(f *Filter) { f.StaleOnly = v }
}

// WithExclude sets glob patterns of paths to drop.
func WithExclude(patterns ...string) Option {
	return func(f *Filter) { f.Exclude = patterns }
}

// WithSortBy sets the sort field. Path and kind sort ascending, size and age
// descending unless WithSortDescending follows.
func WithSortBy(field SortField) Option {
	return func(f *Filter) {
		f.SortBy = field
		f.SortDescending = field == SortSize
	}
}

// WithSortDescending sets the sort direction.
func WithSortDescending(desc bool) Option {
	return func(f *Filter) { f.SortDescending = desc }
}

// WithLimit caps each partition. Negative values mean unlimited.
func WithLimit(n int) Option {
	return func(f *Filter) { f.Limit = max(n, 0) }
}

// Compile validates the exclude patterns. Match and Apply call it lazily;
// callers that want to report a bad pattern early call it themselves.
func (f *Filter) Compile() error {
	if f.excludes != nil || len(f.Exclude) == 0 {
		return nil
	}
	compiled := make([]glob.Glob, 0, len(f.Exclude))
	for _, p := range f.Exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err)
		}
		compiled = append(compiled, g)
	}
	f.excludes = compiled
	return nil
}

// Match reports whether item passes every criterion.
func (f *Filter) Match(item types.ReclaimableItem) bool {
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, item.Kind) {
		return false
	}
	if f.MinSize > 0 && item.Size < f.MinSize {
		return false
	}
	if f.StaleOnly && !item.IsStale {
		return false
	}
	if err := f.Compile(); err != nil {
		return true
	}
	for _, g := range f.excludes {
		if g.Match(item.Path) {
			return false
		}
	}
	return true
}

// Sort returns a sorted copy of items.
func (f *Filter) Sort(items []types.ReclaimableItem) []types.ReclaimableItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b types.ReclaimableItem) int {
		var c int
		switch f.SortBy {
		case SortPath:
			c = cmp.Compare(a.Path, b.Path)
		case SortKind:
			c = cmp.Or(
				cmp.Compare(kindRank(a.Kind), kindRank(b.Kind)),
				cmp.Compare(a.Subtype, b.Subtype),
				cmp.Compare(a.Path, b.Path),
			)
		case SortAge:
			c = a.ModTime.Compare(b.ModTime)
		default:
			c = cmp.Compare(a.Size, b.Size)
		}
		if f.SortDescending {
			return -c
		}
		return c
	})
	return sorted
}

// Apply filters, sorts and limits items.
func (f *Filter) Apply(items []types.ReclaimableItem) []types.ReclaimableItem {
	var matched []types.ReclaimableItem
	for _, it := range items {
		if f.Match(it) {
			matched = append(matched, it)
		}
	}
	out := f.Sort(matched)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// Result returns a copy of r holding only matching items, each partition
// sorted and limited independently. TotalSize is recomputed from the kept
// items; roots, errors and elapsed time carry over.
func (f *Filter) Result(r *types.ScanResult) *types.ScanResult {
	out := &types.ScanResult{
		Roots:   r.Roots,
		Errors:  r.Errors,
		Elapsed: r.Elapsed,
	}
	for _, k := range types.Kinds {
		for _, it := range f.Apply(r.Partition(k)) {
			out.Add(it)
		}
	}
	return out
}

func kindRank(k types.Kind) int {
	if i := slices.Index(types.Kinds, k); i >= 0 {
		return i
	}
	return len(types.Kinds)
}
