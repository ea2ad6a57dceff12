// Package types provides the data model shared by the devclean engine:
// reclaimable items found by a scan, the aggregated scan result, and sets of
// byte-identical files found by the duplicate detector.
package types

import (
	"encoding/hex"
	"fmt"
	"time"
)

// Kind identifies which partition of a ScanResult an item belongs to.
type Kind string

// Reclaimable item kinds.
const (
	KindNodeModules Kind = "node_modules"
	KindBuild       Kind = "build"
	KindLog         Kind = "log"
	KindTemp        Kind = "temp"
)

// Kinds lists every item kind in report order.
var Kinds = []Kind{KindNodeModules, KindBuild, KindLog, KindTemp}

// ReclaimableItem is a directory or file that devclean considers safe to
// remove. Size is the recursive byte sum taken at classification time.
type ReclaimableItem struct {
	// Path is the absolute path of the item.
	Path string `json:"path" yaml:"path"`

	// Size is the total size in bytes (recursive for directories).
	Size int64 `json:"size" yaml:"size"`

	// Kind is the partition the item was classified into.
	Kind Kind `json:"kind" yaml:"kind"`

	// Subtype is the matched folder name for build folders (e.g. "dist").
	Subtype string `json:"subtype,omitempty" yaml:"subtype,omitempty"`

	// IsStale reports whether the containing directory has not been modified
	// within the staleness window. Always false for files.
	IsStale bool `json:"is_stale" yaml:"is_stale"`

	// ModTime is the item's own modification time.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// HumanSize returns the item size formatted with binary units.
func (r *ReclaimableItem) HumanSize() string {
	return FormatSize(r.Size)
}

// ScanError records a path that could not be read during a scan.
type ScanError struct {
	// Path is the path where the error occurred.
	Path string `json:"path" yaml:"path"`

	// Error is the error message.
	Error string `json:"error" yaml:"error"`
}

// ScanResult is the outcome of scanning one or more roots. The four
// partitions are mutually exclusive and TotalSize is the sum of every item
// size across them.
type ScanResult struct {
	Roots        []string          `json:"roots" yaml:"roots"`
	NodeModules  []ReclaimableItem `json:"node_modules" yaml:"node_modules"`
	BuildFolders []ReclaimableItem `json:"build_folders" yaml:"build_folders"`
	LogFiles     []ReclaimableItem `json:"log_files" yaml:"log_files"`
	TempFiles    []ReclaimableItem `json:"temp_files" yaml:"temp_files"`
	TotalSize    int64             `json:"total_size" yaml:"total_size"`
	Errors       []ScanError       `json:"errors,omitempty" yaml:"errors,omitempty"`
	Elapsed      time.Duration     `json:"elapsed" yaml:"elapsed"`
}

// Add appends item to the partition matching its kind and updates TotalSize.
func (r *ScanResult) Add(item ReclaimableItem) {
	switch item.Kind {
	case KindNodeModules:
		r.NodeModules = append(r.NodeModules, item)
	case KindBuild:
		r.BuildFolders = append(r.BuildFolders, item)
	case KindLog:
		r.LogFiles = append(r.LogFiles, item)
	case KindTemp:
		r.TempFiles = append(r.TempFiles, item)
	default:
		return
	}
	r.TotalSize += item.Size
}

// Partition returns the items of the given kind.
func (r *ScanResult) Partition(k Kind) []ReclaimableItem {
	switch k {
	case KindNodeModules:
		return r.NodeModules
	case KindBuild:
		return r.BuildFolders
	case KindLog:
		return r.LogFiles
	case KindTemp:
		return r.TempFiles
	}
	return nil
}

// All returns every item in report order: node_modules, build folders,
// log files, temp files.
func (r *ScanResult) All() []ReclaimableItem {
	out := make([]ReclaimableItem, 0, r.Count())
	for _, k := range Kinds {
		out = append(out, r.Partition(k)...)
	}
	return out
}

// Count returns the number of items across all partitions.
func (r *ScanResult) Count() int {
	return len(r.NodeModules) + len(r.BuildFolders) + len(r.LogFiles) + len(r.TempFiles)
}

// Cleanable returns the items the clean command removes: stale node_modules
// folders plus every build folder, log file and temp file.
func (r *ScanResult) Cleanable() []ReclaimableItem {
	var out []ReclaimableItem
	for _, item := range r.NodeModules {
		if item.IsStale {
			out = append(out, item)
		}
	}
	out = append(out, r.BuildFolders...)
	out = append(out, r.LogFiles...)
	out = append(out, r.TempFiles...)
	return out
}

// PartitionSize returns the summed size of the items of the given kind.
func (r *ScanResult) PartitionSize(k Kind) int64 {
	var total int64
	for _, item := range r.Partition(k) {
		total += item.Size
	}
	return total
}

// ScanProgress is a snapshot of a running scan, reported to progress
// callbacks.
type ScanProgress struct {
	// Root is the root currently being walked.
	Root string

	// CurrentPath is the most recent entry visited.
	CurrentPath string

	// Entries is the number of entries visited so far across all roots.
	Entries int64

	// Items is the number of reclaimable items found so far.
	Items int

	// Bytes is the total size of the items found so far.
	Bytes int64
}

// Digest is a SHA-256 content digest.
type Digest [32]byte

// String returns the lowercase hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalText implements encoding.TextMarshaler so digests render as hex.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a hex digest.
func (d *Digest) UnmarshalText(text []byte) error {
	if hex.DecodedLen(len(text)) != len(d) {
		return fmt.Errorf("digest: want %d hex characters, got %d", hex.EncodedLen(len(d)), len(text))
	}
	_, err := hex.Decode(d[:], text)
	return err
}

// DuplicateFile is one member of a DuplicateSet.
type DuplicateFile struct {
	Path    string    `json:"path" yaml:"path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// KeepPolicy selects which member of a duplicate set survives deletion.
type KeepPolicy string

const (
	// KeepFirst keeps the first file in discovery order.
	KeepFirst KeepPolicy = "first"

	// KeepOldest keeps the file with the earliest modification time. Ties go
	// to the earlier discovered file.
	KeepOldest KeepPolicy = "oldest"
)

// Valid reports whether p is a known policy.
func (p KeepPolicy) Valid() bool {
	return p == KeepFirst || p == KeepOldest
}

// DuplicateSet is a group of two or more files with identical content.
// Files are kept in discovery order.
type DuplicateSet struct {
	Digest Digest          `json:"digest" yaml:"digest"`
	Files  []DuplicateFile `json:"files" yaml:"files"`
}

// Keeper returns the index of the file that survives under policy.
func (s *DuplicateSet) Keeper(policy KeepPolicy) int {
	if policy != KeepOldest {
		return 0
	}
	keep := 0
	for i := 1; i < len(s.Files); i++ {
		if s.Files[i].ModTime.Before(s.Files[keep].ModTime) {
			keep = i
		}
	}
	return keep
}

// Wasted returns the bytes held by every member except one. All members
// share a size, so the result does not depend on the keeper policy.
func (s *DuplicateSet) Wasted() int64 {
	if len(s.Files) < 2 {
		return 0
	}
	return s.Files[0].Size * int64(len(s.Files)-1)
}
