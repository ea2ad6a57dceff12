// Package manifest records the destructive operations devclean performs.
package manifest

import "time"

// OperationType represents the type of operation.
type OperationType string

const (
	// OpClean records a reclaimable-artifact cleanup.
	OpClean OperationType = "clean"
	// OpDedupe records a duplicate-file removal.
	OpDedupe OperationType = "dedupe"
	// OpOrganize records an organize run.
	OpOrganize OperationType = "organize"
	// OpCache records a package-manager cache clear.
	OpCache OperationType = "cache"
)

// Entry is one recorded operation.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation OperationType `json:"operation"`
	Target    string        `json:"target,omitempty"`
	Files     []FileRecord  `json:"files"`
	Summary   Summary       `json:"summary"`
}

// FileRecord is a file or folder touched by an operation.
type FileRecord struct {
	Path string `json:"path"`
	Size int64  `json:"size"`

	// Kind is the reclaimable kind or organize bucket.
	Kind string `json:"kind,omitempty"`

	// Dest is set for moves.
	Dest string `json:"dest,omitempty"`

	// Digest is set for duplicate removals.
	Digest string `json:"digest,omitempty"`

	// Error is set when the item failed.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the record describes a failed item.
func (r FileRecord) Failed() bool {
	return r.Error != ""
}

// Summary totals an entry.
type Summary struct {
	TotalFiles int64 `json:"total_files"`
	TotalBytes int64 `json:"total_bytes"`
	Failed     int64 `json:"failed,omitempty"`
}
