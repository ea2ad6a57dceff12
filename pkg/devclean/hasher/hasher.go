// Package hasher computes SHA-256 content digests of files.
//
// Files are read in fixed 64 KiB chunks so memory use does not grow with file
// size. Two files with the same digest are treated as having identical
// content.
package hasher

import (
	"crypto/sha256"
	"io"
	"os"

	"github.com/jamesainslie/devclean/pkg/devclean/logging"
	"github.com/jamesainslie/devclean/pkg/devclean/types"
)

// ChunkSize is the read buffer size used while hashing.
const ChunkSize = 64 * 1024

// Hasher computes file digests. It is not safe for concurrent use.
type Hasher struct {
	memo *Memo
	buf  []byte
	log  *logging.Logger

	// Hashed counts digests computed from file content.
	Hashed int
	// Reused counts digests served from the memo.
	Reused int
}

// New returns a Hasher. memo may be nil, in which case every call reads the
// file.
func New(memo *Memo) *Hasher {
	return &Hasher{
		memo: memo,
		buf:  make([]byte, ChunkSize),
		log:  logging.Get("hasher"),
	}
}

// Hash returns the SHA-256 digest of the file at path. ok is false if the
// file could not be opened or read; such files must be left out of any
// grouping.
func (h *Hasher) Hash(path string) (digest types.Digest, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		h.log.Debug("open failed", "path", path, "err", err)
		return digest, false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.log.Debug("stat failed", "path", path, "err", err)
		return digest, false
	}

	if h.memo != nil {
		if d, hit := h.memo.Lookup(path, info.Size(), info.ModTime().UnixNano()); hit {
			h.Reused++
			return d, true
		}
	}

	sum := sha256.New()
	if _, err := io.CopyBuffer(sum, f, h.buf); err != nil {
		h.log.Debug("read failed", "path", path, "err", err)
		return digest, false
	}
	copy(digest[:], sum.Sum(nil))
	h.Hashed++

	if h.memo != nil {
		if err := h.memo.Store(path, info.Size(), info.ModTime().UnixNano(), digest); err != nil {
			h.log.Debug("memo store failed", "path", path, "err", err)
		}
	}
	return digest, true
}
