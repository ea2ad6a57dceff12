package walker

import "io/fs"

// FileID identifies a file independently of the path used to reach it.
type FileID struct {
	Dev uint64
	Ino uint64
}

// Identity returns the device/inode pair of the file described by info,
// along with its hard-link count. ok is false when the platform cannot
// provide an identity, in which case callers treat every path as distinct.
func Identity(path string, info fs.FileInfo) (id FileID, links uint64, ok bool) {
	return identity(path, info)
}
