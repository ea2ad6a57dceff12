//go:build !unix && !windows

package walker

import "io/fs"

// identity is unavailable on this platform.
func identity(_ string, _ fs.FileInfo) (FileID, uint64, bool) {
	return FileID{}, 0, false
}
