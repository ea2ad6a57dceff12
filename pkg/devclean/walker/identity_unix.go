//go:build unix

package walker

import (
	"io/fs"
	"syscall"
)

func identity(_ string, info fs.FileInfo) (FileID, uint64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return FileID{}, 0, false
	}
	return FileID{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}, uint64(st.Nlink), true
}
