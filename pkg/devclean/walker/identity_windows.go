//go:build windows

package walker

import (
	"io/fs"

	"golang.org/x/sys/windows"
)

// identity opens the file to read its volume serial and file index. The
// handle is opened without FILE_FLAG_OPEN_REPARSE_POINT so links resolve to
// their target, matching os.Stat.
func identity(path string, _ fs.FileInfo) (FileID, uint64, bool) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return FileID{}, 0, false
	}

	h, err := windows.CreateFile(
		p,
		0,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return FileID{}, 0, false
	}
	defer windows.CloseHandle(h)

	var d windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &d); err != nil {
		return FileID{}, 0, false
	}

	id := FileID{
		Dev: uint64(d.VolumeSerialNumber),
		Ino: uint64(d.FileIndexHigh)<<32 | uint64(d.FileIndexLow),
	}
	return id, uint64(d.NumberOfLinks), true
}
