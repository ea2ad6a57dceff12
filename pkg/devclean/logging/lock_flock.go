//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package logging

import (
	"os"
	"syscall"
)

func lockFile(f *os.File) {
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_EX)
}

func unlockFile(f *os.File) {
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
