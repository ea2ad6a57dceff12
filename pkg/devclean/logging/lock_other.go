//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd)

package logging

import "os"

// Cross-process locking is not available here; writes are still serialized
// within the process.
func lockFile(*os.File) {}

func unlockFile(*os.File) {}
