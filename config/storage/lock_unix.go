//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package storage

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an flock on f: exclusive for writers, shared for readers
func lockFile(f *os.File, exclusive bool) error {
	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	return unix.Flock(int(f.Fd()), how)
}

// unlockFile 解锁
func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
