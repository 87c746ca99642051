//go:build linux

package search

import "golang.org/x/sys/unix"

const (
	adviseWillneed = unix.FADV_WILLNEED
	adviseDontneed = unix.FADV_DONTNEED
)

func fadvise(fd uintptr, off, length int64, advice int) error {
	return unix.Fadvise(int(fd), off, length, advice)
}
