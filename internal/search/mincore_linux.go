//go:build linux

package search

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// mincore fills vec with one residency byte per page of data, which must be
// a live mapping. x/sys does not wrap mincore(2), so the raw syscall is
// invoked directly.
func mincore(data, vec []byte) error {
	if _, _, errno := unix.Syscall(unix.SYS_MINCORE,
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)),
		uintptr(unsafe.Pointer(&vec[0]))); errno != 0 {
		return errno
	}

	return nil
}
