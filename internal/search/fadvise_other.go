//go:build unix && !linux

package search

import "errors"

const (
	adviseWillneed = iota
	adviseDontneed
)

// fadvise has no portable equivalent off Linux. The read loop in
// primer.prime still stages data, so priming degrades rather than breaks.
func fadvise(uintptr, int64, int64, int) error {
	return errors.ErrUnsupported
}
