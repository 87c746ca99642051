//go:build unix && !linux

package search

import "errors"

// mincore is only wired up on Linux. Residency stays unmeasurable here and
// Stats.Resident keeps its negative sentinel.
func mincore([]byte, []byte) error {
	return errors.ErrUnsupported
}
