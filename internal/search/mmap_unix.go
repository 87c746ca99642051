//go:build unix

package search

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var errRangeEmpty = errors.New("empty range")

var errRangeBounds = errors.New("range outside file")

// mappedRegion is a read-only memory mapping backing one cache window. It is
// immutable and safely shared by all workers scanning shards within it. It
// must stay mapped until every shard derived from it has been processed.
type mappedRegion struct {
	raw  []byte // page-aligned mapping
	skip int    // bytes between the mapping start and the requested start
}

// mapRange establishes a read-only mapping over [start, end) of f. mmap
// offsets must be page-aligned, so the mapping is extended down to the
// nearest page boundary and Bytes trims the difference. Callers may
// therefore use arbitrary window sizes.
func (f *File) mapRange(start, end int64) (*mappedRegion, error) {
	if end <= start {
		return nil, &MapError{Start: start, End: end, Err: errRangeEmpty}
	}

	if start < 0 || end > f.size {
		return nil, &MapError{Start: start, End: end, Err: errRangeBounds}
	}

	pageSize := int64(os.Getpagesize())
	aligned := start - start%pageSize

	raw, err := unix.Mmap(int(f.f.Fd()), aligned, int(end-aligned), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, &MapError{Start: start, End: end, Err: err}
	}

	return &mappedRegion{raw: raw, skip: int(start - aligned)}, nil
}

// Bytes returns exactly the requested [start, end) range. The slice aliases
// the mapping and is invalid after Close.
func (m *mappedRegion) Bytes() []byte { return m.raw[m.skip:] }

// Close unmaps the region and nils the backing slice so stale views fail
// loudly rather than read unmapped memory.
func (m *mappedRegion) Close() error {
	if m.raw == nil {
		return nil
	}

	raw := m.raw
	m.raw = nil

	return unix.Munmap(raw)
}

// resident reports the fraction of the region's pages currently in the page
// cache, using mincore(2).
func (m *mappedRegion) resident() (float64, error) {
	if len(m.raw) == 0 {
		return 0, errRangeEmpty
	}

	pageSize := os.Getpagesize()
	vec := make([]byte, (len(m.raw)+pageSize-1)/pageSize)

	if err := mincore(m.raw, vec); err != nil {
		return 0, err
	}

	in := 0

	for _, v := range vec {
		in += int(v & 1)
	}

	return float64(in) / float64(len(vec)), nil
}
