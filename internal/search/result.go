package search

import "time"

// Status is the terminal classification of a completed run. Failed runs are
// reported through Run's error return instead.
type Status uint8

const (
	// StatusNotFound means the scan completed without a match.
	StatusNotFound Status = iota

	// StatusFound means at least one match was found.
	StatusFound
)

func (s Status) String() string {
	if s == StatusFound {
		return "found"
	}

	return "not found"
}

// Match is one matching line.
type Match struct {
	// Offset is the byte offset of the matching line's first byte.
	Offset int64

	// Line is the 1-based line number of the match.
	Line int64

	// Text is the line's content without its terminator. It is copied out
	// of the mapping and stays valid after the run.
	Text []byte
}

// Result is the outcome of one run. Matches are sorted ascending by byte
// offset, identical to what a sequential single-threaded scan would produce.
// In first-match mode it holds at most one entry.
type Result struct {
	Status  Status
	Matches []Match
	Stats   Stats
}

// Stats carries throughput and cache diagnostics for one run.
type Stats struct {
	// BytesScanned and LinesScanned cover shards that were actually
	// scanned; shards skipped after cancellation are excluded.
	BytesScanned int64
	LinesScanned int64

	// WindowsPrimed counts cache windows staged ahead of the scan.
	WindowsPrimed int64

	// Resident is the fraction of the first window's pages already in the
	// page cache when it was mapped, in [0, 1]. Negative when residency
	// could not be measured.
	Resident float64

	// AdviseErrors counts failed cache-advisory calls. Advisory failures
	// are soft: the scan proceeds at baseline I/O speed.
	AdviseErrors int64

	Elapsed time.Duration
}
