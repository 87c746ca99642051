package search

import "context"

// aggregator restores file order. Workers complete shards in arbitrary
// order; results buffer here keyed by sequence number and are released
// strictly in ascending sequence, which is ascending byte offset. Absolute
// line numbers are assigned at release time from a running terminator
// total, so numbering needs no extra pass over the file.
//
// The aggregator runs in a single goroutine; its fields are read by the
// controller only after that goroutine exits.
type aggregator struct {
	first  bool
	cancel context.CancelFunc

	pending  map[uint64]shardResult
	next     uint64
	lineBase int64

	matches   []Match
	err       error
	finalized bool

	bytesScanned int64
	linesScanned int64
}

func newAggregator(first bool, cancel context.CancelFunc) *aggregator {
	return &aggregator{
		first:   first,
		cancel:  cancel,
		pending: make(map[uint64]shardResult),
	}
}

// run consumes results until the channel closes. After an error or a
// first-match finalization it keeps draining so workers never block on
// send.
func (a *aggregator) run(results <-chan shardResult) {
	for r := range results {
		a.consume(r)
	}
}

func (a *aggregator) consume(r shardResult) {
	a.bytesScanned += r.size
	a.linesScanned += r.lines

	if r.err != nil && a.err == nil {
		a.err = r.err
		a.cancel()
	}

	if a.err != nil || a.finalized {
		return
	}

	a.pending[r.seq] = r

	for {
		next, ok := a.pending[a.next]
		if !ok {
			return
		}

		delete(a.pending, a.next)
		a.next++
		a.release(next)

		if a.finalized {
			return
		}
	}
}

func (a *aggregator) release(r shardResult) {
	for _, m := range r.matches {
		a.matches = append(a.matches, Match{
			Offset: m.offset,
			Line:   a.lineBase + m.lineIdx + 1,
			Text:   m.text,
		})
	}

	a.lineBase += r.lines

	if a.first && len(r.matches) > 0 {
		// Every shard with a lower starting offset has already been
		// released, so no still-running worker can pre-empt this match.
		a.matches = a.matches[:1]
		a.finalized = true
		a.cancel()
	}
}
