package search

import (
	"bytes"
	"context"
	"fmt"
	"sync"
)

// shardMatch is a match located within one shard, before the aggregator has
// assigned absolute line numbers.
type shardMatch struct {
	lineIdx int64  // 0-based line index within the shard
	offset  int64  // byte offset of the line's first byte in the file
	text    []byte // line content, terminator stripped, copied off the mapping
}

// shardResult is one worker's report for one shard. Results may reach the
// aggregator out of order.
type shardResult struct {
	seq     uint64
	size    int64
	lines   int64 // lines started in the shard, terminated or not
	matches []shardMatch
	err     error
}

// workUnit pairs a shard with its window's drain group, so the controller
// can wait for a window's shards to finish before unmapping it.
type workUnit struct {
	shard shard
	wg    *sync.WaitGroup
}

// worker scans shards until the queue closes. Cancellation is cooperative
// and checked only between shards: a shard already being scanned always
// completes, so its result is well formed, while shards still queued after
// cancellation are drained unscanned to release their window.
func worker(ctx context.Context, units <-chan workUnit, results chan<- shardResult, cfg *Config) {
	for u := range units {
		if ctx.Err() != nil {
			u.wg.Done()

			continue
		}

		res := scanShard(u.shard, cfg)
		u.wg.Done()

		// Never blocks indefinitely: the aggregator drains results until
		// the whole pool has exited.
		results <- res
	}
}

// scanShard scans one shard line by line. A panic inside the scan loop is
// surfaced as a WorkerFailure rather than crashing the process, so the
// controller can abort the run and discard partial results.
func scanShard(sh shard, cfg *Config) (res shardResult) {
	res.seq = sh.seq
	res.size = int64(len(sh.data))

	defer func() {
		if r := recover(); r != nil {
			res.err = &WorkerFailure{Shard: sh.seq, Err: fmt.Errorf("%v", r)}
		}
	}()

	data := sh.data

	var lineStart int64

	for lineStart < int64(len(data)) {
		var line []byte

		next := int64(len(data))

		if i := bytes.IndexByte(data[lineStart:], terminator); i >= 0 {
			line = data[lineStart : lineStart+int64(i)]
			next = lineStart + int64(i) + 1
		} else {
			line = data[lineStart:]
		}

		if matchLine(line, cfg) {
			res.matches = append(res.matches, shardMatch{
				lineIdx: res.lines,
				offset:  sh.start + lineStart,
				text:    append([]byte(nil), line...),
			})

			if cfg.First {
				// Later matches in this shard cannot have a lower offset,
				// and the run ends once this shard is released in order,
				// so the rest of the shard need not be scanned.
				res.lines++

				return res
			}
		}

		res.lines++
		lineStart = next
	}

	return res
}

func matchLine(line []byte, cfg *Config) bool {
	if len(line) == 0 {
		return false
	}

	if cfg.Exact {
		return bytes.Equal(line, cfg.Pattern)
	}

	return bytes.Contains(line, cfg.Pattern)
}
