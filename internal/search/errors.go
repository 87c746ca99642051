package search

import (
	"errors"
	"fmt"
)

var (
	ErrPatternEmpty      = errors.New("pattern cannot be empty")
	ErrPatternTerminator = errors.New("pattern cannot contain a line terminator")
	ErrBlockSize         = errors.New("block size must be positive")
	ErrCacheSize         = errors.New("cache size must be positive")
	ErrShardSize         = errors.New("shard size must be positive")
	ErrShardExceedsCache = errors.New("shard size cannot exceed cache size")
	ErrWorkerCount       = errors.New("worker count must be positive")
)

// MapError reports a failed attempt to establish a memory mapping.
// Mapping failures are fatal for the run.
type MapError struct {
	Start int64
	End   int64
	Err   error
}

func (e *MapError) Error() string {
	return fmt.Sprintf("map [%d, %d): %v", e.Start, e.End, e.Err)
}

func (e *MapError) Unwrap() error { return e.Err }

// WorkerFailure reports a worker that could not complete a shard. The run
// aborts and partial results are discarded, since ordering and completeness
// cannot be guaranteed once a shard is abandoned.
type WorkerFailure struct {
	Shard uint64
	Err   error
}

func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("worker failed on shard %d: %v", e.Shard, e.Err)
}

func (e *WorkerFailure) Unwrap() error { return e.Err }
