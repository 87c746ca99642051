package search

import (
	"bytes"
	"log/slog"
	"runtime"
)

// Default sizes. Block and cache match the upstream defaults; the shard size
// is a tidy rounding of the empirically tuned 393 728.
const (
	DefaultBlockSize = 8 << 20   // 8 MiB per priming read
	DefaultCacheSize = 2 << 30   // 2 GiB per cache window
	DefaultShardSize = 384 << 10 // 384 KiB per worker shard
)

// terminator is the line terminator. Matching is line-oriented; the
// terminator is never part of a line's content.
const terminator = '\n'

// Config holds the parameters for one search run. The zero value of any
// size or count field selects its default. A Config is immutable once a run
// starts.
type Config struct {
	// Pattern is the literal byte sequence to search for.
	Pattern []byte

	// Exact requires a whole line (terminator stripped) to equal Pattern.
	// Otherwise Pattern matches anywhere within a line.
	Exact bool

	// First stops the scan at the earliest-offset match.
	First bool

	// Workers is the number of scanning goroutines.
	// Defaults to runtime.NumCPU().
	Workers int

	// BlockSize is the read size used when priming a window into cache.
	BlockSize int64

	// CacheSize is the cache window size. The file is processed in windows
	// of this many bytes; at most two windows are staged at a time.
	CacheSize int64

	// ShardSize is the target shard size handed to one worker. Shards are
	// extended to the next line terminator, so actual shards run slightly
	// longer.
	ShardSize int64

	// KeepCache skips the drop-behind advisory on finished windows, leaving
	// the whole file hot. Used by interactive mode, where the same file is
	// searched repeatedly.
	KeepCache bool

	// Logger receives engine diagnostics. Nil discards them.
	Logger *slog.Logger
}

// withDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}

	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}

	if c.CacheSize == 0 {
		c.CacheSize = DefaultCacheSize
	}

	if c.ShardSize == 0 {
		c.ShardSize = DefaultShardSize
	}

	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	return c
}

// validate checks a defaulted Config. Pattern errors are reported before
// any scanning starts.
func (c Config) validate() error {
	if len(c.Pattern) == 0 {
		return ErrPatternEmpty
	}

	if bytes.IndexByte(c.Pattern, terminator) >= 0 {
		return ErrPatternTerminator
	}

	if c.BlockSize <= 0 {
		return ErrBlockSize
	}

	if c.CacheSize <= 0 {
		return ErrCacheSize
	}

	if c.ShardSize <= 0 {
		return ErrShardSize
	}

	if c.ShardSize > c.CacheSize {
		return ErrShardExceedsCache
	}

	if c.Workers <= 0 {
		return ErrWorkerCount
	}

	return nil
}
