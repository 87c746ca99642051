// Package search implements a page-cache-aware parallel scan of one large
// file for literal pattern occurrences.
//
// The engine tiles the file into cache windows, advises the OS to stage the
// next window while the current one is scanned, memory-maps each window
// read-only, splits it into line-aligned shards, and fans the shards out to
// a fixed worker pool. A reorder buffer keyed by shard sequence number
// restores file order, so the result is always identical to what a
// sequential scan would produce, regardless of scheduling.
//
// Matching is literal only: substring containment per line, or whole-line
// equality in exact mode. Regular expressions are out of scope.
package search
