package search

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAggregatorReordersShards(t *testing.T) {
	t.Parallel()

	agg := newAggregator(false, func() {})

	// Shards arrive 2, 0, 1. Matches must come out in file order with
	// absolute line numbers computed from the running totals.
	agg.consume(shardResult{seq: 2, lines: 1, matches: []shardMatch{{lineIdx: 0, offset: 20, text: []byte("c")}}})
	agg.consume(shardResult{seq: 0, lines: 3, matches: []shardMatch{{lineIdx: 1, offset: 2, text: []byte("a")}}})
	agg.consume(shardResult{seq: 1, lines: 2, matches: nil})

	want := []Match{
		{Offset: 2, Line: 2, Text: []byte("a")},
		{Offset: 20, Line: 6, Text: []byte("c")},
	}

	if diff := cmp.Diff(want, agg.matches); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregatorHoldsBackHigherShards(t *testing.T) {
	t.Parallel()

	agg := newAggregator(false, func() {})

	agg.consume(shardResult{seq: 1, lines: 1, matches: []shardMatch{{offset: 10, text: []byte("b")}}})

	if got, want := len(agg.matches), 0; got != want {
		t.Fatalf("released %d matches before shard 0 completed, want %d", got, want)
	}

	agg.consume(shardResult{seq: 0, lines: 1})

	if got, want := len(agg.matches), 1; got != want {
		t.Fatalf("matches=%d after shard 0 completed, want=%d", got, want)
	}
}

func TestAggregatorFirstMatchGate(t *testing.T) {
	t.Parallel()

	cancelled := false
	agg := newAggregator(true, func() { cancelled = true })

	// A later shard reports a match first. It must not be finalized while
	// shard 0 is still in flight, because shard 0 may hold an earlier match.
	agg.consume(shardResult{seq: 1, lines: 1, matches: []shardMatch{{lineIdx: 0, offset: 50, text: []byte("late")}}})

	if agg.finalized || cancelled {
		t.Fatal("finalized before all lower-offset shards completed")
	}

	agg.consume(shardResult{seq: 0, lines: 4, matches: []shardMatch{{lineIdx: 2, offset: 7, text: []byte("early")}}})

	if !agg.finalized || !cancelled {
		t.Fatal("not finalized once the lowest pending shard completed")
	}

	want := []Match{{Offset: 7, Line: 3, Text: []byte("early")}}
	if diff := cmp.Diff(want, agg.matches); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregatorFirstMatchFallsToLaterShard(t *testing.T) {
	t.Parallel()

	agg := newAggregator(true, func() {})

	agg.consume(shardResult{seq: 1, lines: 1, matches: []shardMatch{{lineIdx: 0, offset: 50, text: []byte("late")}}})
	agg.consume(shardResult{seq: 0, lines: 4}) // completes with no match

	if !agg.finalized {
		t.Fatal("candidate not finalized after all lower shards completed without a match")
	}

	if got, want := agg.matches[0].Offset, int64(50); got != want {
		t.Errorf("offset=%d, want=%d", got, want)
	}

	if got, want := agg.matches[0].Line, int64(5); got != want {
		t.Errorf("line=%d, want=%d", got, want)
	}
}

func TestAggregatorWorkerFailureAborts(t *testing.T) {
	t.Parallel()

	cancelled := false
	agg := newAggregator(false, func() { cancelled = true })

	failure := &WorkerFailure{Shard: 1, Err: errors.New("boom")}

	agg.consume(shardResult{seq: 0, lines: 1, matches: []shardMatch{{offset: 0, text: []byte("a")}}})
	agg.consume(shardResult{seq: 1, err: failure})
	agg.consume(shardResult{seq: 2, lines: 1, matches: []shardMatch{{offset: 9, text: []byte("b")}}})

	if !cancelled {
		t.Error("worker failure did not cancel the run")
	}

	if !errors.Is(agg.err, failure) {
		t.Errorf("err=%v, want=%v", agg.err, failure)
	}
}

func TestAggregatorIgnoresResultsAfterFinalization(t *testing.T) {
	t.Parallel()

	agg := newAggregator(true, func() {})

	agg.consume(shardResult{seq: 0, lines: 1, matches: []shardMatch{{offset: 0, text: []byte("a")}}})
	agg.consume(shardResult{seq: 1, lines: 1, matches: []shardMatch{{offset: 2, text: []byte("b")}}})

	if got, want := len(agg.matches), 1; got != want {
		t.Errorf("matches=%d, want=%d (late results must be discarded)", got, want)
	}
}
