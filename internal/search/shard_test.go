package search

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// splitAll runs the sharder over data as the controller would: one split per
// cache window, final flag on the last.
func splitAll(data []byte, cacheSize, shardSize int64) []shard {
	s := newSharder(shardSize)
	wins := windows(int64(len(data)), cacheSize)

	var out []shard

	for k, w := range wins {
		out = append(out, s.split(data[w.start:w.end], w.start, k == len(wins)-1)...)
	}

	return out
}

// requireTiling asserts the core sharding invariants: shards reconstruct the
// input exactly, sequence numbers are file-ordered, and no boundary falls
// inside a line.
func requireTiling(t *testing.T, data []byte, shards []shard) {
	t.Helper()

	var (
		rebuilt []byte
		pos     int64
	)

	for i, sh := range shards {
		require.Equal(t, uint64(i), sh.seq, "sequence numbers must be dense and file-ordered")
		require.Equal(t, pos, sh.start, "shard %d start", i)
		require.NotEmpty(t, sh.data, "shard %d is empty", i)

		if i < len(shards)-1 {
			require.Equal(t, byte(terminator), sh.data[len(sh.data)-1],
				"shard %d does not end on a line terminator", i)
		}

		rebuilt = append(rebuilt, sh.data...)
		pos += int64(len(sh.data))
	}

	require.True(t, bytes.Equal(data, rebuilt), "shards must reconstruct the input byte for byte")
}

func TestSplitTilesInput(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		data string
	}{
		{name: "terminated lines", data: "abc\nxyz\nabc\n"},
		{name: "no trailing terminator", data: "abc\nxyz\nabc"},
		{name: "single line", data: "hello world\n"},
		{name: "single unterminated line", data: "hello world"},
		{name: "empty lines", data: "\n\n\na\n\n"},
		{name: "line longer than shard", data: "0123456789012345678901234567890\nx\n"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for _, cacheSize := range []int64{4, 7, 16, 1 << 20} {
				for _, shardSize := range []int64{1, 3, 4, 1 << 20} {
					if shardSize > cacheSize {
						continue
					}

					shards := splitAll([]byte(tt.data), cacheSize, shardSize)
					requireTiling(t, []byte(tt.data), shards)
				}
			}
		})
	}
}

func TestSplitSingleGiantLine(t *testing.T) {
	t.Parallel()

	// One line spanning many windows: the carry grows across every window
	// and the whole file becomes a single terminator-less shard.
	data := bytes.Repeat([]byte{'x'}, 1000)

	shards := splitAll(data, 64, 16)

	require.Len(t, shards, 1)
	require.Equal(t, int64(0), shards[0].start)
	require.True(t, bytes.Equal(data, shards[0].data))
}

func TestSplitCarryAcrossWindowSeam(t *testing.T) {
	t.Parallel()

	// A line straddling the window boundary must come out whole.
	data := []byte("aaaa\nbbbbbbbb\ncc\n")
	wantLines := bytes.SplitAfter(data, []byte{terminator})

	for cacheSize := int64(2); cacheSize <= int64(len(data)); cacheSize++ {
		shards := splitAll(data, cacheSize, cacheSize)
		requireTiling(t, data, shards)

		for _, sh := range shards {
			for _, line := range bytes.SplitAfter(sh.data, []byte{terminator}) {
				if len(line) == 0 {
					continue
				}

				require.Contains(t, wantLines, line,
					"cache=%d produced a fragment of a line", cacheSize)
			}
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	t.Parallel()

	data := randomLines(rand.New(rand.NewSource(1)), 64*1024)

	a := splitAll(data, 4096, 512)
	b := splitAll(data, 4096, 512)

	require.Equal(t, len(a), len(b))

	for i := range a {
		require.Equal(t, a[i].start, b[i].start)
		require.True(t, bytes.Equal(a[i].data, b[i].data), "shard %d differs between runs", i)
	}
}

func TestSplitRandomized(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))

	for i := range 50 {
		data := randomLines(rng, 1+rng.Intn(8*1024))
		cacheSize := int64(1 + rng.Intn(1024))
		shardSize := 1 + rng.Int63n(cacheSize)

		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			shards := splitAll(data, cacheSize, shardSize)
			requireTiling(t, data, shards)
		})
	}
}

// randomLines produces n bytes of newline-separated junk with occasional
// empty and very long lines.
func randomLines(rng *rand.Rand, n int) []byte {
	const alphabet = "abcdefghij "

	buf := make([]byte, 0, n)

	for len(buf) < n {
		lineLen := rng.Intn(30)
		if rng.Intn(20) == 0 {
			lineLen = rng.Intn(500)
		}

		for range lineLen {
			buf = append(buf, alphabet[rng.Intn(len(alphabet))])
		}

		buf = append(buf, terminator)
	}

	if rng.Intn(2) == 0 && len(buf) > 0 {
		buf = buf[:len(buf)-1] // sometimes drop the trailing terminator
	}

	return buf
}
