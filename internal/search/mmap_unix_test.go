//go:build unix

package search

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T, data []byte) *File {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = f.Close() })

	return f
}

func TestMapRangeRoundTrip(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("0123456789"), 2000) // spans several pages
	f := openTemp(t, data)

	for _, tt := range []struct{ start, end int64 }{
		{start: 0, end: int64(len(data))},
		{start: 0, end: 10},
		{start: 9999, end: 10050}, // unaligned start past a page boundary
		{start: int64(len(data)) - 1, end: int64(len(data))},
	} {
		region, err := f.mapRange(tt.start, tt.end)
		if err != nil {
			t.Fatalf("mapRange(%d, %d): %v", tt.start, tt.end, err)
		}

		if got, want := region.Bytes(), data[tt.start:tt.end]; !bytes.Equal(got, want) {
			t.Errorf("mapRange(%d, %d) content mismatch", tt.start, tt.end)
		}

		if err := region.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}
}

func TestMapRangeErrors(t *testing.T) {
	t.Parallel()

	f := openTemp(t, []byte("0123456789"))

	for _, tt := range []struct {
		name       string
		start, end int64
	}{
		{name: "empty range", start: 5, end: 5},
		{name: "inverted range", start: 6, end: 2},
		{name: "past EOF", start: 0, end: 11},
		{name: "negative start", start: -1, end: 4},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.mapRange(tt.start, tt.end)

			var mapErr *MapError
			if !errors.As(err, &mapErr) {
				t.Fatalf("err=%v, want *MapError", err)
			}
		})
	}
}

func TestMapRangeCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	f := openTemp(t, []byte("abc"))

	region, err := f.mapRange(0, 3)
	if err != nil {
		t.Fatal(err)
	}

	if err := region.Close(); err != nil {
		t.Fatal(err)
	}

	if err := region.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestResidentReportsFraction(t *testing.T) {
	t.Parallel()

	f := openTemp(t, bytes.Repeat([]byte("x"), 64*1024))

	region, err := f.mapRange(0, f.Size())
	if err != nil {
		t.Fatal(err)
	}

	defer func() { _ = region.Close() }()

	// Touch the mapping so at least some pages are resident.
	var sum byte
	for _, b := range region.Bytes() {
		sum += b
	}

	_ = sum

	frac, err := region.resident()
	if err != nil {
		t.Skipf("mincore unavailable: %v", err)
	}

	if frac < 0 || frac > 1 {
		t.Errorf("resident=%f, want within [0, 1]", frac)
	}
}
