package search

import (
	"fmt"
	"os"
)

// File is an opened, read-only view of the file to search. The length is
// fixed at open time; concurrent modification of the file during a run is
// undefined behavior, as with any mmap-based reader.
type File struct {
	f    *os.File
	path string
	size int64
}

// Open opens path read-only and records its length.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		_ = f.Close()

		return nil, fmt.Errorf("open %s: is a directory", path)
	}

	return &File{f: f, path: path, size: info.Size()}, nil
}

// Path returns the path the file was opened with.
func (f *File) Path() string { return f.path }

// Size returns the byte length recorded at open time.
func (f *File) Size() int64 { return f.size }

// Close releases the underlying descriptor. The File must not be used
// afterwards; any live mappings must be closed first.
func (f *File) Close() error {
	if f.f == nil {
		return nil
	}

	err := f.f.Close()
	f.f = nil

	return err
}
