package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// primer stages upcoming file regions into the OS page cache ahead of the
// scan and drops finished regions behind it. Everything here is best
// effort: failures are counted and logged, never fatal, and the scan
// proceeds at baseline I/O speed without them.
type primer struct {
	f     *File
	block int64
	log   *slog.Logger

	unsupportedOnce sync.Once
	windowsPrimed   atomic.Int64
	adviseErrs      atomic.Int64
}

func newPrimer(f *File, cfg Config) *primer {
	return &primer{f: f, block: cfg.BlockSize, log: cfg.Logger}
}

// prime asks the OS to stage [w.start, w.end) into cache, then reads the
// range in block-sized chunks to force staging even where the advisory is a
// no-op. The read data is discarded.
func (p *primer) prime(ctx context.Context, w window) {
	if err := fadvise(p.f.f.Fd(), w.start, w.len(), adviseWillneed); err != nil {
		p.soft("cache advise failed", err)
	}

	size := p.block
	if size > w.len() {
		size = w.len()
	}

	buf := make([]byte, size)

	for off := w.start; off < w.end; {
		if ctx.Err() != nil {
			return
		}

		n := int64(len(buf))
		if off+n > w.end {
			n = w.end - off
		}

		read, err := p.f.f.ReadAt(buf[:n], off)
		if err != nil && !errors.Is(err, io.EOF) {
			p.soft("prime read failed", err)

			return
		}

		if read == 0 {
			return
		}

		off += int64(read)
	}

	p.windowsPrimed.Add(1)
}

// drop advises the OS that [w.start, w.end) is no longer needed, making
// room for the windows still ahead.
func (p *primer) drop(w window) {
	if err := fadvise(p.f.f.Fd(), w.start, w.len(), adviseDontneed); err != nil {
		p.soft("cache drop failed", err)
	}
}

func (p *primer) soft(msg string, err error) {
	p.adviseErrs.Add(1)

	if errors.Is(err, errors.ErrUnsupported) {
		p.unsupportedOnce.Do(func() {
			p.log.Warn("cache advisory unsupported on this platform, scanning at baseline speed")
		})

		return
	}

	p.log.Warn(msg, "path", p.f.path, "err", err)
}
