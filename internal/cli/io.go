package cli

import (
	"fmt"
	"io"
)

// IO handles command output. Warnings go to stderr immediately and never
// influence the exit code: a search that found its match exits 0 even when
// the cache advisory failed along the way.
type IO struct {
	out    io.Writer
	errOut io.Writer
}

// NewIO creates a new IO instance.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// ErrPrintf writes formatted output to stderr.
func (o *IO) ErrPrintf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.errOut, format, a...)
}

// Warnf reports a soft failure on the diagnostic channel.
func (o *IO) Warnf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.errOut, "warning: "+format+"\n", a...)
}
