package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"hotgrep/internal/search"
)

const searchHelp = `<pattern> <file> [flags]`

// tuningFlags are the engine knobs shared by the search and repl commands.
// Values resolve as: built-in default < config file < flag.
type tuningFlags struct {
	block   *string
	cache   *string
	shard   *string
	workers *int
}

func addTuningFlags(flags *flag.FlagSet) tuningFlags {
	return tuningFlags{
		block:   flags.StringP("block", "b", "", "priming read block size (default 8MiB)"),
		cache:   flags.StringP("cache", "c", "", "cache window size (default 2GiB)"),
		shard:   flags.StringP("shard", "s", "", "worker shard size (default 384KiB)"),
		workers: flags.IntP("workers", "j", 0, "scanning workers (default: all CPUs)"),
	}
}

func (tf tuningFlags) apply(cfg Config, scfg *search.Config) error {
	scfg.BlockSize = cfg.BlockSize
	scfg.CacheSize = cfg.CacheSize
	scfg.ShardSize = cfg.ShardSize
	scfg.Workers = cfg.Workers

	for _, f := range []struct {
		raw string
		dst *int64
	}{
		{raw: *tf.block, dst: &scfg.BlockSize},
		{raw: *tf.cache, dst: &scfg.CacheSize},
		{raw: *tf.shard, dst: &scfg.ShardSize},
	} {
		if f.raw == "" {
			continue
		}

		v, err := parseSize(f.raw)
		if err != nil {
			return err
		}

		*f.dst = v
	}

	if *tf.workers != 0 {
		scfg.Workers = *tf.workers
	}

	return nil
}

func newSearchCommand(cfg Config) *Command {
	flags := flag.NewFlagSet("search", flag.ContinueOnError)

	exact := flags.BoolP("exact", "e", false, "match a full line exactly")
	first := flags.BoolP("first", "f", false, "stop at the earliest match")
	position := flags.BoolP("position", "p", false, "print byte offsets instead of line numbers")
	verbose := flags.BoolP("verbose", "v", false, "print cache and throughput statistics to stderr")
	output := flags.StringP("output", "o", "", "write matches to this file (atomically) instead of stdout")
	tuning := addTuningFlags(flags)

	return &Command{
		Flags: flags,
		Usage: "search " + searchHelp,
		Short: "Search a file for a literal pattern",
		Long: `Search one large file for literal pattern occurrences.

The file is staged into the OS page cache ahead of the scan, memory-mapped
window by window, and scanned by a pool of workers on line-aligned shards.
Output order always matches a sequential scan.

The search subcommand name is optional: "hotgrep <pattern> <file>" works,
and the explicit form covers patterns that collide with a command name.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <pattern> <file>, got %d arguments", len(args))
			}

			scfg := search.Config{
				Pattern: []byte(args[0]),
				Exact:   *exact,
				First:   *first,
			}

			if err := tuning.apply(cfg, &scfg); err != nil {
				return err
			}

			if *verbose {
				scfg.Logger = slog.New(slog.NewTextHandler(o.errOut, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				}))
			}

			f, err := search.Open(args[1])
			if err != nil {
				return err
			}

			defer func() { _ = f.Close() }()

			res, err := search.Run(ctx, f, scfg)
			if err != nil {
				return err
			}

			if err := emitMatches(o, res, *position, *output); err != nil {
				return err
			}

			if *verbose {
				printStats(o, f, res)
			}

			if res.Status != search.StatusFound {
				return errNoMatch
			}

			return nil
		},
	}
}

// emitMatches prints one line per match, "<line>: <text>" or, under
// --position, "<offset>: <text>". With --output the same lines are written
// to a file in one atomic rename instead.
func emitMatches(o *IO, res *search.Result, position bool, output string) error {
	if output == "" {
		for _, m := range res.Matches {
			o.Printf("%d: %s\n", matchKey(m, position), m.Text)
		}

		return nil
	}

	var buf strings.Builder

	for _, m := range res.Matches {
		fmt.Fprintf(&buf, "%d: %s\n", matchKey(m, position), m.Text)
	}

	if err := atomic.WriteFile(output, strings.NewReader(buf.String())); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	return nil
}

func matchKey(m search.Match, position bool) int64 {
	if position {
		return m.Offset
	}

	return m.Line
}

func printStats(o *IO, f *search.File, res *search.Result) {
	s := res.Stats

	elapsed := s.Elapsed
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}

	perSec := float64(s.BytesScanned) / elapsed.Seconds()

	o.ErrPrintf("scanned %s of %s in %s (%s/s)\n",
		humanize.IBytes(uint64(s.BytesScanned)),
		humanize.IBytes(uint64(f.Size())),
		elapsed.Round(time.Millisecond),
		humanize.IBytes(uint64(perSec)))
	o.ErrPrintf("lines %d, matches %d, windows primed %d\n",
		s.LinesScanned, len(res.Matches), s.WindowsPrimed)

	if s.Resident >= 0 {
		o.ErrPrintf("first window %.1f%% cached at map time\n", s.Resident*100)
	}

	if s.AdviseErrors > 0 {
		o.ErrPrintf("cache advisories failed: %d (scan ran at baseline I/O speed)\n", s.AdviseErrors)
	}
}
