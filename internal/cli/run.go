package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
)

var errFlagRequiresArg = errors.New("flag requires an argument")

// Run is the main entry point. Returns exit code: 0 match found, 1 no
// match, 2 error.
func Run(_ io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sig <-chan os.Signal) int {
	o := NewIO(out, errOut)

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		o.ErrPrintln("error:", err)

		return exitError
	}

	cfg, err := LoadConfig(flags.configPath, env)
	if err != nil {
		o.ErrPrintln("error:", err)

		return exitError
	}

	if len(flags.remaining) == 0 {
		printUsage(NewIO(errOut, errOut))

		return exitError
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sig != nil {
		go func() {
			select {
			case <-sig:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	cmd := flags.remaining[0]

	switch cmd {
	case "-h", "--help", "help":
		printUsage(o)

		return exitFound
	case "search":
		return newSearchCommand(cfg).Run(ctx, o, flags.remaining[1:])
	case "repl":
		return newReplCommand(cfg, env).Run(ctx, o, flags.remaining[1:])
	case "print-config":
		cmdPrintConfig(o, cfg)

		return exitFound
	default:
		// Anything else is a pattern; search is the default command.
		return newSearchCommand(cfg).Run(ctx, o, flags.remaining)
	}
}

type globalFlags struct {
	configPath string
	remaining  []string
}

// parseGlobalFlags consumes leading global flags. Everything from the first
// non-flag argument on belongs to the command. Note --config has no
// shorthand: -c is the cache window size, per the search surface.
func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		arg := args[idx]

		if arg == "--config" {
			if idx+1 >= len(args) {
				return globalFlags{}, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
			}

			flags.configPath = args[idx+1]
			idx += 2

			continue
		}

		if after, ok := strings.CutPrefix(arg, "--config="); ok {
			flags.configPath = after
			idx++

			continue
		}

		flags.remaining = args[idx:]

		break
	}

	return flags, nil
}

func cmdPrintConfig(o *IO, cfg Config) {
	o.Println("block:", humanize.IBytes(uint64(cfg.BlockSize)))
	o.Println("cache:", humanize.IBytes(uint64(cfg.CacheSize)))
	o.Println("shard:", humanize.IBytes(uint64(cfg.ShardSize)))

	if cfg.Workers > 0 {
		o.Println("workers:", cfg.Workers)
	} else {
		o.Println("workers: (all CPUs)")
	}

	o.Println()

	if cfg.Source != "" {
		o.Println("# loaded from:", cfg.Source)
	} else {
		o.Println("# built-in defaults (no config file)")
	}
}

func printUsage(o *IO) {
	o.Println(`hotgrep - page-cache-aware search in one large file

Usage: hotgrep [--config <path>] <pattern> <file> [flags]
       hotgrep [--config <path>] <command> [args]

Flags for a search:
  -e, --exact      match a full line exactly
  -f, --first      stop at the earliest match
  -p, --position   print byte offsets instead of line numbers
  -v, --verbose    print cache and throughput statistics to stderr
  -b, --block      priming read block size     (default 8MiB)
  -c, --cache      cache window size           (default 2GiB)
  -s, --shard      worker shard size           (default 384KiB)
  -j, --workers    scanning workers            (default: all CPUs)
  -o, --output     write matches to a file atomically

Commands:`)
	o.Println(newSearchCommand(DefaultConfig()).HelpLine())
	o.Println(newReplCommand(DefaultConfig(), nil).HelpLine())
	o.Println(`  print-config                 Show resolved configuration

Exit codes: 0 match found, 1 no match, 2 error.`)
}
