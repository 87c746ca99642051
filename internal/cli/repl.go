package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"hotgrep/internal/search"
)

// replHelp is printed by the in-REPL help command.
const replHelp = `Enter a pattern to search the file. Commands:

  :exact       toggle exact whole-line matching
  :first       toggle stop-at-first-match
  :position    toggle byte offsets instead of line numbers
  help         show this help
  exit         leave (also quit, q, Ctrl-D)`

// replSession holds the per-session state: the open file and the current
// match-mode toggles.
type replSession struct {
	file     *search.File
	cfg      search.Config
	position bool
}

func newReplCommand(cfg Config, env map[string]string) *Command {
	flags := flag.NewFlagSet("repl", flag.ContinueOnError)

	exact := flags.BoolP("exact", "e", false, "start in exact matching mode")
	first := flags.BoolP("first", "f", false, "start in first-match mode")
	position := flags.BoolP("position", "p", false, "start with byte offsets")
	tuning := addTuningFlags(flags)

	return &Command{
		Flags: flags,
		Usage: "repl [flags] <file>",
		Short: "Search one file interactively",
		Long: `Open a file once and search it repeatedly.

Windows stay in the page cache between searches (no drop-behind), so after
the first pattern has been scanned, subsequent searches run at memory
speed. This is the mode the cache priming is built for.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected <file>, got %d arguments", len(args))
			}

			scfg := search.Config{KeepCache: true, Exact: *exact, First: *first}
			if err := tuning.apply(cfg, &scfg); err != nil {
				return err
			}

			f, err := search.Open(args[0])
			if err != nil {
				return err
			}

			defer func() { _ = f.Close() }()

			sess := &replSession{file: f, cfg: scfg, position: *position}

			return sess.loop(ctx, o, env)
		},
	}
}

func (s *replSession) loop(ctx context.Context, o *IO, env map[string]string) error {
	rl := liner.NewLiner()
	defer func() { _ = rl.Close() }()

	rl.SetCtrlCAborts(true)
	rl.SetCompleter(func(line string) []string {
		var out []string

		for _, cmd := range []string{":exact", ":first", ":position", "help", "exit", "quit"} {
			if strings.HasPrefix(cmd, line) {
				out = append(out, cmd)
			}
		}

		return out
	})

	historyPath := ""
	if dir := configDir(env); dir != "" {
		historyPath = filepath.Join(dir, "history")

		if f, err := os.Open(historyPath); err == nil {
			_, _ = rl.ReadHistory(f)
			_ = f.Close()
		}
	}

	defer func() {
		if historyPath == "" {
			return
		}

		if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
			return
		}

		if f, err := os.Create(historyPath); err == nil {
			_, _ = rl.WriteHistory(f)
			_ = f.Close()
		}
	}()

	o.Printf("%s (%d bytes). Type a pattern, or help.\n", s.file.Path(), s.file.Size())

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := rl.Prompt("hotgrep> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rl.AppendHistory(line)

		if s.command(o, line) {
			continue
		}

		if line == "exit" || line == "quit" || line == "q" {
			return nil
		}

		s.search(ctx, o, line)
	}
}

// command handles in-REPL commands. Returns false if line is a pattern.
func (s *replSession) command(o *IO, line string) bool {
	switch line {
	case "help":
		o.Println(replHelp)
	case ":exact":
		s.cfg.Exact = !s.cfg.Exact
		o.Println("exact matching:", onOff(s.cfg.Exact))
	case ":first":
		s.cfg.First = !s.cfg.First
		o.Println("first-match mode:", onOff(s.cfg.First))
	case ":position":
		s.position = !s.position
		o.Println("byte offsets:", onOff(s.position))
	default:
		return false
	}

	return true
}

func (s *replSession) search(ctx context.Context, o *IO, pattern string) {
	cfg := s.cfg
	cfg.Pattern = []byte(pattern)

	res, err := search.Run(ctx, s.file, cfg)
	if err != nil {
		o.ErrPrintln("error:", err)

		return
	}

	for _, m := range res.Matches {
		o.Printf("%d: %s\n", matchKey(m, s.position), m.Text)
	}

	o.Printf("%s (%d lines in %s)\n",
		res.Status, res.Stats.LinesScanned, res.Stats.Elapsed.Round(time.Millisecond))
}

func onOff(b bool) string {
	if b {
		return "on"
	}

	return "off"
}
