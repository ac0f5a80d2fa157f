package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/dbfile"
	"github.com/leapstack-labs/asksql/internal/submit"
	"github.com/spf13/cobra"
)

const shellPrompt = "asksql> "

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Generate schemas from a line-by-line prompt",
		Long: `Start a simple prompt loop. Every line you enter is sent as a prompt and
the generated schema is printed below it.

Lines starting with a dot are commands; type .help to list them.`,
		Example: `  # Start the prompt loop
  asksql shell

  # Against another backend
  asksql shell --api-url http://localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd)
		},
	}

	return cmd
}

func runShell(cmd *cobra.Command) error {
	cmdCtx, cleanup := NewCommandContext(cmd)
	defer cleanup()

	historyFile := filepath.Join(filepath.Dir(cmdCtx.Cfg.StatePath), "prompt_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    shellCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sh := newShellSession(cmdCtx, cmd.OutOrStdout(), cmd.ErrOrStderr())

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "AskSQL shell (backend: %s)\n", cmdCtx.Client.BaseURL())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Describe a database, or type .help for commands and .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	ctx := cmd.Context()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if quit := sh.handle(ctx, line); quit {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func shellCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".history"),
		readline.PcItem(".download"),
		readline.PcItem(".theme",
			readline.PcItem("light"),
			readline.PcItem("dark"),
			readline.PcItem("toggle"),
		),
		readline.PcItem(".token"),
		readline.PcItem(".quit"),
	)
}

// shellSession dispatches shell input. It remembers the last successful
// generation so .download works without arguments.
type shellSession struct {
	cmdCtx *CommandContext
	wf     *submit.Workflow
	out    io.Writer
	errOut io.Writer
	last   *api.Generation
}

func newShellSession(cmdCtx *CommandContext, out, errOut io.Writer) *shellSession {
	return &shellSession{
		cmdCtx: cmdCtx,
		wf:     submit.New(cmdCtx.Client, cmdCtx.Logger, nil),
		out:    out,
		errOut: errOut,
	}
}

// handle processes one input line and reports whether the shell should exit.
func (s *shellSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ".") {
		return s.dotCommand(ctx, strings.Fields(line))
	}

	outcome := s.wf.Submit(ctx, line, s.cmdCtx.Identity.Token())
	if !outcome.OK() {
		_, _ = fmt.Fprintf(s.errOut, "Error: %s\n", outcome.Message())
		return false
	}
	s.last = outcome.Generation
	if err := printGeneration(s.out, s.cmdCtx.Client, outcome.Generation); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	_, _ = fmt.Fprintln(s.out)
	return false
}

func (s *shellSession) dotCommand(ctx context.Context, parts []string) bool {
	args := parts[1:]
	var err error

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		printShellHelp(s.out)
	case ".history":
		err = s.history(ctx)
	case ".download":
		err = s.download(ctx, args)
	case ".theme":
		arg := ""
		if len(args) > 0 {
			arg = args[0]
		}
		if err = applyTheme(ctx, s.cmdCtx.Theme, arg); err == nil {
			_, _ = fmt.Fprintf(s.out, "Theme: %s\n", s.cmdCtx.Theme.Current())
		}
	case ".token":
		_, _ = fmt.Fprintln(s.out, s.cmdCtx.Identity.Token())
	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help)\n", parts[0])
	}

	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	return false
}

func (s *shellSession) history(ctx context.Context) error {
	records, err := s.cmdCtx.Client.FetchLogs(ctx, s.cmdCtx.Identity.Token())
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}
	renderHistory(s.out, records, false, time.Now())
	return nil
}

func (s *shellSession) download(ctx context.Context, args []string) error {
	remote := ""
	if s.last != nil {
		remote = s.last.DBFilePath
	}
	dest := dbfile.DefaultFileName
	if len(args) > 0 {
		remote = args[0]
	}
	if len(args) > 1 {
		dest = args[1]
	}
	if remote == "" {
		return errors.New("nothing to download yet; generate a schema first")
	}

	n, err := dbfile.Download(ctx, s.cmdCtx.Client, remote, dest)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(s.out, "Saved %s to %s\n", humanize.Bytes(uint64(n)), dest)
	return nil
}

func printShellHelp(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Commands:")
	_, _ = fmt.Fprintln(w, "  .help                       Show this help")
	_, _ = fmt.Fprintln(w, "  .history                    Show prompts from this session")
	_, _ = fmt.Fprintln(w, "  .download [path] [dest]     Download the last (or given) database file")
	_, _ = fmt.Fprintln(w, "  .theme [light|dark|toggle]  Show or change the theme")
	_, _ = fmt.Fprintln(w, "  .token                      Print the session token")
	_, _ = fmt.Fprintln(w, "  .quit                       Exit")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Anything else is sent as a prompt.")
}
