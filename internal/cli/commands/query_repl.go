package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

const (
	replPrompt     = "sqlview> "
	replContPrompt = "    ...> "
)

func runQueryREPL(ctx context.Context, s *replSession, name string) error {
	// Get table names for completion
	completer := newTableCompleter(ctx, s)

	// Configure readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// Print welcome message
	_, _ = fmt.Fprintf(s.out, "sqlview query REPL (database: %s)\n", name)
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(s.out)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		quit, pending := s.handleLine(ctx, &buf, line)
		if quit {
			break
		}
		if pending {
			rl.SetPrompt(replContPrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}

	return nil
}

// historyFile returns the REPL history path under the user cache directory,
// or "" for no history.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "sqlview")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return ""
	}
	return filepath.Join(dir, "query_history")
}

// handleLine processes one line of REPL input. Statements accumulate in buf
// until a line ends with a semicolon. It reports whether the REPL should
// exit and whether a statement is still pending.
func (s *replSession) handleLine(ctx context.Context, buf *strings.Builder, line string) (quit, pending bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, buf.Len() > 0
	}

	// Handle dot-commands
	if buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.handleDotCommand(ctx, line), false
	}

	// Accumulate multi-line SQL until semicolon
	buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		buf.WriteString(" ")
		return false, true
	}

	query := strings.TrimSuffix(buf.String(), ";")
	buf.Reset()

	if err := s.execute(ctx, query); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	_, _ = fmt.Fprintln(s.out)
	return false, false
}

// handleDotCommand runs a REPL command and reports whether to exit.
func (s *replSession) handleDotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".tables":
		if err := s.listTables(ctx); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .schema <table>")
			return false
		}
		if err := s.showSchema(ctx, parts[1]); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".format":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(s.out, "Current format: %s\n", s.format)
			return false
		}
		if err := validateFormat(parts[1]); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		s.format = parts[1]

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .tables          List all tables
  .schema <table>  Show the columns of a table
  .format [name]   Show or set the output format (table, json, csv, md)
  .quit / .exit    Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// newTableCompleter creates a readline completer for table names.
func newTableCompleter(ctx context.Context, s *replSession) *readline.PrefixCompleter {
	// Ignore errors as this is for autocomplete, not critical
	tables, _ := s.adp.ListTables(ctx)

	items := make([]readline.PrefixCompleterInterface, 0, len(tables)+6)
	for _, name := range tables {
		items = append(items, readline.PcItem(name))
	}

	// Add dot-commands
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".format"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
