package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/sqlview/internal/viewer"
	"github.com/leapstack-labs/sqlview/pkg/adapter"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <db> [SQL]",
		Short: "Run SQL against a database",
		Long: `Run SQL against an uploaded database or any database file.

<db> is the name of a database in the upload directory or a path to a file.
Files outside the upload directory are opened read-only.

SQL is taken from the arguments, the --input file or stdin. When none is
given and stdin is a terminal, an interactive REPL starts.`,
		Example: `  # Execute SQL directly
  sqlview query shop.db "SELECT * FROM customers"

  # List available tables
  sqlview query tables shop.db

  # Show schema for a table
  sqlview query schema shop.db customers

  # Output as CSV
  sqlview query ./data/local.sqlite "SELECT 1" --format csv

  # Interactive mode
  sqlview query shop.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	// Flags
	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", viewer.FormatTable, "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{viewer.FormatTable, viewer.FormatJSON, viewer.FormatCSV, viewer.FormatMarkdown}, cobra.ShellCompDirectiveNoFileComp
	})

	// Subcommands
	cmd.AddCommand(newQueryTablesCommand(opts))
	cmd.AddCommand(newQuerySchemaCommand(opts))

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	if err := validateFormat(opts.Format); err != nil {
		return err
	}

	cmdCtx := NewCommandContext(cmd)
	ctx := cmd.Context()

	// Determine SQL source
	var sqlQuery string
	interactive := false

	switch {
	case len(args) > 1:
		sqlQuery = strings.Join(args[1:], " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(cmd.InOrStdin()):
		// Read from stdin (piped input)
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		interactive = true
	}

	adp, name, err := cmdCtx.OpenDatabase(ctx, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = adp.Close() }()

	session := &replSession{
		adp:     adp,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		format:  opts.Format,
		maxRows: cmdCtx.Cfg.UI.MaxRows,
		timeout: cmdCtx.Cfg.UI.QueryTimeout,
	}

	if interactive {
		return runQueryREPL(ctx, session, name)
	}

	sqlQuery = strings.TrimSpace(sqlQuery)
	if sqlQuery == "" {
		return core.ErrEmptyQuery
	}
	return session.execute(ctx, sqlQuery)
}

// OpenDatabase opens ref as an uploaded database name or, failing that, as
// a file path. Files outside the upload directory are opened read-only.
func (c *CommandContext) OpenDatabase(ctx context.Context, ref string) (core.Adapter, string, error) {
	cat, err := c.OpenCatalog(ctx)
	if err != nil {
		return nil, "", err
	}

	if _, ok := cat.Get(ref); ok {
		adp, err := cat.Open(ctx, ref)
		return adp, ref, err
	}

	if _, err := os.Stat(ref); err != nil {
		return nil, "", fmt.Errorf("%w: %s is neither in %s nor a file", core.ErrDatabaseNotFound, ref, cat.Dir())
	}

	params := c.Cfg.EngineParams()
	engine, err := adapter.Detect(ctx, ref, params, c.Logger)
	if err != nil {
		return nil, "", err
	}

	adp, err := adapter.NewAdapter(engine, c.Logger)
	if err != nil {
		return nil, "", err
	}
	if err := adp.Open(ctx, adapter.Config{Path: ref, ReadOnly: true, Params: params[engine]}); err != nil {
		return nil, "", fmt.Errorf("failed to open %s database: %w", engine, err)
	}
	return adp, ref, nil
}

// newQueryTablesCommand creates the tables subcommand.
func newQueryTablesCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables <db>",
		Short: "List the tables of a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, args[0], opts, func(ctx context.Context, s *replSession) error {
				return s.listTables(ctx)
			})
		},
	}
}

// newQuerySchemaCommand creates the schema subcommand.
func newQuerySchemaCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <db> <table>",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, args[0], opts, func(ctx context.Context, s *replSession) error {
				return s.showSchema(ctx, args[1])
			})
		},
	}
}

func withSession(cmd *cobra.Command, ref string, opts *QueryOptions, fn func(context.Context, *replSession) error) error {
	if err := validateFormat(opts.Format); err != nil {
		return err
	}

	cmdCtx := NewCommandContext(cmd)
	ctx := cmd.Context()

	adp, _, err := cmdCtx.OpenDatabase(ctx, ref)
	if err != nil {
		return err
	}
	defer func() { _ = adp.Close() }()

	return fn(ctx, &replSession{
		adp:     adp,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		format:  opts.Format,
		maxRows: cmdCtx.Cfg.UI.MaxRows,
		timeout: cmdCtx.Cfg.UI.QueryTimeout,
	})
}

func validateFormat(format string) error {
	if format == viewer.FormatTable {
		return nil
	}
	_, err := viewer.LookupExportFormat(format)
	return err
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// defaultTimeout applies when no query timeout is configured.
const defaultTimeout = 30 * time.Second
