package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/leapstack-labs/sqlview/internal/viewer"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// replSession runs statements against one open database and renders the
// results. It backs both one-shot queries and the REPL.
type replSession struct {
	adp     core.Adapter
	out     io.Writer
	errOut  io.Writer
	format  string
	maxRows int
	timeout time.Duration
}

// execute runs sqlQuery and renders its result.
func (s *replSession) execute(ctx context.Context, sqlQuery string) error {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rs, err := s.adp.Query(qctx, sqlQuery, s.maxRows)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrQueryFailed, err)
	}
	return viewer.WriteResult(s.out, rs, s.format)
}

// listTables renders the table names of the database.
func (s *replSession) listTables(ctx context.Context) error {
	tables, err := s.adp.ListTables(ctx)
	if err != nil {
		return err
	}

	rs := &core.ResultSet{Columns: []string{"table"}, Rows: make([][]string, 0, len(tables))}
	for _, t := range tables {
		rs.Rows = append(rs.Rows, []string{t})
	}
	return viewer.WriteResult(s.out, rs, s.format)
}

// showSchema renders the columns of table.
func (s *replSession) showSchema(ctx context.Context, table string) error {
	cols, err := s.adp.TableColumns(ctx, table)
	if err != nil {
		return err
	}

	rs := &core.ResultSet{
		Columns: []string{"column", "type", "nullable", "primary_key", "default"},
		Rows:    make([][]string, 0, len(cols)),
	}
	for _, c := range cols {
		rs.Rows = append(rs.Rows, []string{
			c.Name,
			c.Type,
			strconv.FormatBool(c.Nullable),
			strconv.FormatBool(c.PrimaryKey),
			c.Default,
		})
	}
	return viewer.WriteResult(s.out, rs, s.format)
}
