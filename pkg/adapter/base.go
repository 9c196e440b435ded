package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/sqlview/pkg/core"
)

// BaseSQLAdapter provides common database/sql functionality for engines.
// Embed this struct in concrete engine implementations to get standard
// Close, Exec, Query and Preview implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection", "path", b.Cfg.Path)
		}
		err := b.DB.Close()
		b.DB = nil
		return err
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return core.ErrNotConnected
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement and collects at most maxRows rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string, maxRows int) (*core.ResultSet, error) {
	if b.DB == nil {
		return nil, core.ErrNotConnected
	}

	start := time.Now()
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result, err := CollectRows(rows, maxRows)
	if err != nil {
		return nil, err
	}
	result.QueryMS = time.Since(start).Milliseconds()
	return result, nil
}

// Preview runs SELECT * against a table with a row limit.
func (b *BaseSQLAdapter) Preview(ctx context.Context, table string, limit int) (*core.ResultSet, error) {
	query := "SELECT * FROM " + QuoteIdent(table)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return b.Query(ctx, query, 0)
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// CollectRows reads rows into a ResultSet, stringifying every value.
// When maxRows > 0 at most maxRows rows are kept and Truncated reports
// whether more were available.
func CollectRows(rows *sql.Rows, maxRows int) (*core.ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := &core.ResultSet{
		Columns: cols,
		Rows:    [][]string{},
	}

	for rows.Next() {
		if maxRows > 0 && len(result.Rows) == maxRows {
			result.Truncated = true
			break
		}

		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]string, len(cols))
		for i, val := range values {
			row[i] = FormatValue(val)
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// FormatValue converts a scanned value into display text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// QuoteIdent quotes an identifier with double quotes, escaping embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
