package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/leapstack-labs/sqlview/pkg/adapter"
	"github.com/leapstack-labs/sqlview/pkg/core"

	_ "modernc.org/sqlite" // sqlite driver
)

// EngineName is the registry name of the SQLite engine.
const EngineName = "sqlite"

// Adapter implements core.Adapter for SQLite database files.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Engine returns the engine name.
func (a *Adapter) Engine() string {
	return EngineName
}

// Open opens an existing SQLite file. Missing files are never created.
func (a *Adapter) Open(ctx context.Context, cfg core.AdapterConfig) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}

	dsn, err := buildDSN(cfg.Path, cfg.ReadOnly)
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	a.DB = db
	a.Cfg = cfg

	if params.BusyTimeoutMS > 0 {
		if err := a.Exec(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", params.BusyTimeoutMS)); err != nil {
			_ = a.Close()
			return err
		}
	}
	for _, pragma := range params.Pragmas {
		if err := a.Exec(ctx, "PRAGMA "+pragma); err != nil {
			_ = a.Close()
			return err
		}
	}

	a.Logger.Debug("opened sqlite database", "path", cfg.Path, "read_only", cfg.ReadOnly)
	return nil
}

// buildDSN returns a file: URI so that the open mode is honoured and
// unusual characters in uploaded file names survive.
func buildDSN(path string, readOnly bool) (string, error) {
	if path == "" {
		return "", fmt.Errorf("sqlite path is required")
	}
	if path == ":memory:" {
		return path, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	mode := "rw"
	if readOnly {
		mode = "ro"
	}

	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: "mode=" + mode,
	}
	return u.String(), nil
}

// ListTables returns every table in schema order, including internal ones
// such as sqlite_sequence. Views are not listed.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	if a.DB == nil {
		return nil, core.ErrNotConnected
	}

	rows, err := a.DB.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	return tables, nil
}

// TableColumns returns column metadata using PRAGMA table_info.
func (a *Adapter) TableColumns(ctx context.Context, table string) ([]core.Column, error) {
	if a.DB == nil {
		return nil, core.ErrNotConnected
	}

	var objType string
	err := a.DB.QueryRowContext(ctx, `
		SELECT type FROM sqlite_master
		WHERE name = ? AND type IN ('table', 'view')
	`, table).Scan(&objType)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", core.ErrTableNotFound, table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up table: %w", err)
	}

	// PRAGMA doesn't support parameters; the table was validated above.
	rows, err := a.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", adapter.QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}

		columns = append(columns, core.Column{
			Name:       name,
			Type:       colType,
			Nullable:   notNull == 0,
			PrimaryKey: pk > 0,
			Default:    dflt.String,
			Position:   cid + 1,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	return columns, nil
}

// Ensure Adapter implements core.Adapter interface
var _ core.Adapter = (*Adapter)(nil)
