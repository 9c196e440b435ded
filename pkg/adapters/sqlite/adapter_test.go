package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlview/pkg/adapter"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// createTestDB writes a small SQLite database and returns its path.
func createTestDB(t *testing.T, name string) string {
	t.Helper()

	// The driver reads a DSN, so the fixture is built under a plain name
	// and renamed afterwards.
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.db")
	db, err := sql.Open("sqlite", fixture)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`
		CREATE TABLE customers (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			city TEXT DEFAULT 'unknown'
		);
		CREATE TABLE "order items" (sku TEXT, qty INTEGER);
		CREATE VIEW v_customers AS SELECT id, name FROM customers;

		INSERT INTO customers (id, name, city) VALUES
			(1, 'Alice', 'Berlin'),
			(2, 'Bob', NULL),
			(3, 'Carol', 'Paris');
		INSERT INTO "order items" VALUES ('A-1', 2);
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	path := filepath.Join(dir, name)
	if path != fixture {
		require.NoError(t, os.Rename(fixture, path))
	}
	return path
}

func openTestDB(t *testing.T, path string, readOnly bool) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Open(context.Background(), core.AdapterConfig{Path: path, ReadOnly: readOnly}))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Registered(t *testing.T) {
	assert.True(t, adapter.IsRegistered(EngineName))

	adp, err := adapter.NewAdapter(EngineName, nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", adp.Engine())
}

func TestAdapter_OpenMissingFileIsNotCreated(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
	}{
		{"read-write", false},
		{"read-only", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.db")
			adp := New(nil)

			err := adp.Open(context.Background(), core.AdapterConfig{Path: path, ReadOnly: tt.readOnly})
			if err == nil {
				// Some drivers defer the open error to the first statement.
				_, err = adp.ListTables(context.Background())
				_ = adp.Close()
			}
			require.Error(t, err)

			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr), "database file must not be created")
		})
	}
}

func TestAdapter_ListTables(t *testing.T) {
	path := createTestDB(t, "shop.db")
	adp := openTestDB(t, path, true)

	tables, err := adp.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "order items"}, tables, "views are excluded")
}

func TestAdapter_ListTablesIncludesInternalTables(t *testing.T) {
	path := createTestDB(t, "shop.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE events (id INTEGER PRIMARY KEY AUTOINCREMENT, kind TEXT);
		INSERT INTO events (kind) VALUES ('signup');
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	adp := openTestDB(t, path, true)
	tables, err := adp.ListTables(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"customers", "order items", "events", "sqlite_sequence"}, tables)
}

func TestAdapter_ListTablesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	adp := openTestDB(t, path, true)
	tables, err := adp.ListTables(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestAdapter_RejectsNonDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("this is not a database\n", 64)), 0600))

	adp := New(nil)
	err := adp.Open(context.Background(), core.AdapterConfig{Path: path, ReadOnly: true})
	if err == nil {
		defer func() { _ = adp.Close() }()
		_, err = adp.ListTables(context.Background())
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a database")
}

func TestAdapter_TableColumns(t *testing.T) {
	path := createTestDB(t, "shop.db")
	adp := openTestDB(t, path, true)
	ctx := context.Background()

	cols, err := adp.TableColumns(ctx, "customers")
	require.NoError(t, err)
	require.Len(t, cols, 3)

	assert.Equal(t, "id", cols[0].Name)
	assert.True(t, cols[0].PrimaryKey)
	assert.Equal(t, 1, cols[0].Position)

	assert.Equal(t, "name", cols[1].Name)
	assert.Equal(t, "TEXT", cols[1].Type)
	assert.False(t, cols[1].Nullable)

	assert.Equal(t, "city", cols[2].Name)
	assert.True(t, cols[2].Nullable)
	assert.Equal(t, "'unknown'", cols[2].Default)

	_, err = adp.TableColumns(ctx, "nope")
	assert.ErrorIs(t, err, core.ErrTableNotFound)
}

func TestAdapter_Preview(t *testing.T) {
	path := createTestDB(t, "shop.db")
	adp := openTestDB(t, path, true)
	ctx := context.Background()

	tests := []struct {
		name     string
		table    string
		limit    int
		wantRows int
	}{
		{"all rows under limit", "customers", 1000, 3},
		{"limit applied", "customers", 2, 2},
		{"quoted table name", "order items", 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := adp.Preview(ctx, tt.table, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, result.RowCount())
		})
	}

	result, err := adp.Preview(ctx, "customers", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "city"}, result.Columns)
	assert.Equal(t, []string{"2", "Bob", "NULL"}, result.Rows[1])
}

func TestAdapter_Query(t *testing.T) {
	path := createTestDB(t, "shop.db")
	adp := openTestDB(t, path, false)
	ctx := context.Background()

	t.Run("select", func(t *testing.T) {
		result, err := adp.Query(ctx, "SELECT name FROM customers ORDER BY id", 0)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"Alice"}, {"Bob"}, {"Carol"}}, result.Rows)
		assert.False(t, result.Truncated)
	})

	t.Run("row cap", func(t *testing.T) {
		result, err := adp.Query(ctx, "SELECT name FROM customers ORDER BY id", 2)
		require.NoError(t, err)
		assert.Len(t, result.Rows, 2)
		assert.True(t, result.Truncated)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := adp.Query(ctx, "SELEC nonsense", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute query")
	})

	t.Run("writes are allowed on read-write connections", func(t *testing.T) {
		_, err := adp.Query(ctx, "INSERT INTO customers (id, name) VALUES (4, 'Dan')", 0)
		require.NoError(t, err)

		result, err := adp.Query(ctx, "SELECT COUNT(*) FROM customers", 0)
		require.NoError(t, err)
		assert.Equal(t, "4", result.Rows[0][0])
	})
}

func TestAdapter_ReadOnlyRejectsWrites(t *testing.T) {
	path := createTestDB(t, "shop.db")
	adp := openTestDB(t, path, true)

	_, err := adp.Query(context.Background(), "DELETE FROM customers", 0)
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "readonly")
}

func TestAdapter_UnusualFileName(t *testing.T) {
	names := []string{"my data #1?.db", "q?.db", "hash#1.db", "pct%41.db", "amp&x=y.db"}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			path := createTestDB(t, name)
			adp := openTestDB(t, path, true)

			tables, err := adp.ListTables(context.Background())
			require.NoError(t, err)
			assert.Contains(t, tables, "customers")
		})
	}
}

func TestAdapter_Params(t *testing.T) {
	path := createTestDB(t, "shop.db")
	adp := New(nil)
	ctx := context.Background()

	require.NoError(t, adp.Open(ctx, core.AdapterConfig{
		Path: path,
		Params: map[string]any{
			"busy_timeout_ms": 2500,
			"pragmas":         []any{"cache_size = -2000"},
		},
	}))
	defer func() { _ = adp.Close() }()

	result, err := adp.Query(ctx, "PRAGMA busy_timeout", 0)
	require.NoError(t, err)
	assert.Equal(t, "2500", result.Rows[0][0])

	bad := New(nil)
	err = bad.Open(ctx, core.AdapterConfig{Path: path, Params: map[string]any{"pragmas": []any{"not valid sql ("}}})
	assert.Error(t, err)
	assert.False(t, bad.IsConnected())
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, adp *Adapter) error
	}{
		{
			name: "list tables without open",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.ListTables(ctx)
				return err
			},
		},
		{
			name: "columns without open",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.TableColumns(ctx, "t")
				return err
			},
		},
		{
			name: "query without open",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Query(ctx, "SELECT 1", 0)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.operation(context.Background(), New(nil))
			assert.ErrorIs(t, err, core.ErrNotConnected)
		})
	}
}

func TestDetect_SQLite(t *testing.T) {
	ctx := context.Background()

	engine, err := adapter.Detect(ctx, createTestDB(t, "shop.db"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, EngineName, engine)

	junk := filepath.Join(t.TempDir(), "junk.bin")
	require.NoError(t, os.WriteFile(junk, []byte(strings.Repeat("garbage", 200)), 0600))

	_, err = adapter.Detect(ctx, junk, nil, nil)
	assert.ErrorIs(t, err, core.ErrNotDatabase)
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    *Params
		wantErr bool
	}{
		{
			name:  "nil params returns empty struct",
			input: nil,
			want:  &Params{},
		},
		{
			name: "pragmas and timeout",
			input: map[string]any{
				"pragmas":         []any{"cache_size = -2000"},
				"busy_timeout_ms": "1500",
			},
			want: &Params{
				Pragmas:       []string{"cache_size = -2000"},
				BusyTimeoutMS: 1500,
			},
		},
		{
			name:    "wrong type",
			input:   map[string]any{"busy_timeout_ms": map[string]any{"x": 1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildDSN(t *testing.T) {
	dsn, err := buildDSN("/tmp/a b.db", true)
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/a%20b.db?mode=ro", dsn)

	dsn, err = buildDSN("/tmp/x.db", false)
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/x.db?mode=rw", dsn)

	dsn, err = buildDSN(":memory:", false)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", dsn)

	_, err = buildDSN("", false)
	assert.Error(t, err)
}
