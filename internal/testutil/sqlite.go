package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite" // sqlite driver
)

// ShopSchema creates a small two-table database used across tests.
const ShopSchema = `
	CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL, city TEXT);
	CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER, total REAL);
	INSERT INTO customers VALUES (1, 'Alice', 'Berlin'), (2, 'Bob', 'Paris'), (3, 'Alicia', NULL);
	INSERT INTO orders VALUES (10, 1, 9.5), (11, 2, 20);
`

// CreateSQLiteDB creates a SQLite file at path and runs the given statements.
func CreateSQLiteDB(t testing.TB, path string, stmts ...string) string {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

// SQLiteBytes returns the raw bytes of a freshly created SQLite database.
func SQLiteBytes(t testing.TB, stmts ...string) []byte {
	t.Helper()

	path := CreateSQLiteDB(t, filepath.Join(t.TempDir(), "fixture.db"), stmts...)
	data, err := os.ReadFile(path) //nolint:gosec // test fixture path
	require.NoError(t, err)
	return data
}

// NotADatabase returns text content that no engine accepts.
func NotADatabase() []byte {
	return []byte(strings.Repeat("this is not a database\n", 100))
}
