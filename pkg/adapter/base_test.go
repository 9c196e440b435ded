package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlview/pkg/core"
)

func TestBaseSQLAdapter_Close(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		expectErr bool
	}{
		{
			name:      "close with nil DB",
			setupDB:   false,
			expectErr: false,
		},
		{
			name:      "close with open DB",
			setupDB:   true,
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				mock.ExpectClose()
				base.DB = db
			}

			err := base.Close()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.False(t, base.IsConnected(), "DB should be released after Close")
		})
	}
}

func TestBaseSQLAdapter_Exec(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		expectErr bool
		errMsg    string
	}{
		{
			name:      "exec without connection",
			setupDB:   false,
			sql:       "PRAGMA query_only = ON",
			expectErr: true,
			errMsg:    "database connection not established",
		},
		{
			name:    "exec success",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("PRAGMA").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			sql:       "PRAGMA query_only = ON",
			expectErr: false,
		},
		{
			name:    "exec with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INVALID SQL").WillReturnError(assert.AnError)
			},
			sql:       "INVALID SQL",
			expectErr: true,
			errMsg:    "failed to execute SQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				if tt.setupMock != nil {
					tt.setupMock(mock)
				}
				base.DB = db
			}

			err := base.Exec(ctx, tt.sql)
			if tt.expectErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBaseSQLAdapter_Query(t *testing.T) {
	tests := []struct {
		name          string
		setupDB       bool
		setupMock     func(mock sqlmock.Sqlmock)
		maxRows       int
		expectErr     bool
		errMsg        string
		wantRows      [][]string
		wantTruncated bool
	}{
		{
			name:      "query without connection",
			setupDB:   false,
			expectErr: true,
			errMsg:    "database connection not established",
		},
		{
			name:    "query success stringifies values",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "note"}).
					AddRow(1, "alice", nil).
					AddRow(2, []byte("bob"), 1.5)
				mock.ExpectQuery("SELECT").WillReturnRows(rows)
			},
			wantRows: [][]string{
				{"1", "alice", "NULL"},
				{"2", "bob", "1.5"},
			},
		},
		{
			name:    "row cap marks result truncated",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "note"}).
					AddRow(1, "a", "x").
					AddRow(2, "b", "y").
					AddRow(3, "c", "z")
				mock.ExpectQuery("SELECT").WillReturnRows(rows)
			},
			maxRows:       2,
			wantRows:      [][]string{{"1", "a", "x"}, {"2", "b", "y"}},
			wantTruncated: true,
		},
		{
			name:    "row cap equal to row count is not truncated",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "note"}).
					AddRow(1, "a", "x").
					AddRow(2, "b", "y")
				mock.ExpectQuery("SELECT").WillReturnRows(rows)
			},
			maxRows:  2,
			wantRows: [][]string{{"1", "a", "x"}, {"2", "b", "y"}},
		},
		{
			name:    "query with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)
			},
			expectErr: true,
			errMsg:    "failed to execute query",
		},
		{
			name:    "row iteration error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "note"}).
					AddRow(1, "a", "x").
					RowError(0, assert.AnError)
				mock.ExpectQuery("SELECT").WillReturnRows(rows)
			},
			expectErr: true,
			errMsg:    "error iterating rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				if tt.setupMock != nil {
					tt.setupMock(mock)
				}
				base.DB = db
			}

			result, err := base.Query(ctx, "SELECT id, name, note FROM users", tt.maxRows)
			if tt.expectErr {
				require.Error(t, err)
				assert.Nil(t, result)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, []string{"id", "name", "note"}, result.Columns)
			assert.Equal(t, tt.wantRows, result.Rows)
			assert.Equal(t, tt.wantTruncated, result.Truncated)
		})
	}
}

func TestBaseSQLAdapter_QueryNotConnectedSentinel(t *testing.T) {
	base := &BaseSQLAdapter{}
	_, err := base.Query(context.Background(), "SELECT 1", 0)
	assert.ErrorIs(t, err, core.ErrNotConnected)
}

func TestBaseSQLAdapter_Preview(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		limit     int
		wantQuery string
	}{
		{"plain table", "users", 1000, `SELECT * FROM "users" LIMIT 1000`},
		{"table with spaces", "order items", 10, `SELECT * FROM "order items" LIMIT 10`},
		{"embedded quote", `we"ird`, 5, `SELECT * FROM "we""ird" LIMIT 5`},
		{"no limit", "users", 0, `SELECT * FROM "users"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			mock.ExpectQuery(tt.wantQuery).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

			base := &BaseSQLAdapter{DB: db}
			result, err := base.Preview(context.Background(), tt.table, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, 1, result.RowCount())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBaseSQLAdapter_IsConnected(t *testing.T) {
	tests := []struct {
		name     string
		setupDB  bool
		expected bool
	}{
		{
			name:     "not connected",
			setupDB:  false,
			expected: false,
		},
		{
			name:     "connected",
			setupDB:  true,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, _, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()
				base.DB = db
			}

			assert.Equal(t, tt.expected, base.IsConnected())
		})
	}
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, "NULL"},
		{"string", "hello", "hello"},
		{"int", 42, "42"},
		{"int64", int64(100), "100"},
		{"float", 3.14, "3.14"},
		{"bytes", []byte("world"), "world"},
		{"bool", true, "true"},
		{"time", ts, "2024-01-02T03:04:05Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(tt.input))
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"users"`, QuoteIdent("users"))
	assert.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
	assert.Equal(t, `""`, QuoteIdent(""))
}
