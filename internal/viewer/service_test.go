package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlview/internal/catalog"
	"github.com/leapstack-labs/sqlview/internal/testutil"
	"github.com/leapstack-labs/sqlview/internal/workspace"
	"github.com/leapstack-labs/sqlview/pkg/core"

	_ "github.com/leapstack-labs/sqlview/pkg/adapters/sqlite"
)

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	cat := catalog.New(filepath.Join(t.TempDir(), "uploaded_dbs"), catalog.Options{Logger: logger})
	require.NoError(t, cat.Load(context.Background()))
	opts.Logger = logger
	return New(cat, opts)
}

func uploadShop(t *testing.T, svc *Service, ws *workspace.Workspace, name string) {
	t.Helper()
	out, err := svc.Upload(context.Background(), ws, name, bytes.NewReader(testutil.SQLiteBytes(t, testutil.ShopSchema)))
	require.NoError(t, err)
	require.True(t, out.Accepted())
}

func TestService_Defaults(t *testing.T) {
	svc := newTestService(t, Options{})
	assert.Equal(t, DefaultPreviewLimit, svc.PreviewLimit())
	assert.Equal(t, DefaultMaxRows, svc.opts.MaxRows)
	assert.Equal(t, DefaultQueryTimeout, svc.opts.QueryTimeout)
}

func TestService_UploadNonDatabase(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")

	out, err := svc.Upload(ctx, ws, "notes.txt", bytes.NewReader(testutil.NotADatabase()))
	require.NoError(t, err)
	assert.False(t, out.Accepted())
	assert.Equal(t, "'notes.txt' is not a valid SQLite database.", out.Warning)

	assert.Equal(t, []string{"'notes.txt' is not a valid SQLite database."}, ws.TakeWarnings())
	assert.Empty(t, svc.Databases(ws))
	assert.Empty(t, ws.Active())
}

func TestService_UploadInvalidName(t *testing.T) {
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")

	out, err := svc.Upload(context.Background(), ws, "..", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.False(t, out.Accepted())
	assert.Len(t, ws.TakeWarnings(), 1)
}

func TestService_UploadMakesTablesEnumerable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")

	uploadShop(t, svc, ws, "shop.db")
	assert.Equal(t, "shop.db", ws.Active(), "first upload becomes active")

	tables, err := svc.Tables(ctx, ws)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)

	uploadShop(t, svc, ws, "second.db")
	assert.Equal(t, "shop.db", ws.Active(), "later uploads keep the selection")
}

func TestService_UploadSameNameTwice(t *testing.T) {
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")
	uploadShop(t, svc, ws, "shop.db")

	out, err := svc.Upload(context.Background(), ws, "shop.db", bytes.NewReader(testutil.NotADatabase()))
	require.NoError(t, err)
	assert.True(t, out.AlreadyLoaded)
	assert.True(t, out.Accepted())
	assert.Empty(t, ws.TakeWarnings())
	assert.Len(t, svc.Databases(ws), 1)
}

func TestService_Databases(t *testing.T) {
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")
	other := workspace.New("w2")

	assert.Empty(t, svc.Databases(ws))

	uploadShop(t, svc, ws, "a.db")
	uploadShop(t, svc, ws, "b.db")

	dbs := svc.Databases(other)
	require.Len(t, dbs, 2)
	assert.True(t, dbs[0].Active, "first database is selected by default")
	assert.False(t, dbs[1].Active)
	assert.Equal(t, "a.db", other.Active())

	require.NoError(t, svc.SelectDatabase(other, "b.db"))
	dbs = svc.Databases(other)
	assert.False(t, dbs[0].Active)
	assert.True(t, dbs[1].Active)

	assert.ErrorIs(t, svc.SelectDatabase(other, "missing.db"), core.ErrDatabaseNotFound)
}

func TestService_RemoveDatabase(t *testing.T) {
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")
	other := workspace.New("w2")
	uploadShop(t, svc, ws, "a.db")
	uploadShop(t, svc, ws, "b.db")
	require.NoError(t, svc.SelectDatabase(other, "a.db"))

	require.NoError(t, svc.RemoveDatabase(ws, "a.db"))
	assert.Empty(t, ws.Active())

	dbs := svc.Databases(other)
	require.Len(t, dbs, 1)
	assert.Equal(t, "b.db", dbs[0].Name)
	assert.True(t, dbs[0].Active, "stale selection falls back to the first database")

	assert.ErrorIs(t, svc.RemoveDatabase(ws, "a.db"), core.ErrDatabaseNotFound)
}

func TestService_TablesWithoutDatabase(t *testing.T) {
	svc := newTestService(t, Options{})

	_, err := svc.Tables(context.Background(), workspace.New("w1"))
	assert.ErrorIs(t, err, core.ErrNoActiveDatabase)
}

func TestService_TableView(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")
	uploadShop(t, svc, ws, "shop.db")

	view, err := svc.OpenTable(ctx, ws, "customers")
	require.NoError(t, err)
	assert.Equal(t, []string{"customers"}, ws.OpenTables())
	assert.Equal(t, "shop.db", view.Database)
	assert.Equal(t, []string{"id", "name", "city"}, view.Columns)
	assert.Equal(t, core.ColumnFilters{"id": "", "name": "", "city": ""}, view.Filters)
	assert.Equal(t, 3, view.LoadedRows)
	assert.Equal(t, 3, view.Result.RowCount())
	assert.False(t, view.Filtered())
	assert.False(t, view.Limited)
}

func TestService_TableViewPreviewLimit(t *testing.T) {
	svc := newTestService(t, Options{PreviewLimit: 2})
	ws := workspace.New("w1")
	uploadShop(t, svc, ws, "shop.db")

	view, err := svc.TableView(context.Background(), ws, "customers")
	require.NoError(t, err)
	assert.Equal(t, 2, view.LoadedRows)
	assert.True(t, view.Limited)
}

func TestService_ApplyFiltersNarrowsRows(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")
	uploadShop(t, svc, ws, "shop.db")

	tests := []struct {
		name     string
		filters  core.ColumnFilters
		wantRows [][]string
	}{
		{
			name:    "substring case-insensitive",
			filters: core.ColumnFilters{"name": "ALI"},
			wantRows: [][]string{
				{"1", "Alice", "Berlin"},
				{"3", "Alicia", "NULL"},
			},
		},
		{
			name:     "several columns",
			filters:  core.ColumnFilters{"name": "ali", "city": "berl"},
			wantRows: [][]string{{"1", "Alice", "Berlin"}},
		},
		{
			name:     "no match",
			filters:  core.ColumnFilters{"city": "rome"},
			wantRows: [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := svc.ApplyFilters(ctx, ws, "customers", tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, view.Result.Rows)
			assert.Equal(t, 3, view.LoadedRows)
			assert.True(t, view.Filtered())
		})
	}
}

func TestService_ClearFilters(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")
	uploadShop(t, svc, ws, "shop.db")

	_, err := svc.ApplyFilters(ctx, ws, "customers", core.ColumnFilters{"name": "bob", "city": "par"})
	require.NoError(t, err)

	view, err := svc.ClearFilters(ctx, ws, "customers")
	require.NoError(t, err)
	assert.Equal(t, core.ColumnFilters{"id": "", "name": "", "city": ""}, view.Filters)
	assert.Equal(t, 3, view.Result.RowCount())
	assert.False(t, ws.ClearPending("customers"))

	again, err := svc.TableView(ctx, ws, "customers")
	require.NoError(t, err)
	assert.False(t, again.Filtered(), "cleared filters stay empty")
}

func TestService_TableViewUnknownTable(t *testing.T) {
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")
	uploadShop(t, svc, ws, "shop.db")

	_, err := svc.TableView(context.Background(), ws, "missing")
	assert.Error(t, err)
}

func TestService_Columns(t *testing.T) {
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")
	uploadShop(t, svc, ws, "shop.db")

	cols, err := svc.Columns(context.Background(), ws, "orders")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "customer_id", cols[1].Name)
}

func TestService_QueryTabs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")
	uploadShop(t, svc, ws, "shop.db")

	first, err := svc.NewQueryTab(ws, "")
	require.NoError(t, err)
	second, err := svc.NewQueryTab(ws, "  ")
	require.NoError(t, err)
	assert.Equal(t, "Query 1", first.Name)
	assert.Equal(t, "Query 2", second.Name)

	_, err = svc.ExecuteQuery(ctx, ws, first.Name, "SELECT name FROM customers ORDER BY id")
	require.NoError(t, err)
	_, err = svc.ExecuteQuery(ctx, ws, second.Name, "SELECT COUNT(*) AS n FROM orders")
	require.NoError(t, err)

	a, err := ws.Tab(first.Name)
	require.NoError(t, err)
	b, err := ws.Tab(second.Name)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Alice"}, {"Bob"}, {"Alicia"}}, a.Result.Rows)
	assert.Equal(t, [][]string{{"2"}}, b.Result.Rows)
}

func TestService_ExecuteInvalidQueryKeepsPriorResult(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")
	uploadShop(t, svc, ws, "shop.db")

	tab, err := svc.NewQueryTab(ws, "")
	require.NoError(t, err)

	_, err = svc.ExecuteQuery(ctx, ws, tab.Name, "SELECT id FROM orders")
	require.NoError(t, err)

	got, err := svc.ExecuteQuery(ctx, ws, tab.Name, "SELEC broken FROM")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrQueryFailed)
	assert.NotEmpty(t, got.Error)
	assert.Equal(t, "SELEC broken FROM", got.SQL)
	require.True(t, got.HasResult())
	assert.Equal(t, [][]string{{"10"}, {"11"}}, got.Result.Rows)
}

func TestService_ExecuteEmptyQuery(t *testing.T) {
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")
	uploadShop(t, svc, ws, "shop.db")

	tab, err := svc.ExecuteQuery(context.Background(), ws, "Query 1", "   ")
	assert.ErrorIs(t, err, core.ErrEmptyQuery)
	assert.Equal(t, core.ErrEmptyQuery.Error(), tab.Error)
}

func TestService_ExecuteWithoutDatabase(t *testing.T) {
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")

	tab, err := svc.ExecuteQuery(context.Background(), ws, "Query 1", "SELECT 1")
	assert.ErrorIs(t, err, core.ErrNoActiveDatabase)
	assert.NotEmpty(t, tab.Error)
}

func TestService_ExecuteRowCap(t *testing.T) {
	svc := newTestService(t, Options{MaxRows: 2})
	ws := workspace.New("w1")
	uploadShop(t, svc, ws, "shop.db")

	tab, err := svc.ExecuteQuery(context.Background(), ws, "q", "SELECT * FROM customers")
	require.NoError(t, err)
	assert.Len(t, tab.Result.Rows, 2)
	assert.True(t, tab.Result.Truncated)
}

func TestService_ExportTab(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})
	ws := workspace.New("w1")
	uploadShop(t, svc, ws, "shop.db")

	_, err := svc.ExecuteQuery(ctx, ws, "q", "SELECT id, name FROM customers WHERE id < 3 ORDER BY id")
	require.NoError(t, err)

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.ExportTab(ws, "q", "csv", &buf))
		assert.Equal(t, "id,name\n1,Alice\n2,Bob\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.ExportTab(ws, "q", "json", &buf))

		var doc struct {
			Columns []string   `json:"columns"`
			Rows    [][]string `json:"rows"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		assert.Equal(t, []string{"id", "name"}, doc.Columns)
		assert.Equal(t, [][]string{{"1", "Alice"}, {"2", "Bob"}}, doc.Rows)
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.ExportTab(ws, "q", "markdown", &buf))
		out := buf.String()
		assert.Contains(t, out, "| id | name |")
		assert.Contains(t, out, "| 1 | Alice |")
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, svc.ExportTab(ws, "q", "xlsx", &bytes.Buffer{}))
	})

	t.Run("unknown tab", func(t *testing.T) {
		assert.ErrorIs(t, svc.ExportTab(ws, "nope", "csv", &bytes.Buffer{}), core.ErrTabNotFound)
	})

	t.Run("tab without result", func(t *testing.T) {
		_, err := ws.NewTab("empty")
		require.NoError(t, err)
		assert.Error(t, svc.ExportTab(ws, "empty", "csv", &bytes.Buffer{}))
	})
}

func TestWriteResult_Table(t *testing.T) {
	var buf bytes.Buffer
	rs := &core.ResultSet{Columns: []string{"a"}, Rows: [][]string{{"x"}}, Truncated: true}
	require.NoError(t, WriteResult(&buf, rs, FormatTable))
	assert.Contains(t, buf.String(), "x")
	assert.True(t, strings.HasSuffix(buf.String(), "(1 rows, truncated)\n"))

	buf.Reset()
	require.NoError(t, WriteResult(&buf, &core.ResultSet{Columns: []string{"a"}}, FormatTable))
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestWriteResult_JSONKeepsColumnOrderAndDuplicates(t *testing.T) {
	var buf bytes.Buffer
	rs := &core.ResultSet{
		Columns: []string{"zeta", "id", "id"},
		Rows:    [][]string{{"z", "1", "10"}},
	}
	require.NoError(t, WriteResult(&buf, rs, FormatJSON))

	var doc struct {
		Columns   []string   `json:"columns"`
		Rows      [][]string `json:"rows"`
		Truncated bool       `json:"truncated"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []string{"zeta", "id", "id"}, doc.Columns)
	assert.Equal(t, [][]string{{"z", "1", "10"}}, doc.Rows)
	assert.False(t, doc.Truncated)

	buf.Reset()
	require.NoError(t, WriteResult(&buf, &core.ResultSet{Columns: []string{"a"}, Truncated: true}, FormatJSON))
	assert.JSONEq(t, `{"columns": ["a"], "rows": [], "truncated": true}`, buf.String())
}
