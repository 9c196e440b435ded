package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlview/internal/testutil"
	"github.com/leapstack-labs/sqlview/pkg/core"

	_ "github.com/leapstack-labs/sqlview/pkg/adapters/sqlite"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := New(filepath.Join(t.TempDir(), "uploaded_dbs"), Options{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestCatalog_LoadCreatesDirectory(t *testing.T) {
	c := newTestCatalog(t)

	info, err := os.Stat(c.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, 0, c.Len())
}

func TestCatalog_LoadRegistersExistingFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateSQLiteDB(t, filepath.Join(dir, "shop.db"), testutil.ShopSchema)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), testutil.NotADatabase(), 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0750))

	c := New(dir, Options{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, c.Load(context.Background()))

	assert.Equal(t, []string{"shop.db"}, c.Names())
	entry, ok := c.Get("shop.db")
	require.True(t, ok)
	assert.Equal(t, "sqlite", entry.Engine)
	assert.Positive(t, entry.Size)
}

func TestCatalog_Save(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)
	data := testutil.SQLiteBytes(t, testutil.ShopSchema)

	entry, err := c.Save(ctx, "shop.db", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "shop.db", entry.Name)
	assert.Equal(t, "sqlite", entry.Engine)
	assert.Equal(t, int64(len(data)), entry.Size)

	written, err := os.ReadFile(filepath.Join(c.Dir(), "shop.db"))
	require.NoError(t, err)
	assert.Equal(t, data, written, "file must be stored verbatim")

	adp, err := c.Open(ctx, "shop.db")
	require.NoError(t, err)
	defer func() { _ = adp.Close() }()

	tables, err := adp.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)
}

func TestCatalog_SaveRejectsNonDatabase(t *testing.T) {
	c := newTestCatalog(t)

	entry, err := c.Save(context.Background(), "notes.txt", bytes.NewReader(testutil.NotADatabase()))
	require.Error(t, err)
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, core.ErrNotDatabase)

	var nde *core.NotDatabaseError
	require.ErrorAs(t, err, &nde)
	assert.Equal(t, "notes.txt", nde.Name)

	assert.Empty(t, c.List(), "invalid files never join the usable set")
	_, statErr := os.Stat(filepath.Join(c.Dir(), "notes.txt"))
	assert.NoError(t, statErr, "the copy stays on disk")

	changed, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, c.List())
}

func TestCatalog_SaveDuplicateName(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)
	original := testutil.SQLiteBytes(t, testutil.ShopSchema)

	_, err := c.Save(ctx, "shop.db", bytes.NewReader(original))
	require.NoError(t, err)

	entry, err := c.Save(ctx, "shop.db", bytes.NewReader(testutil.SQLiteBytes(t, "CREATE TABLE other (x)")))
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
	require.NotNil(t, entry)
	assert.Equal(t, "shop.db", entry.Name)

	written, err := os.ReadFile(filepath.Join(c.Dir(), "shop.db"))
	require.NoError(t, err)
	assert.Equal(t, original, written, "registered files are not rewritten")
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_SaveReplacesRejectedFile(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	_, err := c.Save(ctx, "data.db", bytes.NewReader(testutil.NotADatabase()))
	require.Error(t, err)

	_, err = c.Save(ctx, "data.db", bytes.NewReader(testutil.SQLiteBytes(t, testutil.ShopSchema)))
	require.NoError(t, err)
	assert.Equal(t, []string{"data.db"}, c.Names())
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "shop.db", want: "shop.db"},
		{name: "no extension", input: "mydata", want: "mydata"},
		{name: "unix path", input: "/home/me/shop.db", want: "shop.db"},
		{name: "windows path", input: `C:\Users\me\shop.db`, want: "shop.db"},
		{name: "traversal", input: "../../etc/passwd", want: "passwd"},
		{name: "spaces kept", input: "my shop.sqlite", want: "my shop.sqlite"},
		{name: "empty", input: "", wantErr: true},
		{name: "dot", input: ".", wantErr: true},
		{name: "dot dot", input: "..", wantErr: true},
		{name: "trailing slash", input: "dir/..", wantErr: true},
		{name: "temp prefix", input: tempPrefix + "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_SaveInvalidName(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.Save(context.Background(), "..", bytes.NewReader(nil))
	assert.ErrorIs(t, err, core.ErrInvalidName)
}

func TestCatalog_ListKeepsRegistrationOrder(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	for _, name := range []string{"zeta.db", "alpha.db", "mid.db"} {
		_, err := c.Save(ctx, name, bytes.NewReader(testutil.SQLiteBytes(t, testutil.ShopSchema)))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"zeta.db", "alpha.db", "mid.db"}, c.Names())
	assert.Len(t, c.List(), 3)
}

func TestCatalog_Remove(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	_, err := c.Save(ctx, "shop.db", bytes.NewReader(testutil.SQLiteBytes(t, testutil.ShopSchema)))
	require.NoError(t, err)

	require.NoError(t, c.Remove("shop.db"))
	assert.Empty(t, c.List())

	_, statErr := os.Stat(filepath.Join(c.Dir(), "shop.db"))
	assert.True(t, os.IsNotExist(statErr))

	assert.ErrorIs(t, c.Remove("shop.db"), core.ErrDatabaseNotFound)
}

func TestCatalog_OpenUnknown(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.Open(context.Background(), "missing.db")
	assert.ErrorIs(t, err, core.ErrDatabaseNotFound)
}

func TestCatalog_Refresh(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	testutil.CreateSQLiteDB(t, filepath.Join(c.Dir(), "external.db"), testutil.ShopSchema)

	changed, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"external.db"}, c.Names())

	changed, err = c.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, changed, "second scan finds nothing new")

	require.NoError(t, os.Remove(filepath.Join(c.Dir(), "external.db")))
	changed, err = c.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, c.Names())
}

func TestCatalog_Watch(t *testing.T) {
	c := newTestCatalog(t)

	ctx, cancel := context.WithCancel(context.Background())
	var notified atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, func() { notified.Add(1) })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)

	src := testutil.CreateSQLiteDB(t, filepath.Join(t.TempDir(), "dropped.db"), testutil.ShopSchema)
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "dropped.db"), data, 0600))

	require.Eventually(t, func() bool {
		_, ok := c.Get("dropped.db")
		return ok && notified.Load() > 0
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
