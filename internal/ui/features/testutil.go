// Package features provides shared test utilities for UI feature tests.
package features

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlview/internal/catalog"
	"github.com/leapstack-labs/sqlview/internal/testutil"
	"github.com/leapstack-labs/sqlview/internal/ui/features/common"
	"github.com/leapstack-labs/sqlview/internal/ui/middleware"
	"github.com/leapstack-labs/sqlview/internal/ui/notifier"
	"github.com/leapstack-labs/sqlview/internal/viewer"
	"github.com/leapstack-labs/sqlview/internal/workspace"

	// Register the engines used by uploads.
	_ "github.com/leapstack-labs/sqlview/pkg/adapters/sqlite"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Deps      common.Deps
	Catalog   *catalog.Catalog
	Workspace *workspace.Workspace

	t *testing.T
}

// SetupTestFixture creates a catalog in a temp directory, a service over it
// and a workspace that every request built by the fixture is bound to.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	cat := catalog.New(filepath.Join(t.TempDir(), "uploaded_dbs"), catalog.Options{Logger: logger})
	require.NoError(t, cat.Load(context.Background()))

	return &TestFixture{
		Deps: common.Deps{
			Service:        viewer.New(cat, viewer.Options{Logger: logger}),
			Notifier:       notifier.New(),
			Logger:         logger,
			MaxUploadBytes: 10 << 20,
		},
		Catalog:   cat,
		Workspace: workspace.New("test"),
		t:         t,
	}
}

// AddDatabase uploads a SQLite database built from stmts and selects it.
func (f *TestFixture) AddDatabase(name string, stmts ...string) {
	f.t.Helper()
	_, err := f.Deps.Service.Upload(context.Background(), f.Workspace, name, bytes.NewReader(testutil.SQLiteBytes(f.t, stmts...)))
	require.NoError(f.t, err)
	require.NoError(f.t, f.Deps.Service.SelectDatabase(f.Workspace, name))
}

// Request builds a request bound to the fixture workspace.
func (f *TestFixture) Request(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.WithWorkspace(req.Context(), f.Workspace))
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
