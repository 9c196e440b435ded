package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlview/internal/testutil"
	"github.com/leapstack-labs/sqlview/internal/workspace"
)

func TestWorkspaces(t *testing.T) {
	store := NewSessionStore("test-secret-key-32-bytes-long!!")
	mgr := workspace.NewManager()

	var seen []*workspace.Workspace
	handler := Workspaces(store, mgr, testutil.NewTestLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws := Workspace(r.Context())
		require.NotNil(t, ws)
		seen = append(seen, ws)
		w.WriteHeader(http.StatusNoContent)
	}))

	// First visit creates a workspace and sets the cookie.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionName, cookies[0].Name)

	// Returning with the cookie reuses the workspace.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Result().Cookies(), "no new cookie for a known session")

	// A different browser gets its own workspace.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, seen, 3)
	assert.Same(t, seen[0], seen[1])
	assert.NotSame(t, seen[0], seen[2])
	assert.Equal(t, 2, mgr.Len())
}

func TestWorkspaces_InvalidCookie(t *testing.T) {
	store := NewSessionStore("test-secret-key-32-bytes-long!!")
	mgr := workspace.NewManager()

	handler := Workspaces(store, mgr, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, Workspace(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionName, Value: "garbage"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Result().Cookies(), 1, "a fresh session replaces the invalid one")
	assert.Equal(t, 1, mgr.Len())
}

func TestWorkspace_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, Workspace(req.Context()))

	ws := workspace.New("x")
	assert.Same(t, ws, Workspace(WithWorkspace(req.Context(), ws)))
}
