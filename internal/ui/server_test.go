package ui

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlview/internal/catalog"
	"github.com/leapstack-labs/sqlview/internal/testutil"
	"github.com/leapstack-labs/sqlview/internal/viewer"

	_ "github.com/leapstack-labs/sqlview/pkg/adapters/sqlite"
)

func newTestService(t *testing.T) *viewer.Service {
	t.Helper()
	cat := catalog.New(filepath.Join(t.TempDir(), "uploaded_dbs"), catalog.Options{})
	require.NoError(t, cat.Load(context.Background()))
	return viewer.New(cat, viewer.Options{})
}

func TestServer_URL(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{host: "", want: "http://localhost:8080"},
		{host: "0.0.0.0", want: "http://localhost:8080"},
		{host: "127.0.0.1", want: "http://127.0.0.1:8080"},
		{host: "::1", want: "http://[::1]:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			s := NewServer(Config{Service: newTestService(t), Host: tt.host, Port: 8080})
			assert.Equal(t, tt.want, s.URL())
		})
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	svc := newTestService(t)
	s := NewServer(Config{
		Service: svc,
		Watch:   true,
		Logger:  testutil.NewTestLogger(t),
	})

	handler, err := s.Handler()
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, ln, handler) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Please upload SQLite database files")
	assert.NotEmpty(t, resp.Header.Get("Set-Cookie"), "a session is started")
	assert.Equal(t, 1, s.Workspaces().Len())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_RandomSessionSecret(t *testing.T) {
	a := NewServer(Config{Service: newTestService(t)})
	b := NewServer(Config{Service: newTestService(t)})

	assert.NotNil(t, a.sessionStore)
	assert.NotEqual(t, a.sessionStore.Codecs, b.sessionStore.Codecs)
}

func TestServer_OneWorkspacePerClient(t *testing.T) {
	s := NewServer(Config{Service: newTestService(t), Logger: testutil.NewTestLogger(t)})
	handler, err := s.Handler()
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	for i := range 3 {
		resp, err := client.Get(srv.URL + "/")
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		if i == 0 {
			cookie := resp.Header.Get("Set-Cookie")
			require.NotEmpty(t, cookie)
			assert.NotContains(t, cookie, "; Secure", "plain HTTP cookies must not be Secure")
			assert.Contains(t, cookie, "HttpOnly")
		}
	}

	assert.Equal(t, 1, s.Workspaces().Len())
}
