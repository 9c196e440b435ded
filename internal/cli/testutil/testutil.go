// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlview/internal/cli/config"
	"github.com/leapstack-labs/sqlview/internal/cli/output"
	sqltest "github.com/leapstack-labs/sqlview/internal/testutil"
)

// SetupUploadDir points the CLI configuration at a fresh upload directory
// holding one SQLite database per name, built from stmts. It runs from a
// temp working directory so no stray config file is picked up, and returns
// the upload directory.
func SetupUploadDir(t *testing.T, names []string, stmts ...string) string {
	t.Helper()

	t.Chdir(t.TempDir())
	dir := filepath.Join(t.TempDir(), "uploaded_dbs")
	require.NoError(t, os.MkdirAll(dir, 0750))
	for _, name := range names {
		sqltest.CreateSQLiteDB(t, filepath.Join(dir, name), stmts...)
	}

	t.Setenv(config.EnvPrefix+"UPLOAD_DIR", dir)
	config.ResetConfig()
	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	t.Cleanup(config.ResetConfig)

	return dir
}

// ExecuteCommand runs cmd with args and returns its captured output.
func ExecuteCommand(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
