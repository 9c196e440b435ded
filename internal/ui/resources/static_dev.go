//go:build dev

package resources

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// Dev reports whether assets are served from the filesystem.
const Dev = true

// Edited stylesheets must show up on a plain reload.
const cacheControl = "no-cache"

// assets reads the static directory next to this source file, so edits
// are picked up without rebuilding.
func assets() fs.FS {
	dir := "internal/ui/resources/static"
	if _, filename, _, ok := runtime.Caller(0); ok {
		dir = filepath.Join(filepath.Dir(filename), "static")
	}
	return os.DirFS(dir)
}
