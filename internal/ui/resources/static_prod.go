//go:build !dev

package resources

import (
	"embed"
	"io/fs"
)

// Dev reports whether assets are served from the filesystem.
const Dev = false

// Embedded assets only change with the binary.
const cacheControl = "public, max-age=86400"

//go:embed static/*
var staticFS embed.FS

func assets() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
