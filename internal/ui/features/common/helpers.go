package common

import (
	"net/http"
	"net/url"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
)

// PathParam returns the decoded chi URL parameter key.
func PathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// DatabasePath builds an /api/databases URL for an action.
func DatabasePath(name, action string) string {
	return "/api/databases/" + url.PathEscape(name) + "/" + action
}

// TablePath builds an /api/tables URL for an action.
func TablePath(table, action string) string {
	return "/api/tables/" + url.PathEscape(table) + "/" + action
}

// TabPath builds an /api/query/tabs URL for an action.
func TabPath(tab, action string) string {
	return "/api/query/tabs/" + url.PathEscape(tab) + "/" + action
}

// ExportPath builds the download URL of a query tab.
func ExportPath(tab, format string) string {
	return TabPath(tab, "export") + "?format=" + url.QueryEscape(format)
}

// Post returns a datastar action posting to path.
func Post(path string) string {
	return "@post('" + path + "')"
}

// PostForm returns a datastar action posting the closest form to path.
func PostForm(path string) string {
	return "@post('" + path + "', {contentType: 'form'})"
}

// Get returns a datastar action fetching path.
func Get(path string) string {
	return "@get('" + path + "')"
}

// Bytes formats a file size for display.
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
