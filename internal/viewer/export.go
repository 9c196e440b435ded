package viewer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/sqlview/internal/workspace"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// Result formats.
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "md"
)

// ExportFormat describes a downloadable rendering of a result.
type ExportFormat struct {
	Name        string
	Extension   string
	ContentType string
}

var exportFormats = map[string]ExportFormat{
	FormatCSV:      {Name: FormatCSV, Extension: ".csv", ContentType: "text/csv; charset=utf-8"},
	FormatJSON:     {Name: FormatJSON, Extension: ".json", ContentType: "application/json"},
	FormatMarkdown: {Name: FormatMarkdown, Extension: ".md", ContentType: "text/markdown; charset=utf-8"},
}

// LookupExportFormat resolves a format name. "markdown" is accepted for md.
func LookupExportFormat(name string) (ExportFormat, error) {
	name = strings.ToLower(name)
	if name == "markdown" {
		name = FormatMarkdown
	}
	f, ok := exportFormats[name]
	if !ok {
		return ExportFormat{}, fmt.Errorf("unsupported export format %q (use csv, json or md)", name)
	}
	return f, nil
}

// ExportTab writes the cached result of a query tab in the given format.
func (s *Service) ExportTab(ws *workspace.Workspace, tab, format string, w io.Writer) error {
	f, err := LookupExportFormat(format)
	if err != nil {
		return err
	}

	t, err := ws.Tab(tab)
	if err != nil {
		return err
	}
	if !t.HasResult() {
		return fmt.Errorf("query tab %s has no result to export", tab)
	}
	return WriteResult(w, t.Result, f.Name)
}

// WriteResult renders rs in one of the result formats.
func WriteResult(w io.Writer, rs *core.ResultSet, format string) error {
	if rs == nil {
		rs = &core.ResultSet{}
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, rs)
	case FormatCSV:
		return writeCSV(w, rs)
	case FormatMarkdown, "markdown":
		return writeMarkdown(w, rs)
	default:
		return writeTable(w, rs)
	}
}

func newTableWriter(rs *core.ResultSet) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	// Column names are shown as the database returns them.
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(rs.Columns))
	for i, col := range rs.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, r := range rs.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}
	return t
}

func writeTable(w io.Writer, rs *core.ResultSet) error {
	if rs.RowCount() == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	t := newTableWriter(rs)
	t.SetOutputMirror(w)
	t.Render()

	suffix := ""
	if rs.Truncated {
		suffix = ", truncated"
	}
	_, err := fmt.Fprintf(w, "(%d rows%s)\n", rs.RowCount(), suffix)
	return err
}

func writeMarkdown(w io.Writer, rs *core.ResultSet) error {
	if len(rs.Columns) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	_, err := fmt.Fprintln(w, newTableWriter(rs).RenderMarkdown())
	return err
}

// jsonResult is the JSON export document. Columns keep query order and
// repeated column names are preserved.
type jsonResult struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	Truncated bool       `json:"truncated,omitempty"`
}

func writeJSON(w io.Writer, rs *core.ResultSet) error {
	doc := jsonResult{
		Columns:   rs.Columns,
		Rows:      rs.Rows,
		Truncated: rs.Truncated,
	}
	if doc.Columns == nil {
		doc.Columns = []string{}
	}
	if doc.Rows == nil {
		doc.Rows = [][]string{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writeCSV(w io.Writer, rs *core.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(rs.Rows); err != nil {
		return err
	}
	return cw.Error()
}
