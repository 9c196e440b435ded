package core

import (
	"strings"

	"golang.org/x/text/cases"
)

// ResultSet is a tabular snapshot of a query result.
// Cell values are stringified when collected so that a snapshot can be
// cached, filtered and rendered without holding a database connection.
type ResultSet struct {
	Columns   []string
	Rows      [][]string
	Truncated bool
	QueryMS   int64
}

// RowCount returns the number of rows in the snapshot.
func (r *ResultSet) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Clone returns a deep copy of the result set.
func (r *ResultSet) Clone() *ResultSet {
	if r == nil {
		return nil
	}
	out := &ResultSet{
		Columns:   append([]string(nil), r.Columns...),
		Rows:      make([][]string, len(r.Rows)),
		Truncated: r.Truncated,
		QueryMS:   r.QueryMS,
	}
	for i, row := range r.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// ColumnFilters maps a column name to its substring filter text.
// An empty value means the column is not filtered.
type ColumnFilters map[string]string

// Active reports whether any filter has non-empty text.
func (f ColumnFilters) Active() bool {
	for _, v := range f {
		if v != "" {
			return true
		}
	}
	return false
}

// Clone returns a copy of the filters.
func (f ColumnFilters) Clone() ColumnFilters {
	out := make(ColumnFilters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Filter returns the rows whose cells contain every non-empty filter text,
// compared case-insensitively. Filters naming unknown columns are ignored.
// The receiver is not modified; rows are shared with the returned set.
func (r *ResultSet) Filter(filters ColumnFilters) *ResultSet {
	if r == nil {
		return nil
	}

	out := &ResultSet{
		Columns:   r.Columns,
		Truncated: r.Truncated,
		QueryMS:   r.QueryMS,
	}
	if !filters.Active() {
		out.Rows = r.Rows
		return out
	}

	fold := cases.Fold()

	type needle struct {
		idx  int
		text string
	}
	var needles []needle
	for i, col := range r.Columns {
		if v := filters[col]; v != "" {
			needles = append(needles, needle{idx: i, text: fold.String(v)})
		}
	}

	out.Rows = make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		keep := true
		for _, n := range needles {
			if n.idx >= len(row) || !strings.Contains(fold.String(row[n.idx]), n.text) {
				keep = false
				break
			}
		}
		if keep {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
