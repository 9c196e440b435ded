package common

import (
	"fmt"

	"github.com/leapstack-labs/sqlview/internal/viewer"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// EmptyMessage is shown while nothing has been uploaded.
const EmptyMessage = "Please upload SQLite database files to get started."

// exportFormats are the download links offered under a query result.
var exportFormats = []string{viewer.FormatCSV, viewer.FormatJSON, viewer.FormatMarkdown}

// viewSummary describes how many rows of a table view are shown.
func viewSummary(view *viewer.TableView, limit int) string {
	var s string
	if view.Filtered() {
		s = fmt.Sprintf("%d of %d loaded rows match", view.Result.RowCount(), view.LoadedRows)
	} else {
		s = fmt.Sprintf("%d rows", view.LoadedRows)
	}
	if view.Limited {
		s += fmt.Sprintf(" (showing the first %d rows)", limit)
	}
	return s
}

func resultSummary(rs *core.ResultSet) string {
	s := fmt.Sprintf("%d rows in %d ms", rs.RowCount(), rs.QueryMS)
	if rs.Truncated {
		s += " (truncated)"
	}
	return s + " "
}
