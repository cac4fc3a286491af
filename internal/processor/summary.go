package processor

import (
	"fmt"

	"github.com/seanankenbruck/sql-copilot/internal/executor"
)

// ResultSummary carries a display hint and a short human-readable
// description of a query result, so UI clients can pick a rendering
// without inspecting the rows themselves.
type ResultSummary struct {
	DisplayHint string `json:"display_hint"`
	Text        string `json:"text"`
}

// Display hints
const (
	DisplayEmpty = "empty"
	DisplayStat  = "stat"
	DisplayTable = "table"
)

// Summarize classifies a query result for display. A single-cell result is
// a stat, no rows is empty, anything else is a table.
func Summarize(result *executor.QueryResult) *ResultSummary {
	if result == nil || len(result.Rows) == 0 {
		return &ResultSummary{
			DisplayHint: DisplayEmpty,
			Text:        "The query returned no rows.",
		}
	}

	if len(result.Rows) == 1 && len(result.Columns) == 1 {
		return &ResultSummary{
			DisplayHint: DisplayStat,
			Text:        fmt.Sprintf("%s: %v", result.Columns[0], result.Rows[0][0]),
		}
	}

	return &ResultSummary{
		DisplayHint: DisplayTable,
		Text:        fmt.Sprintf("%d rows across %d columns.", len(result.Rows), len(result.Columns)),
	}
}
