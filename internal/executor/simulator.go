package executor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/seanankenbruck/sql-copilot/internal/schema"
)

// selectPattern pulls the column list and table name out of a SELECT
var selectPattern = regexp.MustCompile(`(?i)select\s+(.*?)\s+from\s+(\w+)`)

// simulatedRowCount is the fixed number of fabricated rows
const simulatedRowCount = 2

// Simulator fabricates a plausible result shape from the SELECT clause
// when execution is disabled. It is a deterministic fixture generator and
// never touches a data store.
type Simulator struct {
	catalog *schema.Catalog
}

// NewSimulator creates a simulator over the given catalog
func NewSimulator(catalog *schema.Catalog) *Simulator {
	return &Simulator{catalog: catalog}
}

// Simulate parses the statement for `select <columns> from <table>` and
// returns two fabricated rows for the selected columns. A wildcard expands
// to the table's full column list (empty for unknown tables); statements
// that do not parse yield an empty result.
func (s *Simulator) Simulate(sqlText string) *QueryResult {
	match := selectPattern.FindStringSubmatch(sqlText)
	if match == nil {
		return &QueryResult{Columns: []string{}, Rows: [][]interface{}{}}
	}

	columnsText := strings.TrimSpace(match[1])
	tableName := strings.ToLower(strings.TrimSpace(match[2]))

	var columns []string
	if columnsText == "*" {
		if table, ok := s.catalog.Table(tableName); ok {
			columns = table.Columns
		}
	} else {
		for _, column := range strings.Split(columnsText, ",") {
			columns = append(columns, strings.TrimSpace(column))
		}
	}
	if columns == nil {
		columns = []string{}
	}

	rows := make([][]interface{}, 0, simulatedRowCount)
	for r := 0; r < simulatedRowCount; r++ {
		row := make([]interface{}, 0, len(columns))
		for _, column := range columns {
			if strings.Contains(strings.ToLower(column), "id") {
				row = append(row, r+1)
			} else {
				row = append(row, fmt.Sprintf("dummy_%s_%d", column, r+1))
			}
		}
		rows = append(rows, row)
	}

	return &QueryResult{Columns: columns, Rows: rows}
}
