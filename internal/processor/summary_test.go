package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seanankenbruck/sql-copilot/internal/executor"
)

// TestSummarize tests result classification for display
func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		result   *executor.QueryResult
		wantHint string
	}{
		{
			name:     "nil result is empty",
			result:   nil,
			wantHint: DisplayEmpty,
		},
		{
			name:     "no rows is empty",
			result:   &executor.QueryResult{Columns: []string{"code"}, Rows: [][]interface{}{}},
			wantHint: DisplayEmpty,
		},
		{
			name: "single cell is a stat",
			result: &executor.QueryResult{
				Columns: []string{"count"},
				Rows:    [][]interface{}{{int64(42)}},
			},
			wantHint: DisplayStat,
		},
		{
			name: "single row with many columns is a table",
			result: &executor.QueryResult{
				Columns: []string{"id", "code"},
				Rows:    [][]interface{}{{int64(1), "JFK"}},
			},
			wantHint: DisplayTable,
		},
		{
			name: "many rows is a table",
			result: &executor.QueryResult{
				Columns: []string{"code"},
				Rows:    [][]interface{}{{"JFK"}, {"LHR"}},
			},
			wantHint: DisplayTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Summarize(tt.result)

			assert.Equal(t, tt.wantHint, summary.DisplayHint)
			assert.NotEmpty(t, summary.Text)
		})
	}
}

// TestSummarizeStatText verifies the stat rendering includes the value
func TestSummarizeStatText(t *testing.T) {
	summary := Summarize(&executor.QueryResult{
		Columns: []string{"count"},
		Rows:    [][]interface{}{{int64(42)}},
	})

	assert.Equal(t, "count: 42", summary.Text)
}
