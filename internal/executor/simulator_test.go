package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanankenbruck/sql-copilot/internal/schema"
)

func simulatorCatalog() *schema.Catalog {
	return schema.NewStaticCatalog(schema.Info{
		"flight": {
			Columns: []string{"id", "origin_airport_id", "price"},
			Types:   []string{"INTEGER", "INTEGER", "REAL"},
		},
	})
}

// TestSimulateExplicitColumns tests fabrication for a named column list
func TestSimulateExplicitColumns(t *testing.T) {
	sim := NewSimulator(simulatorCatalog())

	result := sim.Simulate("SELECT name, price FROM flight")

	require.NotNil(t, result)
	assert.Equal(t, []string{"name", "price"}, result.Columns)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, []interface{}{"dummy_name_1", "dummy_price_1"}, result.Rows[0])
	assert.Equal(t, []interface{}{"dummy_name_2", "dummy_price_2"}, result.Rows[1])
}

// TestSimulateIDColumns verifies id-like columns get integer values
func TestSimulateIDColumns(t *testing.T) {
	sim := NewSimulator(simulatorCatalog())

	result := sim.Simulate("SELECT id, origin_airport_id, price FROM flight")

	require.Len(t, result.Rows, 2)
	assert.Equal(t, []interface{}{1, 1, "dummy_price_1"}, result.Rows[0])
	assert.Equal(t, []interface{}{2, 2, "dummy_price_2"}, result.Rows[1])
}

// TestSimulateWildcard tests expansion of * against the catalog
func TestSimulateWildcard(t *testing.T) {
	sim := NewSimulator(simulatorCatalog())

	result := sim.Simulate("SELECT * FROM flight")

	assert.Equal(t, []string{"id", "origin_airport_id", "price"}, result.Columns)
	require.Len(t, result.Rows, 2)
	assert.Len(t, result.Rows[0], 3)
}

// TestSimulateWildcardUnknownTable tests the empty-columns fallback
func TestSimulateWildcardUnknownTable(t *testing.T) {
	sim := NewSimulator(simulatorCatalog())

	result := sim.Simulate("SELECT * FROM cargo")

	assert.Empty(t, result.Columns)
	require.Len(t, result.Rows, 2)
	assert.Empty(t, result.Rows[0])
}

// TestSimulateCaseInsensitive tests lowercase statements
func TestSimulateCaseInsensitive(t *testing.T) {
	sim := NewSimulator(simulatorCatalog())

	result := sim.Simulate("select price from FLIGHT")

	assert.Equal(t, []string{"price"}, result.Columns)
	require.Len(t, result.Rows, 2)
}

// TestSimulateUnparseable tests statements the pattern cannot match
func TestSimulateUnparseable(t *testing.T) {
	sim := NewSimulator(simulatorCatalog())

	for _, sqlText := range []string{"", "PRAGMA table_info(flight)", "SELECT 1"} {
		result := sim.Simulate(sqlText)

		assert.Empty(t, result.Columns, sqlText)
		assert.Empty(t, result.Rows, sqlText)
	}
}

// TestSimulateRowShape verifies every row has exactly len(Columns) values
func TestSimulateRowShape(t *testing.T) {
	sim := NewSimulator(simulatorCatalog())

	result := sim.Simulate("SELECT id, price, origin_airport_id FROM flight WHERE price < 100")

	for _, row := range result.Rows {
		assert.Len(t, row, len(result.Columns))
	}
}
