package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanankenbruck/sql-copilot/internal/errors"
)

func demoInfo() Info {
	return Info{
		"flight": {
			Columns: []string{"id", "origin_airport_id", "price"},
			Types:   []string{"INTEGER", "INTEGER", "REAL"},
		},
		"airport": {
			Columns: []string{"id", "name", "code"},
			Types:   []string{"INTEGER", "TEXT", "TEXT"},
		},
		"booking": {
			Columns: []string{"id", "passenger_id", "status"},
			Types:   []string{"INTEGER", "INTEGER", "TEXT"},
		},
	}
}

// TestNewStaticCatalog tests static catalog construction
func TestNewStaticCatalog(t *testing.T) {
	catalog := NewStaticCatalog(demoInfo())

	require.NotNil(t, catalog)
	assert.Equal(t, 3, catalog.Len())

	table, ok := catalog.Table("flight")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "origin_airport_id", "price"}, table.Columns)

	_, ok = catalog.Table("cargo")
	assert.False(t, ok)
}

// TestTablesSorted verifies deterministic table ordering
func TestTablesSorted(t *testing.T) {
	catalog := NewStaticCatalog(demoInfo())

	assert.Equal(t, []string{"airport", "booking", "flight"}, catalog.Tables())
}

// TestDescribe tests the prompt-ready schema rendering
func TestDescribe(t *testing.T) {
	catalog := NewStaticCatalog(Info{
		"airport": {Columns: []string{"id", "name", "code"}},
	})

	want := "Database Schema:\nTable 'airport': id, name, code"
	assert.Equal(t, want, catalog.Describe())
}

// TestBuildStatic tests building from static configuration
func TestBuildStatic(t *testing.T) {
	catalog, err := Build(BuildConfig{Static: demoInfo()})

	require.NoError(t, err)
	assert.Equal(t, 3, catalog.Len())
}

// TestBuildDynamicWithoutDSN tests the configuration error path
func TestBuildDynamicWithoutDSN(t *testing.T) {
	_, err := Build(BuildConfig{Dynamic: true, Driver: "sqlite"})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfiguration, errors.Code(err))
}

// TestCorrect tests fuzzy term correction
func TestCorrect(t *testing.T) {
	catalog := NewStaticCatalog(demoInfo())

	tests := []struct {
		name       string
		term       string
		candidates []string
		want       string
	}{
		{
			name:       "plural corrected to singular",
			term:       "flights",
			candidates: []string{"flight", "airport"},
			want:       "flight",
		},
		{
			name:       "exact match returns candidate casing",
			term:       "Airport",
			candidates: []string{"airport"},
			want:       "airport",
		},
		{
			name:       "distance one on six letters clears threshold",
			term:       "orders",
			candidates: []string{"order", "product"},
			want:       "order",
		},
		{
			name:       "unrelated term unchanged",
			term:       "weather",
			candidates: []string{"flight", "airport"},
			want:       "weather",
		},
		{
			name:       "empty candidates unchanged",
			term:       "flights",
			candidates: nil,
			want:       "flights",
		},
		{
			name:       "short term below threshold unchanged",
			term:       "cat",
			candidates: []string{"car"},
			want:       "cat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.Correct(tt.term, tt.candidates))
		})
	}
}

// TestSimilarity tests the distance-to-ratio conversion
func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("flight", "flight"))
	assert.Equal(t, 1.0, similarity("", ""))
	assert.InDelta(t, 0.8333, similarity("orders", "order"), 0.001)
	assert.Less(t, similarity("cat", "car"), 0.8)
}
