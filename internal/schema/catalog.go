// Package schema holds the table catalog the query lifecycle works against,
// either from static configuration or from live database introspection.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/seanankenbruck/sql-copilot/internal/errors"
)

// correctionThreshold is the minimum similarity ratio for fuzzy term correction
const correctionThreshold = 0.8

// Table describes one table: column names and their declared types,
// index-aligned and in table-definition order.
type Table struct {
	Columns []string `json:"columns"`
	Types   []string `json:"types"`
}

// Info maps table names to their definitions
type Info map[string]Table

// Catalog is an immutable snapshot of the known tables for one session
type Catalog struct {
	tables Info
}

// BuildConfig controls how a catalog is constructed
type BuildConfig struct {
	// Static holds the fallback schema used when Dynamic is false
	Static Info
	// Driver and DSN locate the database for dynamic introspection
	Driver string
	DSN    string
	// Dynamic enables live introspection instead of the static schema
	Dynamic bool
}

// Build constructs a catalog from static configuration or by introspecting
// the configured database. Dynamic introspection without a database locator
// is a configuration error.
func Build(cfg BuildConfig) (*Catalog, error) {
	if !cfg.Dynamic {
		return NewStaticCatalog(cfg.Static), nil
	}
	if cfg.DSN == "" {
		return nil, errors.NewConfigurationError("dynamic schema introspection requires a database locator")
	}
	return Introspect(cfg.Driver, cfg.DSN)
}

// NewStaticCatalog builds a catalog from a static table map
func NewStaticCatalog(info Info) *Catalog {
	tables := make(Info, len(info))
	for name, table := range info {
		tables[name] = table
	}
	return &Catalog{tables: tables}
}

// Tables returns the table names in sorted order
func (c *Catalog) Tables() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table looks up a table definition by name
func (c *Catalog) Table(name string) (Table, bool) {
	table, ok := c.tables[name]
	return table, ok
}

// Len returns the number of known tables
func (c *Catalog) Len() int {
	return len(c.tables)
}

// Describe renders the catalog as prompt-ready schema lines
func (c *Catalog) Describe() string {
	lines := []string{"Database Schema:"}
	for _, name := range c.Tables() {
		table := c.tables[name]
		lines = append(lines, fmt.Sprintf("Table '%s': %s", name, strings.Join(table.Columns, ", ")))
	}
	return strings.Join(lines, "\n")
}

// Correct fuzzy-matches term against candidates, case-insensitively, and
// returns the best candidate in its original casing when the similarity
// ratio clears the threshold. Ties go to the first candidate in iteration
// order; below the threshold the input term is returned unchanged.
func (c *Catalog) Correct(term string, candidates []string) string {
	lowered := strings.ToLower(term)

	best := term
	bestRatio := 0.0
	for _, candidate := range candidates {
		ratio := similarity(lowered, strings.ToLower(candidate))
		if ratio >= correctionThreshold && ratio > bestRatio {
			best = candidate
			bestRatio = ratio
		}
	}
	return best
}

// similarity converts Levenshtein distance into a 0..1 closeness ratio
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1.0
	}
	distance := fuzzy.LevenshteinDistance(a, b)
	return 1.0 - float64(distance)/float64(longest)
}
