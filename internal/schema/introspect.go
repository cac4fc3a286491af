package schema

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/seanankenbruck/sql-copilot/internal/errors"
)

// Introspect connects to the database and builds a catalog from its live
// table definitions. An empty database yields an empty catalog. The
// connection is opened for the duration of the scan only.
func Introspect(driver, dsn string) (*Catalog, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.NewSchemaIntrospectionError(err, dsn)
	}
	defer db.Close()

	var tables Info
	switch driver {
	case "sqlite":
		tables, err = introspectSQLite(db)
	case "postgres":
		tables, err = introspectPostgres(db)
	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unsupported database driver %q", driver))
	}
	if err != nil {
		return nil, errors.NewSchemaIntrospectionError(err, dsn)
	}

	return &Catalog{tables: tables}, nil
}

// introspectSQLite reads user tables from sqlite_master and their columns
// via PRAGMA table_info, which reports them in definition order.
func introspectSQLite(db *sql.DB) (Info, error) {
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tables := make(Info, len(names))
	for _, name := range names {
		columnRows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", name))
		if err != nil {
			return nil, fmt.Errorf("reading columns for %s: %w", name, err)
		}

		var table Table
		for columnRows.Next() {
			var (
				cid       int
				column    string
				declared  string
				notNull   int
				dfltValue sql.NullString
				pk        int
			)
			if err := columnRows.Scan(&cid, &column, &declared, &notNull, &dfltValue, &pk); err != nil {
				columnRows.Close()
				return nil, fmt.Errorf("scanning column for %s: %w", name, err)
			}
			table.Columns = append(table.Columns, column)
			table.Types = append(table.Types, declared)
		}
		if err := columnRows.Err(); err != nil {
			columnRows.Close()
			return nil, err
		}
		columnRows.Close()

		tables[name] = table
	}

	return tables, nil
}

// introspectPostgres reads public tables and their columns from
// information_schema, ordered by ordinal position.
func introspectPostgres(db *sql.DB) (Info, error) {
	rows, err := db.Query(`
		SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public'
		ORDER BY table_name, ordinal_position
	`)
	if err != nil {
		return nil, fmt.Errorf("listing columns: %w", err)
	}
	defer rows.Close()

	tables := make(Info)
	for rows.Next() {
		var tableName, column, dataType string
		if err := rows.Scan(&tableName, &column, &dataType); err != nil {
			return nil, fmt.Errorf("scanning column row: %w", err)
		}
		table := tables[tableName]
		table.Columns = append(table.Columns, column)
		table.Types = append(table.Types, dataType)
		tables[tableName] = table
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tables, nil
}
