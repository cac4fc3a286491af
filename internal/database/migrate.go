// Package database runs schema migrations for the demo database.
package database

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// MigrationConfig holds migration configuration
type MigrationConfig struct {
	Driver         string // "sqlite" or "postgres"
	DSN            string
	MigrationsPath string
}

// RunMigrations applies all pending migrations for the configured driver
func RunMigrations(config MigrationConfig) error {
	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	m, err := newMigrator(config, db)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func newMigrator(config MigrationConfig, db *sql.DB) (*migrate.Migrate, error) {
	sourceURL := fmt.Sprintf("file://%s", config.MigrationsPath)

	switch config.Driver {
	case "sqlite":
		driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite migration driver: %w", err)
		}
		m, err := migrate.NewWithDatabaseInstance(sourceURL, "sqlite", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create migrate instance: %w", err)
		}
		return m, nil
	case "postgres":
		driver, err := migratepg.WithInstance(db, &migratepg.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres migration driver: %w", err)
		}
		m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create migrate instance: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", config.Driver)
	}
}

// VerifyDatabase checks the database is reachable and the demo tables exist
func VerifyDatabase(driver, dsn string) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM flight").Scan(&count); err != nil {
		return fmt.Errorf("failed to query flight table: %w", err)
	}

	return nil
}
