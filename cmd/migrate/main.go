package main

import (
	"fmt"
	"log"
	"os"

	"github.com/seanankenbruck/sql-copilot/internal/database"
)

func main() {
	config := database.MigrationConfig{
		Driver:         getEnv("DB_DRIVER", "sqlite"),
		DSN:            getEnv("DB_DSN", "example.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
	}

	fmt.Println("=== Running Database Migrations ===")
	fmt.Printf("Driver: %s, DSN: %s\n", config.Driver, config.DSN)

	if err := database.RunMigrations(config); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if err := database.VerifyDatabase(config.Driver, config.DSN); err != nil {
		log.Fatalf("Database verification failed: %v", err)
	}

	fmt.Println("✓ Database migrations completed successfully!")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
