// Package config holds the explicit configuration object for the service.
// Defaults come from the environment; secrets go through the provider chain.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/seanankenbruck/sql-copilot/internal/schema"
)

// Config holds all application configuration
type Config struct {
	// Database configuration (execution target + dynamic schema source)
	Database DatabaseConfig

	// Redis configuration (conversation store + sessions)
	Redis RedisConfig

	// Gemini LLM configuration
	Gemini GeminiConfig

	// Authentication configuration
	Auth AuthConfig

	// Server configuration
	Server ServerConfig

	// Query lifecycle configuration
	Query QueryConfig
}

// DatabaseConfig locates the relational database
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres"
	Driver string
	// DSN is the driver-specific locator (file path for sqlite)
	DSN string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// AuthConfig holds authentication and authorization configuration
type AuthConfig struct {
	JWTSecret      string
	JWTExpiry      time.Duration
	SessionExpiry  time.Duration
	RateLimit      int
	AllowAnonymous bool
	DailyQuota     int
	MonthlyQuota   int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port    string
	GinMode string
}

// QueryConfig holds query lifecycle defaults
type QueryConfig struct {
	// ExecuteSQL enables running generated SQL; when false results are simulated
	ExecuteSQL bool
	// ReadOnly rejects destructive statements at the executor
	ReadOnly bool
	// UseDynamicSchema introspects the database instead of using StaticSchema
	UseDynamicSchema bool
	// AllowUnsafeOverride lets a request turn read-only mode off.
	// Disabling the guard per request is security relevant; default off.
	AllowUnsafeOverride bool
	// StaticSchema is the fallback catalog when dynamic discovery is off
	StaticSchema schema.Info
}

// DefaultStaticSchema is the demo airline schema used when no dynamic
// database is configured
var DefaultStaticSchema = schema.Info{
	"airplane": {
		Columns: []string{"id", "model", "capacity", "manufacturer", "year"},
		Types:   []string{"INTEGER", "TEXT", "INTEGER", "TEXT", "INTEGER"},
	},
	"flight": {
		Columns: []string{"id", "airplane_id", "origin_airport_id", "destination_airport_id", "departure_time", "arrival_time", "price"},
		Types:   []string{"INTEGER", "INTEGER", "INTEGER", "INTEGER", "TEXT", "TEXT", "REAL"},
	},
	"airport": {
		Columns: []string{"id", "name", "city", "country", "code"},
		Types:   []string{"INTEGER", "TEXT", "TEXT", "TEXT", "TEXT"},
	},
	"passenger": {
		Columns: []string{"id", "first_name", "last_name", "email", "phone"},
		Types:   []string{"INTEGER", "TEXT", "TEXT", "TEXT", "TEXT"},
	},
	"booking": {
		Columns: []string{"id", "passenger_id", "flight_id", "booking_date", "seat_number", "status"},
		Types:   []string{"INTEGER", "INTEGER", "INTEGER", "TEXT", "TEXT", "TEXT"},
	},
}

// Load builds a Config from the environment, resolving secrets through the
// provider chain (env vars first, then mounted secret files).
func Load(ctx context.Context) (*Config, error) {
	secrets := NewChainProvider(
		NewEnvProvider(),
		NewFileProvider(getEnv("SECRETS_PATH", "/var/secrets")),
	)

	apiKey, _ := secrets.GetSecret(ctx, "GEMINI_API_KEY")
	jwtSecret, _ := secrets.GetSecret(ctx, "JWT_SECRET")

	cfg := &Config{
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			DSN:    getEnv("DB_DSN", "example.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Gemini: GeminiConfig{
			APIKey:  apiKey,
			Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:      jwtSecret,
			JWTExpiry:      getEnvDuration("JWT_EXPIRY", 24*time.Hour),
			SessionExpiry:  getEnvDuration("SESSION_EXPIRY", 7*24*time.Hour),
			RateLimit:      getEnvInt("RATE_LIMIT", 100),
			AllowAnonymous: getEnvBool("ALLOW_ANONYMOUS", true),
			DailyQuota:     getEnvInt("DAILY_QUERY_QUOTA", 0),
			MonthlyQuota:   getEnvInt("MONTHLY_QUERY_QUOTA", 0),
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "release"),
		},
		Query: QueryConfig{
			ExecuteSQL:          getEnvBool("EXECUTE_SQL", true),
			ReadOnly:            getEnvBool("READ_ONLY", true),
			UseDynamicSchema:    getEnvBool("USE_DYNAMIC_SCHEMA", true),
			AllowUnsafeOverride: getEnvBool("QUERY_ALLOW_UNSAFE_OVERRIDE", false),
			StaticSchema:        DefaultStaticSchema,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies that would only
// surface mid-request otherwise
func (c *Config) Validate() error {
	if c.Query.UseDynamicSchema && c.Database.DSN == "" {
		return fmt.Errorf("USE_DYNAMIC_SCHEMA requires DB_DSN to be set")
	}
	if c.Query.ExecuteSQL && c.Database.DSN == "" {
		return fmt.Errorf("EXECUTE_SQL requires DB_DSN to be set")
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported DB_DRIVER %q (want sqlite or postgres)", c.Database.Driver)
	}
	if !c.Query.UseDynamicSchema && len(c.Query.StaticSchema) == 0 {
		return fmt.Errorf("static schema mode requires a non-empty schema")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
