package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"

	"github.com/seanankenbruck/sql-copilot/internal/auth"
	"github.com/seanankenbruck/sql-copilot/internal/config"
	"github.com/seanankenbruck/sql-copilot/internal/conversation"
	"github.com/seanankenbruck/sql-copilot/internal/executor"
	"github.com/seanankenbruck/sql-copilot/internal/llm"
	"github.com/seanankenbruck/sql-copilot/internal/observability"
	"github.com/seanankenbruck/sql-copilot/internal/processor"
	"github.com/seanankenbruck/sql-copilot/internal/schema"
	"github.com/seanankenbruck/sql-copilot/internal/session"
	"github.com/seanankenbruck/sql-copilot/internal/sqlgen"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	gin.SetMode(cfg.Server.GinMode)

	// Redis backs both conversation history and sessions
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Schema catalog is built once at startup
	catalog, err := schema.Build(schema.BuildConfig{
		Static:  cfg.Query.StaticSchema,
		Driver:  cfg.Database.Driver,
		DSN:     cfg.Database.DSN,
		Dynamic: cfg.Query.UseDynamicSchema,
	})
	if err != nil {
		log.Fatal("Failed to build schema catalog:", err)
	}

	// Gemini client behind retry and a circuit breaker
	geminiClient, err := llm.NewGeminiClient(llm.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
	})
	if err != nil {
		log.Fatal("Failed to initialize LLM client:", err)
	}
	llmClient := llm.NewCircuitBreakerClient(geminiClient, "gemini", llm.DefaultCircuitBreakerConfig)

	store := conversation.NewRedisStore(rdb)

	guard := executor.NewKeywordGuard()
	exec := executor.NewExecutor(cfg.Database.Driver, cfg.Database.DSN, guard)

	qp := processor.New(
		catalog,
		sqlgen.NewTranslator(llmClient, catalog, cfg.Database.Driver),
		sqlgen.NewValidator(llmClient, catalog),
		sqlgen.NewRefiner(llmClient, catalog, cfg.Database.Driver),
		exec,
		store,
		processor.Defaults{
			ExecuteSQL:          cfg.Query.ExecuteSQL,
			ReadOnly:            cfg.Query.ReadOnly,
			AllowUnsafeOverride: cfg.Query.AllowUnsafeOverride,
		},
	)

	// Health checks
	healthChecker := observability.NewHealthChecker()
	healthChecker.Register("redis", observability.PingHealthCheck("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}))
	if cfg.Query.ExecuteSQL {
		healthChecker.Register("database", observability.PingHealthCheck("database", exec.Ping))
	}
	healthChecker.Register("llm", func(ctx context.Context) *observability.HealthCheck {
		state := llmClient.State()
		status := observability.HealthStatusHealthy
		if state == gobreaker.StateOpen {
			status = observability.HealthStatusDegraded
		}
		return &observability.HealthCheck{
			Name:    "llm",
			Status:  status,
			Message: "circuit breaker " + state.String(),
		}
	})
	qp.SetHealthChecker(healthChecker)

	// Auth manager with Redis-backed sessions
	sessionManager := session.NewManager(rdb, cfg.Auth.SessionExpiry)
	authManager := auth.NewAuthManager(auth.AuthConfig{
		JWTSecret:      cfg.Auth.JWTSecret,
		JWTExpiry:      cfg.Auth.JWTExpiry,
		SessionExpiry:  cfg.Auth.SessionExpiry,
		RateLimit:      cfg.Auth.RateLimit,
		AllowAnonymous: cfg.Auth.AllowAnonymous,
		DailyQuota:     cfg.Auth.DailyQuota,
		MonthlyQuota:   cfg.Auth.MonthlyQuota,
	}, sessionManager)

	// Expired API keys are swept hourly
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			authManager.CleanupExpired()
		}
	}()

	router := qp.SetupRoutes(authManager)

	authHandlers := auth.NewAuthHandlers(authManager)
	authHandlers.SetupRoutes(router.Group("/api/v1"))

	logger := observability.NewLogger("main")
	logger.Info(ctx, "SQL copilot starting", map[string]interface{}{
		"port":           cfg.Server.Port,
		"driver":         cfg.Database.Driver,
		"execute_sql":    cfg.Query.ExecuteSQL,
		"read_only":      cfg.Query.ReadOnly,
		"dynamic_schema": cfg.Query.UseDynamicSchema,
		"tables":         catalog.Len(),
	})

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error(ctx, "Failed to start server", err, nil)
		log.Fatal("Failed to start server:", err)
	}
}
