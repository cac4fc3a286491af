package processor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seanankenbruck/sql-copilot/internal/errors"
	"github.com/seanankenbruck/sql-copilot/internal/observability"
)

// AuthMiddleware is an interface for authentication middleware
type AuthMiddleware interface {
	Middleware() gin.HandlerFunc
}

// SetupRoutes configures HTTP routes with optional authentication
func (p *Processor) SetupRoutes(authMiddleware AuthMiddleware) *gin.Engine {
	r := gin.New()

	r.Use(observability.RecoveryMiddleware(p.logger))
	r.Use(observability.RequestLoggingMiddleware(p.logger))
	r.Use(observability.MetricsEndpointMiddleware(observability.GetGlobalMetrics()))

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Public health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if p.healthChecker != nil {
			response := p.healthChecker.GetHealthResponse(c.Request.Context())
			statusCode := http.StatusOK
			if response.Status == observability.HealthStatusUnhealthy {
				statusCode = http.StatusServiceUnavailable
			}
			c.JSON(statusCode, response)
		} else {
			c.JSON(http.StatusOK, gin.H{
				"status":  "healthy",
				"version": "1.0.0",
				"service": "sql-copilot",
			})
		}
	})

	// Protected API routes (require authentication)
	api := r.Group("/api/v1")
	if authMiddleware != nil {
		api.Use(authMiddleware.Middleware())
	}
	{
		// Main query endpoint
		api.POST("/query", func(c *gin.Context) {
			var req QueryRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				enhancedErr := errors.NewInvalidInputError("request body", err.Error())
				c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
				return
			}

			c.JSON(http.StatusOK, p.ProcessQuery(c.Request.Context(), &req))
		})

		// Conversational refinement of the previous query
		api.POST("/refine", func(c *gin.Context) {
			var req RefineRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				enhancedErr := errors.NewInvalidInputError("request body", err.Error())
				c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
				return
			}

			response := p.RefineQuery(c.Request.Context(), &req)
			if response.SQL == nil {
				// Nothing on record to refine
				c.JSON(http.StatusBadRequest, response)
				return
			}

			c.JSON(http.StatusOK, response)
		})

		// Schema description endpoint
		api.GET("/schema", p.handleGetSchema)

		// Conversation history endpoint
		api.GET("/history", p.handleGetHistory)
	}

	return r
}

func (p *Processor) handleGetSchema(c *gin.Context) {
	tables := make(map[string][]string)
	for _, name := range p.catalog.Tables() {
		table, _ := p.catalog.Table(name)
		tables[name] = table.Columns
	}

	c.JSON(http.StatusOK, gin.H{
		"tables":      tables,
		"description": p.catalog.Describe(),
	})
}

func (p *Processor) handleGetHistory(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		enhancedErr := errors.NewMissingFieldError("user_id")
		c.JSON(http.StatusBadRequest, formatErrorResponse(enhancedErr))
		return
	}

	turns := p.store.Get(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"turns":   turns,
		"count":   len(turns),
	})
}

// formatErrorResponse formats an error into a user-friendly response
func formatErrorResponse(err error) gin.H {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		response := gin.H{
			"error": gin.H{
				"code":    enhancedErr.Code,
				"message": enhancedErr.Message,
			},
		}

		if enhancedErr.Details != "" {
			response["error"].(gin.H)["details"] = enhancedErr.Details
		}

		if enhancedErr.Suggestion != "" {
			response["error"].(gin.H)["suggestion"] = enhancedErr.Suggestion
		}

		if len(enhancedErr.Metadata) > 0 {
			response["error"].(gin.H)["metadata"] = enhancedErr.Metadata
		}

		return response
	}

	return gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	}
}
