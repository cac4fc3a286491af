package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seanankenbruck/sql-copilot/internal/errors"
)

// Middleware returns a Gin middleware for authentication
func (am *AuthManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if shouldSkipAuth(path) {
			c.Next()
			return
		}

		clientID := getClientID(c)
		if !CheckRateLimit(clientID, am.config.RateLimit) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			c.Abort()
			return
		}

		user, err := am.authenticateRequest(c)
		if err != nil {
			if am.config.AllowAnonymous && isPublicEndpoint(path) {
				c.Next()
				return
			}

			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			c.Abort()
			return
		}

		// Model-backed endpoints consume one unit of the user's quota
		if consumesQuota(c.Request.Method, path) {
			if err := am.quotas.Consume(user.ID); err != nil {
				if enhanced, ok := err.(*errors.EnhancedError); ok {
					c.JSON(http.StatusTooManyRequests, gin.H{
						"error": gin.H{
							"code":    enhanced.Code,
							"message": enhanced.Message,
						},
					})
				} else {
					c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
				}
				c.Abort()
				return
			}
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("roles", user.Roles)

		c.Next()
	}
}

// RequireRole returns a middleware that checks if user has a required role
func (am *AuthManager) RequireRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetCurrentUser(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			c.Abort()
			return
		}

		hasRole := false
		for _, required := range requiredRoles {
			for _, userRole := range user.Roles {
				if userRole == required {
					hasRole = true
					break
				}
			}
			if hasRole {
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// authenticateRequest tries multiple authentication methods
func (am *AuthManager) authenticateRequest(c *gin.Context) (*User, error) {
	if user, err := am.authenticateJWT(c); err == nil {
		return user, nil
	}

	if user, err := am.authenticateAPIKey(c); err == nil {
		return user, nil
	}

	if user, err := am.authenticateSession(c); err == nil {
		return user, nil
	}

	return nil, http.ErrAbortHandler
}

// authenticateJWT authenticates using a Bearer token
func (am *AuthManager) authenticateJWT(c *gin.Context) (*User, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, http.ErrAbortHandler
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, http.ErrAbortHandler
	}

	claims, err := am.ValidateJWTToken(parts[1])
	if err != nil {
		return nil, err
	}

	return am.GetUser(claims.UserID)
}

// authenticateAPIKey authenticates using an API key
func (am *AuthManager) authenticateAPIKey(c *gin.Context) (*User, error) {
	apiKey := c.GetHeader("X-API-Key")
	if apiKey == "" {
		apiKey = c.Query("api_key")
	}

	if apiKey == "" {
		return nil, http.ErrAbortHandler
	}

	user, _, err := am.ValidateAPIKey(apiKey)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// authenticateSession authenticates using the session cookie
func (am *AuthManager) authenticateSession(c *gin.Context) (*User, error) {
	sessionID, err := c.Cookie("session_id")
	if err != nil {
		return nil, err
	}

	return am.ValidateSession(sessionID)
}

// shouldSkipAuth checks if a path should skip authentication
func shouldSkipAuth(path string) bool {
	skipPaths := []string{
		"/health",
		"/metrics",
		"/api/v1/auth/login",
		"/api/v1/auth/status",
		"/favicon.ico",
	}

	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}

	return false
}

// isPublicEndpoint checks if an endpoint allows anonymous access
func isPublicEndpoint(path string) bool {
	publicEndpoints := []string{
		"/api/v1/schema",
	}

	for _, publicPath := range publicEndpoints {
		if path == publicPath {
			return true
		}
	}

	return false
}

// consumesQuota reports whether a request triggers a model call
func consumesQuota(method, path string) bool {
	if method != http.MethodPost {
		return false
	}
	return path == "/api/v1/query" || path == "/api/v1/refine"
}

// getClientID gets a unique identifier for rate limiting
func getClientID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return "user:" + id
		}
	}

	if apiKey := c.GetHeader("X-API-Key"); apiKey != "" && len(apiKey) >= 8 {
		return "key:" + apiKey[:8]
	}

	return "ip:" + c.ClientIP()
}

// GetCurrentUser returns the current authenticated user from context
func GetCurrentUser(c *gin.Context) (*User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}

	user, ok := value.(*User)
	return user, ok
}

// GetCurrentUserID returns the current user ID from context
func GetCurrentUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return "", false
	}

	userID, ok := value.(string)
	return userID, ok
}
