package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/logger"
)

const (
	UserAPIKeyHeader = "wrdo-api-key"

	ContextKeyUserId    = "UserId"
	ContextKeyUserEmail = "UserEmail"
)

// UserAPIKeyMiddleware authenticates a user by personal API key and stores the user id and
// email on the gin context for CustomContextMiddleware.
func UserAPIKeyMiddleware(users interfaces.UserRepository, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := strings.TrimSpace(c.GetHeader(UserAPIKeyHeader))
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, err := users.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			log.Errorf("API key lookup failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if user == nil || user.ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}
		if !user.IsActive() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		c.Set(ContextKeyUserId, user.ID)
		c.Set(ContextKeyUserEmail, user.Email)
		c.Next()
	}
}
