package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin allows only operator accounts through. Requires JWT
// middleware to run before this; the operator list comes from config.
func RequireAdmin(adminIDs []int64) gin.HandlerFunc {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID, ok := userIDVal.(int64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
			return
		}

		if _, ok := admins[userID]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operator access required"})
			return
		}

		c.Next()
	}
}
