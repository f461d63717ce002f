package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	roleAdmin = "admin"
)

// AdminRequired ensures the user has the admin role. Catalog management
// routes (song creation, seed reloads) sit behind it.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetCurrentUser(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if user.Role != roleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
