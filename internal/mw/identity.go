package mw

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// userKey is the gin context key the identity middleware stores the user under.
const userKey = "currentUser"

// Identity reads the stable user identifier the external identity service
// injects into the given trusted header. The core never authenticates; it
// only consumes "current user id, or none".
func Identity(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(userKey, c.GetHeader(header))
		c.Next()
	}
}

// RequireUser aborts with 401 when no user identity is present. Applied to
// routes that act on a user's behalf.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user identity required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity set by the Identity middleware, or "".
func CurrentUser(c *gin.Context) string {
	return c.GetString(userKey)
}
