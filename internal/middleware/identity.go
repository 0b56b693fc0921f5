package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userKey = "user"

// UserHeader names the header the authenticating proxy sets. The core
// never derives identity ambiently; every store call receives it
// explicitly from here.
const UserHeader = "X-User-ID"

// GetUser extracts the request's user identity.
func GetUser(c *gin.Context) string {
	u, _ := c.Get(userKey)
	s, _ := u.(string)
	return s
}

// Identity requires the user header and stores it on the context.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetHeader(UserHeader)
		if user == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserHeader + " header"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}
