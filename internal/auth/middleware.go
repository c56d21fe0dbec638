package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ownerKey = "owner"

// RequireOwner enforces bearer tokens and stores the caller's owner id on the
// context.
func RequireOwner(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		id, err := v.Verify(c.Request.Context(), tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ownerKey, id.Owner)
		c.Next()
	}
}

// Owner returns the owner id set by RequireOwner.
func Owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}
