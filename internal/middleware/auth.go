package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chat-broker/internal/auth"
)

// UsernameContextKey is where the authenticated username lands in the gin
// context.
const UsernameContextKey = "username"

// AuthMiddleware validates the Authorization header and stores the caller's
// username in the context.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		username, err := verifier.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(UsernameContextKey, username)
		c.Next()
	}
}
