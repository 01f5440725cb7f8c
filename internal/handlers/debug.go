package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-broker/internal/auth"
	"chat-broker/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, verifier *auth.Verifier, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), telemetry.AuditRecord{
			Level:     "INFO",
			Text:      "audit test",
			RequestID: requestIDFromContext(c),
			Username:  usernameFromContext(c),
		})
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Issues a token for manual testing against a local stack.
	router.POST("/debug/token", func(c *gin.Context) {
		username := c.Query("username")
		if username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username required"})
			return
		}
		token, err := verifier.GenerateToken(username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})
}
