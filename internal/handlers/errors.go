package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-broker/internal/broker"
)

// respondBrokerError maps the broker's error taxonomy onto HTTP statuses.
func respondBrokerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, broker.ErrUnknownUser), errors.Is(err, broker.ErrUnknownGroup):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, broker.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, broker.ErrGroupExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
