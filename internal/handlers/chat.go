package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-broker/internal/broker"
	"chat-broker/internal/repositories"
	"chat-broker/internal/telemetry"
)

// ChatHandler manages direct-message endpoints and the online-users view.
type ChatHandler struct {
	router   *broker.MessageRouter
	presence *broker.PresenceRegistry
	messages repositories.MessageRepository
	audit    *telemetry.AuditEmitter
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(router *broker.MessageRouter, presence *broker.PresenceRegistry, messages repositories.MessageRepository, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{router: router, presence: presence, messages: messages, audit: audit}
}

// SendDirectMessage handles POST /messages/direct.
func (h *ChatHandler) SendDirectMessage(c *gin.Context) {
	sender := c.GetString("username")

	var req struct {
		Receiver string `json:"receiver" binding:"required"`
		Content  string `json:"content" binding:"required,max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.router.SendDirect(c.Request.Context(), sender, req.Receiver, req.Content)
	if err != nil {
		h.emitAudit(c, "ERROR", "direct message rejected")
		respondBrokerError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Direct message sent")
	c.JSON(http.StatusCreated, msg)
}

// GetDirectMessages handles GET /messages/:peer and returns the conversation
// between the caller and the peer in sent-time order.
func (h *ChatHandler) GetDirectMessages(c *gin.Context) {
	username := c.GetString("username")
	peer := c.Param("peer")

	msgs, err := h.messages.ListMessagesBetween(c.Request.Context(), username, peer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// ListOnlineUsers handles GET /online.
func (h *ChatHandler) ListOnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": h.presence.ListOnline()})
}

func (h *ChatHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), telemetry.AuditRecord{
		Level:     level,
		Text:      text,
		RequestID: requestIDFromContext(c),
		Username:  usernameFromContext(c),
	})
}
