package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-broker/internal/broker"
	"chat-broker/internal/repositories"
	"chat-broker/internal/telemetry"
)

// GroupHandler manages group lifecycle and group-message endpoints.
type GroupHandler struct {
	lifecycle  *broker.LifecycleCoordinator
	router     *broker.MessageRouter
	membership *broker.MembershipStore
	groups     repositories.GroupRepository
	messages   repositories.MessageRepository
	audit      *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(lifecycle *broker.LifecycleCoordinator, router *broker.MessageRouter, membership *broker.MembershipStore, groups repositories.GroupRepository, messages repositories.MessageRepository, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{
		lifecycle:  lifecycle,
		router:     router,
		membership: membership,
		groups:     groups,
		messages:   messages,
		audit:      audit,
	}
}

// CreateGroup handles POST /groups.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	creator := c.GetString("username")

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.lifecycle.CreateGroup(c.Request.Context(), req.Name, req.Description, creator)
	if err != nil {
		h.emitAudit(c, "ERROR", "group creation rejected")
		respondBrokerError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group created")
	c.JSON(http.StatusCreated, group)
}

// JoinGroup handles POST /groups/:group/members. The body may name a user to
// add; it defaults to the caller.
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	groupName := c.Param("group")

	var req struct {
		Username string `json:"username"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	username := req.Username
	if username == "" {
		username = c.GetString("username")
	}

	if err := h.lifecycle.Join(c.Request.Context(), groupName, username); err != nil {
		h.emitAudit(c, "ERROR", "group join rejected")
		respondBrokerError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "User joined group")
	c.JSON(http.StatusOK, gin.H{"joined": true})
}

// LeaveGroup handles DELETE /groups/:group/members/:username. A plain member
// may remove themselves; removing the creator is always rejected.
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	groupName := c.Param("group")
	username := c.Param("username")
	if username == "me" {
		username = c.GetString("username")
	}

	if err := h.lifecycle.Leave(c.Request.Context(), groupName, username); err != nil {
		h.emitAudit(c, "ERROR", "group leave rejected")
		respondBrokerError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "User left group")
	c.JSON(http.StatusOK, gin.H{"left": true})
}

// ListGroups handles GET /groups and returns the caller's groups.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	username := c.GetString("username")
	groups, err := h.membership.GroupsFor(c.Request.Context(), username)
	if err != nil {
		respondBrokerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// ListAllGroups handles GET /groups/all for discovery.
func (h *GroupHandler) ListAllGroups(c *gin.Context) {
	groups, err := h.groups.AllGroups(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load groups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// PostGroupMessage handles POST /groups/:group/messages.
func (h *GroupHandler) PostGroupMessage(c *gin.Context) {
	groupName := c.Param("group")
	sender := c.GetString("username")

	var req struct {
		Content string `json:"content" binding:"required,max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.router.SendGroup(c.Request.Context(), sender, groupName, req.Content)
	if err != nil {
		h.emitAudit(c, "ERROR", "group message rejected")
		respondBrokerError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group message sent")
	c.JSON(http.StatusCreated, msg)
}

// GetGroupMessages handles GET /groups/:group/messages. Only members may
// read a group's history.
func (h *GroupHandler) GetGroupMessages(c *gin.Context) {
	groupName := c.Param("group")
	username := c.GetString("username")

	member, err := h.membership.IsMember(c.Request.Context(), groupName, username)
	if err != nil {
		respondBrokerError(c, err)
		return
	}
	if !member {
		h.emitAudit(c, "ERROR", "not a member")
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return
	}

	msgs, err := h.messages.ListGroupMessages(c.Request.Context(), groupName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *GroupHandler) emitAudit(c *gin.Context, level, text string) {
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
