package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"chat-broker/internal/auth"
	"chat-broker/internal/broker"
	"chat-broker/internal/observability"
	"chat-broker/internal/repositories"
)

// PresenceHandler upgrades client connections into observer sessions and
// registers them with the presence registry.
type PresenceHandler struct {
	registry *broker.PresenceRegistry
	users    repositories.UserRepository
	verifier *auth.Verifier
}

// NewPresenceHandler constructs a PresenceHandler.
func NewPresenceHandler(registry *broker.PresenceRegistry, users repositories.UserRepository, verifier *auth.Verifier) *PresenceHandler {
	return &PresenceHandler{registry: registry, users: users, verifier: verifier}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates, upgrades, and registers presence for the caller. The
// read loop exists only to notice the disconnect and unregister.
func (h *PresenceHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("chat-broker/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		if query := c.Query("token"); query != "" {
			token = "Bearer " + query
		}
	}
	username, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	exists, err := h.users.Exists(c.Request.Context(), username)
	if err != nil || !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	session := NewSession(username, conn)
	connectedAt := time.Now()
	h.registry.Register(username, session)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(ctx, "broker_events.presence", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload: map[string]any{
			"session_id": session.ID,
			"user":       username,
			"ip":         clientIP(c.Request),
			"trace_id":   span.SpanContext().TraceID().String(),
		},
	})

	go func() {
		var closeReason string
		defer func() {
			h.registry.UnregisterObserver(username, session)
			session.Close()
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			_ = observability.PublishEvent(ctx, "broker_events.presence", observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload: map[string]any{
					"session_id":  session.ID,
					"user":        username,
					"duration_ms": time.Since(connectedAt).Milliseconds(),
					"reason":      closeReason,
				},
			})
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
				}
				return
			}
		}
	}()
}

func (h *PresenceHandler) validateToken(header string) (string, error) {
	parts := splitBearer(header)
	if parts == "" {
		return "", errInvalidToken
	}
	return h.verifier.ValidateToken(parts)
}
