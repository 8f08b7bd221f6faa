package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"travel-service/internal/observability"
	"travel-service/internal/repositories"
)

// TokenValidator establishes the caller's identity before the upgrade, using
// the same bearer-token scheme as the REST middleware.
type TokenValidator interface {
	ValidateToken(token string) (int64, error)
}

// GatewayHandler upgrades client connections and registers them with the hub.
// A connection reaches the registry only after identity is established;
// unauthenticated sockets are rejected before the upgrade.
type GatewayHandler struct {
	hub       *Hub
	groupRepo repositories.GroupRepository
	auth      TokenValidator
}

// NewGatewayHandler constructs a GatewayHandler.
func NewGatewayHandler(hub *Hub, groupRepo repositories.GroupRepository, auth TokenValidator) *GatewayHandler {
	return &GatewayHandler{hub: hub, groupRepo: groupRepo, auth: auth}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle runs the handshake: authenticate, upgrade, register, join the rooms
// of every group the user belongs to, then hold the read loop until close.
func (h *GatewayHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("travel-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	groupIDs, err := h.groupRepo.ListGroupIDsForUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load memberships"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.Register(conn, info)
	for _, groupID := range groupIDs {
		h.hub.JoinGroup(groupID, conn)
	}

	observability.IncWSActive("user")
	observability.IncWSEvent("user", "ws_connect")

	// Keep connection alive and clean on close
	go func() {
		defer func() {
			h.hub.Unregister(conn)
			observability.DecWSActive("user")
			observability.IncWSEvent("user", "ws_disconnect")
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("user", "ws_error")
				}
				return
			}
		}
	}()
}

func (h *GatewayHandler) validateToken(header string) (int64, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return h.auth.ValidateToken(parts[1])
	}
	return 0, ErrUnauthenticated
}
