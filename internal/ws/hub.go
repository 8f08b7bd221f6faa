package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"travel-service/internal/models"
	"travel-service/internal/observability"
)

// Hub is the registry of live websocket connections: user id -> connections
// (multi-tab/device) and group id -> room members. The REST rows remain the
// source of truth; everything pushed through the hub is best-effort.
type Hub struct {
	mu         sync.RWMutex
	userConns  map[int64]map[*websocket.Conn]ConnInfo
	groupRooms map[int64]map[*websocket.Conn]bool
	connGroups map[*websocket.Conn]map[int64]bool
	connUser   map[*websocket.Conn]int64
	logger     *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		userConns:  make(map[int64]map[*websocket.Conn]ConnInfo),
		groupRooms: make(map[int64]map[*websocket.Conn]bool),
		connGroups: make(map[*websocket.Conn]map[int64]bool),
		connUser:   make(map[*websocket.Conn]int64),
		logger:     logger,
	}
}

// Register adds an authenticated connection to the user registry.
func (h *Hub) Register(conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userConns[info.UserID]; !ok {
		h.userConns[info.UserID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.userConns[info.UserID][conn] = info
	h.connUser[conn] = info.UserID
}

// JoinGroup adds the connection to a group room.
func (h *Hub) JoinGroup(groupID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.groupRooms[groupID]; !ok {
		h.groupRooms[groupID] = make(map[*websocket.Conn]bool)
	}
	h.groupRooms[groupID][conn] = true
	if _, ok := h.connGroups[conn]; !ok {
		h.connGroups[conn] = make(map[int64]bool)
	}
	h.connGroups[conn][groupID] = true
}

// LeaveGroup removes the connection from one room. Members removed from a
// group stop receiving broadcasts once their rooms converge; mid-flight
// delivery is not revoked.
func (h *Hub) LeaveGroup(groupID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoom(groupID, conn)
	if groups, ok := h.connGroups[conn]; ok {
		delete(groups, groupID)
	}
}

// Unregister removes the connection from the user registry and from every
// room it joined. Safe to call repeatedly and for connections that never
// finished the handshake.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userID, ok := h.connUser[conn]; ok {
		if conns, ok := h.userConns[userID]; ok {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(h.userConns, userID)
			}
		}
		delete(h.connUser, conn)
	}

	for groupID := range h.connGroups[conn] {
		h.removeFromRoom(groupID, conn)
	}
	delete(h.connGroups, conn)
}

// removeFromRoom must be called with the lock held.
func (h *Hub) removeFromRoom(groupID int64, conn *websocket.Conn) {
	if room, ok := h.groupRooms[groupID]; ok {
		delete(room, conn)
		if len(room) == 0 {
			delete(h.groupRooms, groupID)
		}
	}
}

// NotifyUser unicasts the event to every live connection of the user. A user
// with zero connections is a no-op, not an error: the durable row is the
// record and the client reconciles over REST on reconnect.
func (h *Hub) NotifyUser(userID int64, event models.WSEvent) error {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.userConns[userID]))
	for conn := range h.userConns[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	for _, conn := range conns {
		h.write(conn, event.Type, payload)
	}
	observability.IncWSEvent("user", event.Type)
	return nil
}

// BroadcastToGroup sends the event to every connection in the room, skipping
// connections owned by excludeUserID when it is non-zero.
func (h *Hub) BroadcastToGroup(groupID int64, event models.WSEvent, excludeUserID int64) error {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.groupRooms[groupID]))
	for conn := range h.groupRooms[groupID] {
		if excludeUserID != 0 && h.connUser[conn] == excludeUserID {
			continue
		}
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	for _, conn := range conns {
		h.write(conn, event.Type, payload)
	}
	observability.IncWSEvent("group", event.Type)
	return nil
}

// write pushes one frame; a dead connection is closed and unregistered.
func (h *Hub) write(conn *websocket.Conn, eventType string, payload []byte) {
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.logger.Warn("websocket write failed",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		conn.Close()
		h.Unregister(conn)
		observability.IncWSEvent("user", "ws_error")
	}
}

// ConnectionsForUser reports the number of live connections for a user.
func (h *Hub) ConnectionsForUser(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID])
}
