package ws

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel-service/internal/models"
)

func newConn() *websocket.Conn {
	return &websocket.Conn{}
}

func testInfo(userID int64) ConnInfo {
	return ConnInfo{
		ConnID:      "test-conn",
		UserID:      userID,
		DeviceID:    "device-1",
		ConnectedAt: time.Now(),
	}
}

func TestHubRegisterTracksMultipleDevices(t *testing.T) {
	hub := NewHub(zap.NewNop())

	phone := newConn()
	laptop := newConn()
	hub.Register(phone, testInfo(5))
	hub.Register(laptop, testInfo(5))

	require.Equal(t, 2, hub.ConnectionsForUser(5))
	require.Equal(t, 0, hub.ConnectionsForUser(6))
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())

	conn := newConn()
	hub.Register(conn, testInfo(5))
	hub.JoinGroup(9, conn)
	hub.JoinGroup(10, conn)

	hub.Unregister(conn)
	require.Equal(t, 0, hub.ConnectionsForUser(5))
	require.Empty(t, hub.groupRooms)
	require.Empty(t, hub.connGroups)

	// a second call, and a call for a connection never registered, are no-ops
	hub.Unregister(conn)
	hub.Unregister(newConn())
	require.Equal(t, 0, hub.ConnectionsForUser(5))
}

func TestHubLeaveGroupKeepsOtherRooms(t *testing.T) {
	hub := NewHub(zap.NewNop())

	conn := newConn()
	hub.Register(conn, testInfo(5))
	hub.JoinGroup(9, conn)
	hub.JoinGroup(10, conn)

	hub.LeaveGroup(9, conn)

	require.NotContains(t, hub.groupRooms, int64(9))
	require.Contains(t, hub.groupRooms, int64(10))
	require.True(t, hub.connGroups[conn][10])
}

func TestHubNotifyUserWithoutConnectionsIsNoop(t *testing.T) {
	hub := NewHub(zap.NewNop())

	err := hub.NotifyUser(42, models.WSEvent{Type: models.WSNotificationNew})
	require.NoError(t, err)
}

func TestHubBroadcastEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub(zap.NewNop())

	err := hub.BroadcastToGroup(9, models.WSEvent{Type: models.WSGroupMessage}, 0)
	require.NoError(t, err)
}
