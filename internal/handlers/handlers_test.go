package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel-service/internal/cqrs"
	"travel-service/internal/groupchat"
	"travel-service/internal/mocks"
	"travel-service/internal/models"
	"travel-service/internal/notifications"
	"travel-service/internal/repositories"
)

type handlerDeps struct {
	groupRepo        *mocks.GroupRepositoryMock
	messageRepo      *mocks.GroupMessageRepositoryMock
	reactionRepo     *mocks.ReactionRepositoryMock
	invitationRepo   *mocks.InvitationRepositoryMock
	notificationRepo *mocks.NotificationRepositoryMock
	broadcaster      *mocks.BroadcasterMock
	gateway          *mocks.GatewayMock
}

// newTestRouter wires the real bus and services over mocked repositories,
// with a stub auth middleware that injects the acting user.
func newTestRouter(t *testing.T, userID int64) (*gin.Engine, handlerDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deps := handlerDeps{
		groupRepo:        new(mocks.GroupRepositoryMock),
		messageRepo:      new(mocks.GroupMessageRepositoryMock),
		reactionRepo:     new(mocks.ReactionRepositoryMock),
		invitationRepo:   new(mocks.InvitationRepositoryMock),
		notificationRepo: new(mocks.NotificationRepositoryMock),
		broadcaster:      new(mocks.BroadcasterMock),
		gateway:          new(mocks.GatewayMock),
	}

	bus := cqrs.NewBus()
	eventBus := cqrs.NewEventBus(zap.NewNop())

	groupSvc := groupchat.NewService(
		deps.groupRepo, deps.messageRepo, deps.reactionRepo, deps.invitationRepo,
		deps.broadcaster, eventBus, zap.NewNop(), 20, 50,
	)
	require.NoError(t, groupSvc.Register(bus))

	notificationSvc := notifications.NewService(deps.notificationRepo, deps.gateway, nil, eventBus, zap.NewNop(), 20)
	require.NoError(t, notificationSvc.Register(bus))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})

	groupHandler := NewGroupHandler(bus, nil)
	notificationHandler := NewNotificationHandler(bus, nil)

	router.POST("/groups", groupHandler.CreateGroup)
	router.GET("/groups", groupHandler.ListGroups)
	router.POST("/groups/:group_id/messages", groupHandler.PostMessage)
	router.GET("/groups/:group_id/messages", groupHandler.GetMessages)
	router.DELETE("/groups/:group_id/messages/:message_id", groupHandler.DeleteMessage)
	router.POST("/groups/:group_id/messages/:message_id/pin", groupHandler.PinMessage)
	router.POST("/groups/:group_id/invitations", groupHandler.Invite)
	router.GET("/invitations", groupHandler.ListInvitations)
	router.POST("/invitations/:invitation_id/respond", groupHandler.RespondInvitation)
	router.POST("/messages/:message_id/reactions", groupHandler.AddReaction)
	router.GET("/messages/:message_id/reactions", groupHandler.GetReactions)
	router.POST("/notifications", notificationHandler.Create)
	router.GET("/notifications", notificationHandler.List)
	router.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	router.POST("/notifications/mark-all-read", notificationHandler.MarkAllRead)

	return router, deps
}

func doJSON(router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPostMessageCreated(t *testing.T) {
	router, deps := newTestRouter(t, 1)

	deps.groupRepo.On("IsMember", mock.Anything, int64(9), int64(1)).Return(true, nil)
	deps.messageRepo.On("CreateGroupMessage", mock.Anything, int64(9), int64(1), "hello", []string(nil), (*int64)(nil)).
		Return(models.GroupMessage{ID: 3, GroupID: 9, SenderID: 1, Content: "hello"}, nil).Once()
	deps.broadcaster.On("BroadcastToGroup", int64(9), mock.Anything, int64(1)).Return(nil).Once()

	w := doJSON(router, http.MethodPost, "/groups/9/messages", gin.H{"content": "hello"})

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"hello"`)
	deps.messageRepo.AssertExpectations(t)
}

func TestPostMessageInvalidGroupID(t *testing.T) {
	router, _ := newTestRouter(t, 1)

	w := doJSON(router, http.MethodPost, "/groups/abc/messages", gin.H{"content": "hello"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostMessageNonMemberForbidden(t *testing.T) {
	router, deps := newTestRouter(t, 2)

	deps.groupRepo.On("IsMember", mock.Anything, int64(9), int64(2)).Return(false, nil)

	w := doJSON(router, http.MethodPost, "/groups/9/messages", gin.H{"content": "hello"})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetMessagesReturnsPage(t *testing.T) {
	router, deps := newTestRouter(t, 1)

	deps.groupRepo.On("IsMember", mock.Anything, int64(9), int64(1)).Return(true, nil)
	deps.messageRepo.On("ListMessagesBefore", mock.Anything, int64(9), int64(0), 3).Return([]models.GroupMessage{
		{ID: 5, GroupID: 9}, {ID: 4, GroupID: 9}, {ID: 3, GroupID: 9},
	}, nil).Once()
	deps.messageRepo.On("CountMessages", mock.Anything, int64(9)).Return(5, nil).Once()

	w := doJSON(router, http.MethodGet, "/groups/9/messages?limit=2", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Messages []models.GroupMessage `json:"messages"`
		HasMore  bool                  `json:"has_more"`
		Total    int                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Messages, 2)
	require.True(t, page.HasMore)
	require.Equal(t, 5, page.Total)
}

func TestInviteConflictWhenPendingExists(t *testing.T) {
	router, deps := newTestRouter(t, 1)

	deps.groupRepo.On("IsMember", mock.Anything, int64(9), int64(1)).Return(true, nil)
	deps.groupRepo.On("IsMember", mock.Anything, int64(9), int64(2)).Return(false, nil)
	deps.groupRepo.On("GetGroup", mock.Anything, int64(9)).Return(models.Group{ID: 9, Name: "g"}, nil)
	deps.invitationRepo.On("CreateInvitation", mock.Anything, int64(9), int64(1), int64(2), mock.Anything).
		Return(models.GroupInvitation{}, repositories.ErrPendingInvitationExists).Once()

	w := doJSON(router, http.MethodPost, "/groups/9/invitations", gin.H{"invited_user_id": 2})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRespondInvitationAccepted(t *testing.T) {
	router, deps := newTestRouter(t, 2)

	pending := models.GroupInvitation{
		ID: 3, GroupID: 9, InviterID: 1, InvitedUserID: 2,
		Status: models.InvitationPending, ExpiresAt: time.Now().Add(time.Hour),
	}
	accepted := pending
	accepted.Status = models.InvitationAccepted

	deps.invitationRepo.On("GetInvitation", mock.Anything, int64(3)).Return(pending, nil).Once()
	deps.invitationRepo.On("ResolveInvitation", mock.Anything, int64(3), models.InvitationAccepted).Return(accepted, nil).Once()
	deps.groupRepo.On("AddMember", mock.Anything, int64(9), int64(2)).Return(nil).Once()

	w := doJSON(router, http.MethodPost, "/invitations/3/respond", gin.H{"response": "accepted"})

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), models.InvitationAccepted)
	deps.groupRepo.AssertExpectations(t)
}

func TestRespondExpiredInvitationConflict(t *testing.T) {
	router, deps := newTestRouter(t, 2)

	expired := models.GroupInvitation{
		ID: 3, InvitedUserID: 2,
		Status: models.InvitationPending, ExpiresAt: time.Now().Add(-time.Minute),
	}
	deps.invitationRepo.On("GetInvitation", mock.Anything, int64(3)).Return(expired, nil).Once()

	w := doJSON(router, http.MethodPost, "/invitations/3/respond", gin.H{"response": "accepted"})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAddReactionCreated(t *testing.T) {
	router, deps := newTestRouter(t, 1)

	deps.messageRepo.On("GetGroupMessage", mock.Anything, int64(3)).Return(models.GroupMessage{ID: 3, GroupID: 9}, nil).Once()
	deps.groupRepo.On("IsMember", mock.Anything, int64(9), int64(1)).Return(true, nil).Once()
	deps.reactionRepo.On("UpsertReaction", mock.Anything, int64(3), int64(1), "like").
		Return(models.Reaction{MessageID: 3, UserID: 1, ReactionID: "like"}, nil).Once()

	w := doJSON(router, http.MethodPost, "/messages/3/reactions", gin.H{"reaction_id": "like"})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateNotificationCreated(t *testing.T) {
	router, deps := newTestRouter(t, 1)

	deps.notificationRepo.On("CreateNotification", mock.Anything, int64(5), "trip_update", mock.Anything).
		Return(models.Notification{ID: 11, UserID: 5, Type: "trip_update"}, nil).Once()
	deps.gateway.On("NotifyUser", int64(5), mock.Anything).Return(nil).Once()

	w := doJSON(router, http.MethodPost, "/notifications", gin.H{"user_id": 5, "type": "trip_update"})
	require.Equal(t, http.StatusCreated, w.Code)
	deps.notificationRepo.AssertExpectations(t)
}

func TestMarkAllReadOK(t *testing.T) {
	router, deps := newTestRouter(t, 5)

	deps.notificationRepo.On("MarkAllRead", mock.Anything, int64(5)).Return(int64(3), nil).Once()

	w := doJSON(router, http.MethodPost, "/notifications/mark-all-read", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "3")
}

func TestUnreadCountOK(t *testing.T) {
	router, deps := newTestRouter(t, 5)

	deps.notificationRepo.On("CountUnread", mock.Anything, int64(5)).Return(int64(4), nil).Once()

	w := doJSON(router, http.MethodGet, "/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"unread":4`)
}
