package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"travel-service/internal/models"
	"travel-service/internal/repositories"
)

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) CreateGroup(ctx context.Context, ownerID int64, name string, memberIDs []int64) (models.Group, error) {
	args := m.Called(ctx, ownerID, name, memberIDs)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) ListGroupsForUser(ctx context.Context, userID int64) ([]models.Group, error) {
	args := m.Called(ctx, userID)
	var groups []models.Group
	if val := args.Get(0); val != nil {
		groups = val.([]models.Group)
	}
	return groups, args.Error(1)
}

func (m *GroupRepositoryMock) ListGroupIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	var ids []int64
	if val := args.Get(0); val != nil {
		ids = val.([]int64)
	}
	return ids, args.Error(1)
}

func (m *GroupRepositoryMock) IsMember(ctx context.Context, groupID int64, userID int64) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *GroupRepositoryMock) AddMember(ctx context.Context, groupID int64, userID int64) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID int64) (models.Group, error) {
	args := m.Called(ctx, groupID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

type GroupMessageRepositoryMock struct {
	mock.Mock
}

func (m *GroupMessageRepositoryMock) CreateGroupMessage(ctx context.Context, groupID, senderID int64, content string, attachments []string, replyToID *int64) (models.GroupMessage, error) {
	args := m.Called(ctx, groupID, senderID, content, attachments, replyToID)
	var msg models.GroupMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GroupMessage)
	}
	return msg, args.Error(1)
}

func (m *GroupMessageRepositoryMock) ListMessagesBefore(ctx context.Context, groupID int64, beforeID int64, limit int) ([]models.GroupMessage, error) {
	args := m.Called(ctx, groupID, beforeID, limit)
	var msgs []models.GroupMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.GroupMessage)
	}
	return msgs, args.Error(1)
}

func (m *GroupMessageRepositoryMock) CountMessages(ctx context.Context, groupID int64) (int, error) {
	args := m.Called(ctx, groupID)
	return args.Int(0), args.Error(1)
}

func (m *GroupMessageRepositoryMock) GetGroupMessage(ctx context.Context, messageID int64) (models.GroupMessage, error) {
	args := m.Called(ctx, messageID)
	var msg models.GroupMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GroupMessage)
	}
	return msg, args.Error(1)
}

func (m *GroupMessageRepositoryMock) SetPinned(ctx context.Context, messageID int64, pinned bool) error {
	args := m.Called(ctx, messageID, pinned)
	return args.Error(0)
}

func (m *GroupMessageRepositoryMock) DeleteForAll(ctx context.Context, messageID int64) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

type ReactionRepositoryMock struct {
	mock.Mock
}

func (m *ReactionRepositoryMock) UpsertReaction(ctx context.Context, messageID, userID int64, reactionID string) (models.Reaction, error) {
	args := m.Called(ctx, messageID, userID, reactionID)
	var reaction models.Reaction
	if val := args.Get(0); val != nil {
		reaction = val.(models.Reaction)
	}
	return reaction, args.Error(1)
}

func (m *ReactionRepositoryMock) DeleteReaction(ctx context.Context, messageID, userID int64) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

func (m *ReactionRepositoryMock) ListReactions(ctx context.Context, messageID int64) ([]models.Reaction, error) {
	args := m.Called(ctx, messageID)
	var reactions []models.Reaction
	if val := args.Get(0); val != nil {
		reactions = val.([]models.Reaction)
	}
	return reactions, args.Error(1)
}

func (m *ReactionRepositoryMock) CountByReaction(ctx context.Context, messageID int64) ([]models.ReactionCount, error) {
	args := m.Called(ctx, messageID)
	var counts []models.ReactionCount
	if val := args.Get(0); val != nil {
		counts = val.([]models.ReactionCount)
	}
	return counts, args.Error(1)
}

type InvitationRepositoryMock struct {
	mock.Mock
}

func (m *InvitationRepositoryMock) CreateInvitation(ctx context.Context, groupID, inviterID, invitedUserID int64, expiresAt time.Time) (models.GroupInvitation, error) {
	args := m.Called(ctx, groupID, inviterID, invitedUserID, expiresAt)
	var inv models.GroupInvitation
	if val := args.Get(0); val != nil {
		inv = val.(models.GroupInvitation)
	}
	return inv, args.Error(1)
}

func (m *InvitationRepositoryMock) GetInvitation(ctx context.Context, invitationID int64) (models.GroupInvitation, error) {
	args := m.Called(ctx, invitationID)
	var inv models.GroupInvitation
	if val := args.Get(0); val != nil {
		inv = val.(models.GroupInvitation)
	}
	return inv, args.Error(1)
}

func (m *InvitationRepositoryMock) ResolveInvitation(ctx context.Context, invitationID int64, status string) (models.GroupInvitation, error) {
	args := m.Called(ctx, invitationID, status)
	var inv models.GroupInvitation
	if val := args.Get(0); val != nil {
		inv = val.(models.GroupInvitation)
	}
	return inv, args.Error(1)
}

func (m *InvitationRepositoryMock) ListPendingForUser(ctx context.Context, userID int64, now time.Time) ([]models.GroupInvitation, error) {
	args := m.Called(ctx, userID, now)
	var invs []models.GroupInvitation
	if val := args.Get(0); val != nil {
		invs = val.([]models.GroupInvitation)
	}
	return invs, args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) CreateNotification(ctx context.Context, userID int64, notificationType string, data json.RawMessage) (models.Notification, error) {
	args := m.Called(ctx, userID, notificationType, data)
	var n models.Notification
	if val := args.Get(0); val != nil {
		n = val.(models.Notification)
	}
	return n, args.Error(1)
}

func (m *NotificationRepositoryMock) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepositoryMock) CountUnread(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type ActivityLogRepositoryMock struct {
	mock.Mock
}

func (m *ActivityLogRepositoryMock) InsertBatch(ctx context.Context, entries []models.ActivityEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) NotifyUser(userID int64, event models.WSEvent) error {
	args := m.Called(userID, event)
	return args.Error(0)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) BroadcastToGroup(groupID int64, event models.WSEvent, excludeUserID int64) error {
	args := m.Called(groupID, event, excludeUserID)
	return args.Error(0)
}

var _ repositories.GroupRepository = (*GroupRepositoryMock)(nil)
var _ repositories.GroupMessageRepository = (*GroupMessageRepositoryMock)(nil)
var _ repositories.ReactionRepository = (*ReactionRepositoryMock)(nil)
var _ repositories.InvitationRepository = (*InvitationRepositoryMock)(nil)
var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)
var _ repositories.ActivityLogRepository = (*ActivityLogRepositoryMock)(nil)
