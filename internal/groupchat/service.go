package groupchat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"travel-service/internal/apperrors"
	"travel-service/internal/cqrs"
	"travel-service/internal/events"
	"travel-service/internal/models"
	"travel-service/internal/repositories"
)

// Broadcaster is the slice of the websocket hub the service pushes through.
type Broadcaster interface {
	BroadcastToGroup(groupID int64, event models.WSEvent, excludeUserID int64) error
}

// DefaultInvitationTTL applies when the inviter gives no expiration time.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// CreateGroup creates a group with the caller as owner and member.
type CreateGroup struct {
	OwnerID   int64
	Name      string
	MemberIDs []int64
}

func (CreateGroup) CommandType() string { return "group.create" }

// ListGroups returns the groups the caller belongs to.
type ListGroups struct {
	UserID int64
}

func (ListGroups) QueryType() string { return "group.list" }

// SendMessage posts a message into a group and broadcasts it to the room.
type SendMessage struct {
	GroupID     int64
	SenderID    int64
	Content     string
	Attachments []string
	ReplyToID   *int64
}

func (SendMessage) CommandType() string { return "group.message.send" }

// GetMessages pages the group history, cursor-based on message id.
type GetMessages struct {
	GroupID  int64
	UserID   int64
	Limit    int
	BeforeID int64
}

func (GetMessages) QueryType() string { return "group.message.list" }

// AddReaction sets the caller's reaction on a message (one per user).
type AddReaction struct {
	MessageID  int64
	UserID     int64
	ReactionID string
}

func (AddReaction) CommandType() string { return "group.reaction.add" }

// RemoveReaction clears the caller's reaction.
type RemoveReaction struct {
	MessageID int64
	UserID    int64
}

func (RemoveReaction) CommandType() string { return "group.reaction.remove" }

// GetMessageReactions aggregates reactions on a message.
type GetMessageReactions struct {
	MessageID int64
	UserID    int64
}

func (GetMessageReactions) QueryType() string { return "group.reaction.list" }

// PinMessage pins or unpins a message; sender or group owner only.
type PinMessage struct {
	GroupID   int64
	MessageID int64
	UserID    int64
	Pinned    bool
}

func (PinMessage) CommandType() string { return "group.message.pin" }

// DeleteMessage removes a message for everyone; sender or group owner only.
type DeleteMessage struct {
	GroupID   int64
	MessageID int64
	UserID    int64
}

func (DeleteMessage) CommandType() string { return "group.message.delete" }

// InviteToGroup creates a pending invitation.
type InviteToGroup struct {
	GroupID       int64
	InviterID     int64
	InvitedUserID int64
	ExpiresAt     *time.Time
}

func (InviteToGroup) CommandType() string { return "group.invitation.create" }

// RespondInvitation transitions a pending invitation to accepted or declined.
type RespondInvitation struct {
	InvitationID int64
	UserID       int64
	Response     string
}

func (RespondInvitation) CommandType() string { return "group.invitation.respond" }

// ListInvitations returns the caller's pending, unexpired invitations.
type ListInvitations struct {
	UserID int64
}

func (ListInvitations) QueryType() string { return "group.invitation.list" }

// Service owns the group messaging command/query handlers.
type Service struct {
	groupRepo      repositories.GroupRepository
	messageRepo    repositories.GroupMessageRepository
	reactionRepo   repositories.ReactionRepository
	invitationRepo repositories.InvitationRepository
	broadcaster    Broadcaster
	eventBus       *cqrs.EventBus
	logger         *zap.Logger
	defaultLimit   int
	maxLimit       int
}

// NewService constructs the group messaging service.
func NewService(
	groupRepo repositories.GroupRepository,
	messageRepo repositories.GroupMessageRepository,
	reactionRepo repositories.ReactionRepository,
	invitationRepo repositories.InvitationRepository,
	broadcaster Broadcaster,
	eventBus *cqrs.EventBus,
	logger *zap.Logger,
	defaultLimit, maxLimit int,
) *Service {
	return &Service{
		groupRepo:      groupRepo,
		messageRepo:    messageRepo,
		reactionRepo:   reactionRepo,
		invitationRepo: invitationRepo,
		broadcaster:    broadcaster,
		eventBus:       eventBus,
		logger:         logger,
		defaultLimit:   defaultLimit,
		maxLimit:       maxLimit,
	}
}

// Register binds all handlers onto the bus.
func (s *Service) Register(bus *cqrs.Bus) error {
	commands := map[string]cqrs.CommandHandler{
		CreateGroup{}.CommandType(): func(ctx context.Context, cmd cqrs.Command) (any, error) {
			return s.createGroup(ctx, cmd.(CreateGroup))
		},
		SendMessage{}.CommandType(): func(ctx context.Context, cmd cqrs.Command) (any, error) {
			return s.sendMessage(ctx, cmd.(SendMessage))
		},
		AddReaction{}.CommandType(): func(ctx context.Context, cmd cqrs.Command) (any, error) {
			return s.addReaction(ctx, cmd.(AddReaction))
		},
		RemoveReaction{}.CommandType(): func(ctx context.Context, cmd cqrs.Command) (any, error) {
			return nil, s.removeReaction(ctx, cmd.(RemoveReaction))
		},
		PinMessage{}.CommandType(): func(ctx context.Context, cmd cqrs.Command) (any, error) {
			return nil, s.pinMessage(ctx, cmd.(PinMessage))
		},
		DeleteMessage{}.CommandType(): func(ctx context.Context, cmd cqrs.Command) (any, error) {
			return nil, s.deleteMessage(ctx, cmd.(DeleteMessage))
		},
		InviteToGroup{}.CommandType(): func(ctx context.Context, cmd cqrs.Command) (any, error) {
			return s.invite(ctx, cmd.(InviteToGroup))
		},
		RespondInvitation{}.CommandType(): func(ctx context.Context, cmd cqrs.Command) (any, error) {
			return s.respond(ctx, cmd.(RespondInvitation))
		},
	}
	for commandType, handler := range commands {
		if err := bus.RegisterCommand(commandType, handler); err != nil {
			return err
		}
	}

	queries := map[string]cqrs.QueryHandler{
		ListGroups{}.QueryType(): func(ctx context.Context, q cqrs.Query) (any, error) {
			return s.listGroups(ctx, q.(ListGroups))
		},
		GetMessages{}.QueryType(): func(ctx context.Context, q cqrs.Query) (any, error) {
			return s.getMessages(ctx, q.(GetMessages))
		},
		GetMessageReactions{}.QueryType(): func(ctx context.Context, q cqrs.Query) (any, error) {
			return s.getMessageReactions(ctx, q.(GetMessageReactions))
		},
		ListInvitations{}.QueryType(): func(ctx context.Context, q cqrs.Query) (any, error) {
			return s.listInvitations(ctx, q.(ListInvitations))
		},
	}
	for queryType, handler := range queries {
		if err := bus.RegisterQuery(queryType, handler); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) createGroup(ctx context.Context, cmd CreateGroup) (models.Group, error) {
	if cmd.Name == "" {
		return models.Group{}, apperrors.Validation("group name is required")
	}
	group, err := s.groupRepo.CreateGroup(ctx, cmd.OwnerID, cmd.Name, cmd.MemberIDs)
	if err != nil {
		return models.Group{}, apperrors.Internal("could not create group", err)
	}
	s.recordActivity(ctx, cmd.OwnerID, "group_created", fmt.Sprintf(`{"group_id":%d}`, group.ID))
	return group, nil
}

func (s *Service) listGroups(ctx context.Context, q ListGroups) ([]models.Group, error) {
	groups, err := s.groupRepo.ListGroupsForUser(ctx, q.UserID)
	if err != nil {
		return nil, apperrors.Internal("could not load groups", err)
	}
	return groups, nil
}

// sendMessage persists the message, then broadcasts it to every other
// member's live connection. The durable row must exist before any push.
func (s *Service) sendMessage(ctx context.Context, cmd SendMessage) (models.GroupMessage, error) {
	if err := s.requireMember(ctx, cmd.GroupID, cmd.SenderID); err != nil {
		return models.GroupMessage{}, err
	}
	if cmd.Content == "" && len(cmd.Attachments) == 0 {
		return models.GroupMessage{}, apperrors.Validation("message requires content or at least one attachment")
	}

	if cmd.ReplyToID != nil {
		// reply_to_message_id carries no FK; the target is checked here
		target, err := s.messageRepo.GetGroupMessage(ctx, *cmd.ReplyToID)
		if err != nil {
			if errors.Is(err, repositories.ErrMessageNotFound) {
				return models.GroupMessage{}, apperrors.Validation("reply target does not exist")
			}
			return models.GroupMessage{}, apperrors.Internal("could not load reply target", err)
		}
		if target.GroupID != cmd.GroupID {
			return models.GroupMessage{}, apperrors.Validation("reply target belongs to another group")
		}
	}

	msg, err := s.messageRepo.CreateGroupMessage(ctx, cmd.GroupID, cmd.SenderID, cmd.Content, cmd.Attachments, cmd.ReplyToID)
	if err != nil {
		return models.GroupMessage{}, apperrors.Internal("could not store message", err)
	}

	if err := s.broadcaster.BroadcastToGroup(cmd.GroupID, models.WSEvent{
		Type:     models.WSGroupMessage,
		Message:  &msg,
		SenderID: cmd.SenderID,
	}, cmd.SenderID); err != nil {
		s.logger.Warn("group message broadcast failed",
			zap.Int64("group_id", cmd.GroupID),
			zap.Int64("message_id", msg.ID),
			zap.Error(err),
		)
	}

	s.eventBus.Publish(ctx, events.GroupMessageSent{Message: msg})
	s.recordActivity(ctx, cmd.SenderID, "group_message_sent", fmt.Sprintf(`{"group_id":%d,"message_id":%d}`, cmd.GroupID, msg.ID))
	return msg, nil
}

// getMessages pages history newest-first. It fetches one row beyond the
// limit so hasMore is exact at the end of history.
func (s *Service) getMessages(ctx context.Context, q GetMessages) (models.MessagePage, error) {
	if err := s.requireMember(ctx, q.GroupID, q.UserID); err != nil {
		return models.MessagePage{}, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	msgs, err := s.messageRepo.ListMessagesBefore(ctx, q.GroupID, q.BeforeID, limit+1)
	if err != nil {
		return models.MessagePage{}, apperrors.Internal("could not load messages", err)
	}
	hasMore := len(msgs) > limit
	if hasMore {
		msgs = msgs[:limit]
	}

	total, err := s.messageRepo.CountMessages(ctx, q.GroupID)
	if err != nil {
		return models.MessagePage{}, apperrors.Internal("could not count messages", err)
	}

	return models.MessagePage{Messages: msgs, HasMore: hasMore, Total: total}, nil
}

func (s *Service) addReaction(ctx context.Context, cmd AddReaction) (models.Reaction, error) {
	if cmd.ReactionID == "" {
		return models.Reaction{}, apperrors.Validation("reaction id is required")
	}
	if _, err := s.memberMessage(ctx, cmd.MessageID, cmd.UserID); err != nil {
		return models.Reaction{}, err
	}
	reaction, err := s.reactionRepo.UpsertReaction(ctx, cmd.MessageID, cmd.UserID, cmd.ReactionID)
	if err != nil {
		return models.Reaction{}, apperrors.Internal("could not store reaction", err)
	}
	return reaction, nil
}

func (s *Service) removeReaction(ctx context.Context, cmd RemoveReaction) error {
	if _, err := s.memberMessage(ctx, cmd.MessageID, cmd.UserID); err != nil {
		return err
	}
	if err := s.reactionRepo.DeleteReaction(ctx, cmd.MessageID, cmd.UserID); err != nil {
		return apperrors.Internal("could not remove reaction", err)
	}
	return nil
}

// getMessageReactions aggregates at query time; total is the sum of all
// per-reaction counts.
func (s *Service) getMessageReactions(ctx context.Context, q GetMessageReactions) (models.ReactionSummary, error) {
	if _, err := s.memberMessage(ctx, q.MessageID, q.UserID); err != nil {
		return models.ReactionSummary{}, err
	}

	counts, err := s.reactionRepo.CountByReaction(ctx, q.MessageID)
	if err != nil {
		return models.ReactionSummary{}, apperrors.Internal("could not aggregate reactions", err)
	}
	users, err := s.reactionRepo.ListReactions(ctx, q.MessageID)
	if err != nil {
		return models.ReactionSummary{}, apperrors.Internal("could not load reactions", err)
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return models.ReactionSummary{Total: total, Reactions: counts, Users: users}, nil
}

func (s *Service) pinMessage(ctx context.Context, cmd PinMessage) error {
	msg, err := s.groupMessage(ctx, cmd.GroupID, cmd.MessageID)
	if err != nil {
		return err
	}

	group, err := s.groupRepo.GetGroup(ctx, cmd.GroupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return apperrors.NotFound("group not found")
		}
		return apperrors.Internal("could not load group", err)
	}
	if msg.SenderID != cmd.UserID && group.OwnerID != cmd.UserID {
		return apperrors.Unauthorized("only the sender or the group owner may pin")
	}

	if err := s.messageRepo.SetPinned(ctx, cmd.MessageID, cmd.Pinned); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return apperrors.NotFound("message not found")
		}
		return apperrors.Internal("could not pin message", err)
	}

	if err := s.broadcaster.BroadcastToGroup(cmd.GroupID, models.WSEvent{
		Type:      models.WSGroupPinned,
		GroupID:   cmd.GroupID,
		MessageID: cmd.MessageID,
	}, 0); err != nil {
		s.logger.Warn("pin broadcast failed", zap.Int64("message_id", cmd.MessageID), zap.Error(err))
	}
	return nil
}

func (s *Service) deleteMessage(ctx context.Context, cmd DeleteMessage) error {
	msg, err := s.groupMessage(ctx, cmd.GroupID, cmd.MessageID)
	if err != nil {
		return err
	}
	if msg.SenderID != cmd.UserID {
		group, err := s.groupRepo.GetGroup(ctx, cmd.GroupID)
		if err != nil {
			if errors.Is(err, repositories.ErrGroupNotFound) {
				return apperrors.NotFound("group not found")
			}
			return apperrors.Internal("could not load group", err)
		}
		if group.OwnerID != cmd.UserID {
			return apperrors.Unauthorized("only the sender or the group owner may delete")
		}
	}

	if err := s.messageRepo.DeleteForAll(ctx, cmd.MessageID); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return apperrors.NotFound("message not found")
		}
		return apperrors.Internal("could not delete message", err)
	}

	if err := s.broadcaster.BroadcastToGroup(cmd.GroupID, models.WSEvent{
		Type:      models.WSGroupDeleted,
		GroupID:   cmd.GroupID,
		MessageID: cmd.MessageID,
	}, 0); err != nil {
		s.logger.Warn("delete broadcast failed", zap.Int64("message_id", cmd.MessageID), zap.Error(err))
	}
	return nil
}

func (s *Service) invite(ctx context.Context, cmd InviteToGroup) (models.GroupInvitation, error) {
	if err := s.requireMember(ctx, cmd.GroupID, cmd.InviterID); err != nil {
		return models.GroupInvitation{}, err
	}
	if cmd.InvitedUserID == cmd.InviterID {
		return models.GroupInvitation{}, apperrors.Validation("cannot invite yourself")
	}

	alreadyMember, err := s.groupRepo.IsMember(ctx, cmd.GroupID, cmd.InvitedUserID)
	if err != nil {
		return models.GroupInvitation{}, apperrors.Internal("membership check failed", err)
	}
	if alreadyMember {
		return models.GroupInvitation{}, apperrors.Conflict("user is already a member")
	}

	group, err := s.groupRepo.GetGroup(ctx, cmd.GroupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return models.GroupInvitation{}, apperrors.NotFound("group not found")
		}
		return models.GroupInvitation{}, apperrors.Internal("could not load group", err)
	}

	expiresAt := time.Now().Add(DefaultInvitationTTL)
	if cmd.ExpiresAt != nil {
		expiresAt = *cmd.ExpiresAt
	}

	inv, err := s.invitationRepo.CreateInvitation(ctx, cmd.GroupID, cmd.InviterID, cmd.InvitedUserID, expiresAt)
	if err != nil {
		if errors.Is(err, repositories.ErrPendingInvitationExists) {
			return models.GroupInvitation{}, apperrors.Conflict("a pending invitation already exists for this user")
		}
		return models.GroupInvitation{}, apperrors.Internal("could not create invitation", err)
	}

	s.eventBus.Publish(ctx, events.InvitationCreated{Invitation: inv, GroupName: group.Name})
	s.recordActivity(ctx, cmd.InviterID, "group_invitation_sent", fmt.Sprintf(`{"group_id":%d,"invitation_id":%d}`, cmd.GroupID, inv.ID))
	return inv, nil
}

// respond applies the single pending -> terminal transition. An invitation
// past expires_at is rejected here even though storage still says pending.
func (s *Service) respond(ctx context.Context, cmd RespondInvitation) (models.GroupInvitation, error) {
	if cmd.Response != models.InvitationAccepted && cmd.Response != models.InvitationDeclined {
		return models.GroupInvitation{}, apperrors.Validation("response must be accepted or declined")
	}

	inv, err := s.invitationRepo.GetInvitation(ctx, cmd.InvitationID)
	if err != nil {
		if errors.Is(err, repositories.ErrInvitationNotFound) {
			return models.GroupInvitation{}, apperrors.NotFound("invitation not found")
		}
		return models.GroupInvitation{}, apperrors.Internal("could not load invitation", err)
	}
	if inv.InvitedUserID != cmd.UserID {
		return models.GroupInvitation{}, apperrors.Unauthorized("invitation belongs to another user")
	}
	if inv.Status != models.InvitationPending {
		return models.GroupInvitation{}, apperrors.Conflict("invitation already resolved")
	}
	if inv.Expired(time.Now()) {
		return models.GroupInvitation{}, apperrors.Conflict("invitation has expired")
	}

	resolved, err := s.invitationRepo.ResolveInvitation(ctx, cmd.InvitationID, cmd.Response)
	if err != nil {
		if errors.Is(err, repositories.ErrInvitationAlreadyResolved) {
			return models.GroupInvitation{}, apperrors.Conflict("invitation already resolved")
		}
		return models.GroupInvitation{}, apperrors.Internal("could not resolve invitation", err)
	}

	if cmd.Response == models.InvitationAccepted {
		if err := s.groupRepo.AddMember(ctx, resolved.GroupID, resolved.InvitedUserID); err != nil {
			return models.GroupInvitation{}, apperrors.Internal("could not add member", err)
		}
	}

	s.eventBus.Publish(ctx, events.InvitationResponded{Invitation: resolved})
	s.recordActivity(ctx, cmd.UserID, "group_invitation_responded", fmt.Sprintf(`{"invitation_id":%d,"status":%q}`, resolved.ID, resolved.Status))
	return resolved, nil
}

func (s *Service) listInvitations(ctx context.Context, q ListInvitations) ([]models.GroupInvitation, error) {
	invs, err := s.invitationRepo.ListPendingForUser(ctx, q.UserID, time.Now())
	if err != nil {
		return nil, apperrors.Internal("could not load invitations", err)
	}
	return invs, nil
}

func (s *Service) requireMember(ctx context.Context, groupID, userID int64) error {
	member, err := s.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return apperrors.Internal("membership check failed", err)
	}
	if !member {
		return apperrors.Unauthorized("not a member of this group")
	}
	return nil
}

// memberMessage loads a message and verifies the caller belongs to its group.
func (s *Service) memberMessage(ctx context.Context, messageID, userID int64) (models.GroupMessage, error) {
	msg, err := s.messageRepo.GetGroupMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return models.GroupMessage{}, apperrors.NotFound("message not found")
		}
		return models.GroupMessage{}, apperrors.Internal("could not load message", err)
	}
	if err := s.requireMember(ctx, msg.GroupID, userID); err != nil {
		return models.GroupMessage{}, err
	}
	return msg, nil
}

// groupMessage loads a message and verifies it belongs to the given group.
func (s *Service) groupMessage(ctx context.Context, groupID, messageID int64) (models.GroupMessage, error) {
	msg, err := s.messageRepo.GetGroupMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return models.GroupMessage{}, apperrors.NotFound("message not found")
		}
		return models.GroupMessage{}, apperrors.Internal("could not load message", err)
	}
	if msg.GroupID != groupID {
		return models.GroupMessage{}, apperrors.Validation("message does not belong to group")
	}
	return msg, nil
}

func (s *Service) recordActivity(ctx context.Context, userID int64, action, data string) {
	s.eventBus.Publish(ctx, events.ActivityRecorded{
		UserID:     userID,
		Action:     action,
		Data:       json.RawMessage(data),
		OccurredAt: time.Now().UTC(),
	})
}
