package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"travel-service/internal/cqrs"
	"travel-service/internal/groupchat"
	"travel-service/internal/telemetry"
)

// GroupHandler exposes group, message, reaction and invitation endpoints.
type GroupHandler struct {
	bus   *cqrs.Bus
	audit *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(bus *cqrs.Bus, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{bus: bus, audit: audit}
}

// CreateGroup handles POST /groups.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID := userIDFromContext(c)

	var req struct {
		Name      string  `json:"name" binding:"required"`
		MemberIDs []int64 `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Dispatch(c.Request.Context(), groupchat.CreateGroup{
		OwnerID:   userID,
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		h.emitAudit(c, "ERROR", "could not create group")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group created")
	c.JSON(http.StatusCreated, result)
}

// ListGroups handles GET /groups.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID := userIDFromContext(c)

	result, err := h.bus.Ask(c.Request.Context(), groupchat.ListGroups{UserID: userID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": result})
}

// PostMessage handles POST /groups/:group_id/messages.
func (h *GroupHandler) PostMessage(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	userID := userIDFromContext(c)

	var req struct {
		Content     string   `json:"content"`
		Attachments []string `json:"attachments"`
		ReplyToID   *int64   `json:"reply_to_message_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Dispatch(c.Request.Context(), groupchat.SendMessage{
		GroupID:     groupID,
		SenderID:    userID,
		Content:     req.Content,
		Attachments: req.Attachments,
		ReplyToID:   req.ReplyToID,
	})
	if err != nil {
		h.emitAudit(c, "ERROR", "could not send message")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group message sent")
	c.JSON(http.StatusCreated, result)
}

// GetMessages handles GET /groups/:group_id/messages?limit=&before_id=.
func (h *GroupHandler) GetMessages(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	userID := userIDFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	beforeID, _ := strconv.ParseInt(c.DefaultQuery("before_id", "0"), 10, 64)

	result, err := h.bus.Ask(c.Request.Context(), groupchat.GetMessages{
		GroupID:  groupID,
		UserID:   userID,
		Limit:    limit,
		BeforeID: beforeID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteMessage handles DELETE /groups/:group_id/messages/:message_id.
func (h *GroupHandler) DeleteMessage(c *gin.Context) {
	groupID, messageID, ok := pathIDs(c)
	if !ok {
		return
	}
	userID := userIDFromContext(c)

	if _, err := h.bus.Dispatch(c.Request.Context(), groupchat.DeleteMessage{
		GroupID:   groupID,
		MessageID: messageID,
		UserID:    userID,
	}); err != nil {
		h.emitAudit(c, "ERROR", "could not delete message")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group message deleted for all")
	c.Status(http.StatusNoContent)
}

// PinMessage handles POST /groups/:group_id/messages/:message_id/pin.
func (h *GroupHandler) PinMessage(c *gin.Context) {
	h.setPinned(c, true)
}

// UnpinMessage handles DELETE /groups/:group_id/messages/:message_id/pin.
func (h *GroupHandler) UnpinMessage(c *gin.Context) {
	h.setPinned(c, false)
}

func (h *GroupHandler) setPinned(c *gin.Context, pinned bool) {
	groupID, messageID, ok := pathIDs(c)
	if !ok {
		return
	}
	userID := userIDFromContext(c)

	if _, err := h.bus.Dispatch(c.Request.Context(), groupchat.PinMessage{
		GroupID:   groupID,
		MessageID: messageID,
		UserID:    userID,
		Pinned:    pinned,
	}); err != nil {
		h.emitAudit(c, "ERROR", "could not update pin")
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddReaction handles POST /messages/:message_id/reactions.
func (h *GroupHandler) AddReaction(c *gin.Context) {
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return
	}
	userID := userIDFromContext(c)

	var req struct {
		ReactionID string `json:"reaction_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Dispatch(c.Request.Context(), groupchat.AddReaction{
		MessageID:  messageID,
		UserID:     userID,
		ReactionID: req.ReactionID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// RemoveReaction handles DELETE /messages/:message_id/reactions.
func (h *GroupHandler) RemoveReaction(c *gin.Context) {
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return
	}
	userID := userIDFromContext(c)

	if _, err := h.bus.Dispatch(c.Request.Context(), groupchat.RemoveReaction{
		MessageID: messageID,
		UserID:    userID,
	}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetReactions handles GET /messages/:message_id/reactions.
func (h *GroupHandler) GetReactions(c *gin.Context) {
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return
	}
	userID := userIDFromContext(c)

	result, err := h.bus.Ask(c.Request.Context(), groupchat.GetMessageReactions{
		MessageID: messageID,
		UserID:    userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Invite handles POST /groups/:group_id/invitations.
func (h *GroupHandler) Invite(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	userID := userIDFromContext(c)

	var req struct {
		InvitedUserID  int64      `json:"invited_user_id" binding:"required"`
		ExpirationTime *time.Time `json:"expiration_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Dispatch(c.Request.Context(), groupchat.InviteToGroup{
		GroupID:       groupID,
		InviterID:     userID,
		InvitedUserID: req.InvitedUserID,
		ExpiresAt:     req.ExpirationTime,
	})
	if err != nil {
		h.emitAudit(c, "ERROR", "could not create invitation")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group invitation sent")
	c.JSON(http.StatusCreated, result)
}

// ListInvitations handles GET /invitations.
func (h *GroupHandler) ListInvitations(c *gin.Context) {
	userID := userIDFromContext(c)

	result, err := h.bus.Ask(c.Request.Context(), groupchat.ListInvitations{UserID: userID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": result})
}

// RespondInvitation handles POST /invitations/:invitation_id/respond.
func (h *GroupHandler) RespondInvitation(c *gin.Context) {
	invitationID, ok := pathID(c, "invitation_id")
	if !ok {
		return
	}
	userID := userIDFromContext(c)

	var req struct {
		Response string `json:"response" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Dispatch(c.Request.Context(), groupchat.RespondInvitation{
		InvitationID: invitationID,
		UserID:       userID,
		Response:     req.Response,
	})
	if err != nil {
		h.emitAudit(c, "ERROR", "could not respond to invitation")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group invitation responded")
	c.JSON(http.StatusOK, result)
}

func (h *GroupHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), auditUserID(c))
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func pathIDs(c *gin.Context) (int64, int64, bool) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return 0, 0, false
	}
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return 0, 0, false
	}
	return groupID, messageID, true
}
