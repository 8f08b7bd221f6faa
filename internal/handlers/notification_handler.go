package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travel-service/internal/cqrs"
	"travel-service/internal/notifications"
	"travel-service/internal/telemetry"
)

// NotificationHandler exposes the notification endpoints.
type NotificationHandler struct {
	bus   *cqrs.Bus
	audit *telemetry.AuditEmitter
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(bus *cqrs.Bus, audit *telemetry.AuditEmitter) *NotificationHandler {
	return &NotificationHandler{bus: bus, audit: audit}
}

// Create handles POST /notifications.
func (h *NotificationHandler) Create(c *gin.Context) {
	userID := userIDFromContext(c)

	var req struct {
		UserID int64           `json:"user_id"`
		Type   string          `json:"type" binding:"required"`
		Data   json.RawMessage `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == 0 {
		req.UserID = userID
	}

	result, err := h.bus.Dispatch(c.Request.Context(), notifications.CreateNotification{
		UserID: req.UserID,
		Type:   req.Type,
		Data:   req.Data,
	})
	if err != nil {
		h.emitAudit(c, "ERROR", "could not create notification")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Notification created")
	c.JSON(http.StatusCreated, result)
}

// List handles GET /notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := userIDFromContext(c)
	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	result, err := h.bus.Ask(c.Request.Context(), notifications.ListNotifications{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Limit:      limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": result})
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := userIDFromContext(c)

	result, err := h.bus.Ask(c.Request.Context(), notifications.UnreadCount{UserID: userID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": result})
}

// MarkAllRead handles POST /notifications/mark-all-read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := userIDFromContext(c)

	result, err := h.bus.Dispatch(c.Request.Context(), notifications.MarkAllRead{UserID: userID})
	if err != nil {
		h.emitAudit(c, "ERROR", "could not mark notifications read")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Notifications marked read")
	c.JSON(http.StatusOK, result)
}

func (h *NotificationHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), auditUserID(c))
}
