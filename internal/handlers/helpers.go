package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travel-service/internal/apperrors"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) int64 {
	if val, ok := c.Get("userID"); ok {
		switch userID := val.(type) {
		case int64:
			return userID
		case int:
			return int64(userID)
		}
	}
	return 0
}

func auditUserID(c *gin.Context) *int64 {
	if id := userIDFromContext(c); id != 0 {
		return &id
	}
	return nil
}

// respondError maps an application error to its HTTP status and body.
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": apperrors.MessageOf(err)})
}
