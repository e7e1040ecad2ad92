package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/partaj-app/partaj-backend/internal/http/response"
	"github.com/partaj-app/partaj-backend/internal/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (nh *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	unreadOnly := c.Query("unread") == "true"
	notifications, err := nh.notificationService.ListForUser(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, notifications)
}

func (nh *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		NotificationIDs []string `json:"notification_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, err)
		return
	}
	ids := make([]uuid.UUID, 0, len(req.NotificationIDs))
	for _, raw := range req.NotificationIDs {
		id, err := parseUUIDField(raw, "notification_ids")
		if err != nil {
			response.RespondErrorStatus(c, http.StatusBadRequest, err)
			return
		}
		ids = append(ids, id)
	}
	if err := nh.notificationService.MarkRead(c.Request.Context(), userID, ids); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (nh *NotificationHandler) CountUnread(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	count, err := nh.notificationService.CountUnread(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"count": count})
}
