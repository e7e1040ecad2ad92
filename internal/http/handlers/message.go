package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/partaj-app/partaj-backend/internal/http/response"
	"github.com/partaj-app/partaj-backend/internal/services"
)

type MessageHandler struct {
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (mh *MessageHandler) Send(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, err)
		return
	}
	message, err := mh.messageService.Send(c.Request.Context(), actorID, referralID, req.Content)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, message)
}

func (mh *MessageHandler) List(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	messages, err := mh.messageService.ListByReferral(c.Request.Context(), actorID, referralID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, messages)
}
