package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/partaj-app/partaj-backend/internal/http/response"
	"github.com/partaj-app/partaj-backend/internal/services"
)

type SatisfactionHandler struct {
	satisfactionService services.SatisfactionService
}

func NewSatisfactionHandler(satisfactionService services.SatisfactionService) *SatisfactionHandler {
	return &SatisfactionHandler{satisfactionService: satisfactionService}
}

func (sh *SatisfactionHandler) RecordRequestSurvey(c *gin.Context) {
	sh.record(c, sh.satisfactionService.RecordRequestSurvey)
}

func (sh *SatisfactionHandler) RecordResponseSurvey(c *gin.Context) {
	sh.record(c, sh.satisfactionService.RecordResponseSurvey)
}

func (sh *SatisfactionHandler) List(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	responses, err := sh.satisfactionService.ListByReferral(c.Request.Context(), actorID, referralID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, responses)
}

func (sh *SatisfactionHandler) record(c *gin.Context, run services.SurveyRecorder) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Choice int `json:"choice"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, err)
		return
	}
	res, err := run(c.Request.Context(), actorID, referralID, req.Choice)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, res)
}
