package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/partaj-app/partaj-backend/internal/http/response"
	"github.com/partaj-app/partaj-backend/internal/services"
)

type UnitHandler struct {
	unitService     services.UnitService
	referralService services.ReferralService
}

func NewUnitHandler(unitService services.UnitService, referralService services.ReferralService) *UnitHandler {
	return &UnitHandler{unitService: unitService, referralService: referralService}
}

func (uh *UnitHandler) ListUnits(c *gin.Context) {
	units, err := uh.unitService.List(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, units)
}

func (uh *UnitHandler) GetUnit(c *gin.Context) {
	unitID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	unit, memberships, err := uh.unitService.Get(c.Request.Context(), unitID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"unit": unit, "memberships": memberships})
}

func (uh *UnitHandler) ListMyUnits(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	memberships, err := uh.unitService.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, memberships)
}

func (uh *UnitHandler) AddMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	unitID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, err)
		return
	}
	userID, err := parseUUIDField(req.UserID, "user_id")
	if err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, err)
		return
	}
	membership, err := uh.unitService.AddMember(c.Request.Context(), actorID, unitID, userID, req.Role)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, membership)
}

// ListUnitReferrals is the unit inbox.
func (uh *UnitHandler) ListUnitReferrals(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	unitID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	referrals, err := uh.referralService.ListForUnit(c.Request.Context(), actorID, unitID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, referrals)
}

func (uh *UnitHandler) ListTopics(c *gin.Context) {
	topics, err := uh.unitService.ListTopics(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, topics)
}

func (uh *UnitHandler) ListUrgencies(c *gin.Context) {
	urgencies, err := uh.unitService.ListUrgencies(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, urgencies)
}
