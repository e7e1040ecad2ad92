package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/http/response"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
	"github.com/partaj-app/partaj-backend/internal/services"
)

type ReferralHandler struct {
	log             *logger.Logger
	referralService services.ReferralService
	indexer         services.IndexerService
}

func NewReferralHandler(log *logger.Logger, referralService services.ReferralService, indexer services.IndexerService) *ReferralHandler {
	handlerLog := log.With("handler", "ReferralHandler")
	return &ReferralHandler{log: handlerLog, referralService: referralService, indexer: indexer}
}

type draftRequest struct {
	Title              string `json:"title"`
	Object             string `json:"object"`
	Question           string `json:"question"`
	Context            string `json:"context"`
	PriorWork          string `json:"prior_work"`
	TopicID            string `json:"topic_id"`
	UrgencyLevelID     string `json:"urgency_level_id"`
	UrgencyExplanation string `json:"urgency_explanation"`
}

func (req draftRequest) toInput() (services.CreateDraftInput, error) {
	in := services.CreateDraftInput{
		Title:              req.Title,
		Object:             req.Object,
		Question:           req.Question,
		Context:            req.Context,
		PriorWork:          req.PriorWork,
		UrgencyExplanation: req.UrgencyExplanation,
	}
	if req.TopicID != "" {
		id, err := parseUUIDField(req.TopicID, "topic_id")
		if err != nil {
			return in, err
		}
		in.TopicID = &id
	}
	if req.UrgencyLevelID != "" {
		id, err := parseUUIDField(req.UrgencyLevelID, "urgency_level_id")
		if err != nil {
			return in, err
		}
		in.UrgencyLevelID = &id
	}
	return in, nil
}

func (rh *ReferralHandler) CreateDraft(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, err)
		return
	}
	referral, err := rh.referralService.CreateDraft(c.Request.Context(), actorID, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, referral)
}

func (rh *ReferralHandler) UpdateDraft(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, err)
		return
	}
	referral, err := rh.referralService.UpdateDraft(c.Request.Context(), actorID, referralID, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, referral)
}

func (rh *ReferralHandler) GetReferral(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	referral, err := rh.referralService.GetByID(c.Request.Context(), actorID, referralID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, referral)
}

func (rh *ReferralHandler) ListMyReferrals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	referrals, err := rh.referralService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, referrals)
}

func (rh *ReferralHandler) Send(c *gin.Context) {
	rh.action(c, func(ctx context.Context, actorID, referralID uuid.UUID, _ actionRequest) (*types.Referral, error) {
		return rh.referralService.Send(ctx, actorID, referralID)
	})
}

func (rh *ReferralHandler) AssignMember(c *gin.Context) {
	rh.action(c, func(ctx context.Context, actorID, referralID uuid.UUID, req actionRequest) (*types.Referral, error) {
		assigneeID, err := parseUUIDField(req.AssigneeID, "assignee_id")
		if err != nil {
			return nil, err
		}
		unitID, err := parseUUIDField(req.UnitID, "unit_id")
		if err != nil {
			return nil, err
		}
		return rh.referralService.AssignMember(ctx, actorID, referralID, assigneeID, unitID)
	})
}

func (rh *ReferralHandler) UnassignMember(c *gin.Context) {
	rh.action(c, func(ctx context.Context, actorID, referralID uuid.UUID, req actionRequest) (*types.Referral, error) {
		assigneeID, err := parseUUIDField(req.AssigneeID, "assignee_id")
		if err != nil {
			return nil, err
		}
		return rh.referralService.UnassignMember(ctx, actorID, referralID, assigneeID)
	})
}

func (rh *ReferralHandler) AssignUnit(c *gin.Context) {
	rh.action(c, func(ctx context.Context, actorID, referralID uuid.UUID, req actionRequest) (*types.Referral, error) {
		unitID, err := parseUUIDField(req.UnitID, "unit_id")
		if err != nil {
			return nil, err
		}
		return rh.referralService.AssignUnit(ctx, actorID, referralID, unitID, req.Explanation)
	})
}

func (rh *ReferralHandler) UnassignUnit(c *gin.Context) {
	rh.action(c, func(ctx context.Context, actorID, referralID uuid.UUID, req actionRequest) (*types.Referral, error) {
		unitID, err := parseUUIDField(req.UnitID, "unit_id")
		if err != nil {
			return nil, err
		}
		return rh.referralService.UnassignUnit(ctx, actorID, referralID, unitID)
	})
}

func (rh *ReferralHandler) AddRequester(c *gin.Context) {
	rh.action(c, func(ctx context.Context, actorID, referralID uuid.UUID, req actionRequest) (*types.Referral, error) {
		userID, err := parseUUIDField(req.UserID, "user_id")
		if err != nil {
			return nil, err
		}
		return rh.referralService.AddRequester(ctx, actorID, referralID, userID, req.Notifications)
	})
}

func (rh *ReferralHandler) RemoveRequester(c *gin.Context) {
	rh.action(c, func(ctx context.Context, actorID, referralID uuid.UUID, req actionRequest) (*types.Referral, error) {
		userID, err := parseUUIDField(req.UserID, "user_id")
		if err != nil {
			return nil, err
		}
		return rh.referralService.RemoveRequester(ctx, actorID, referralID, userID)
	})
}

func (rh *ReferralHandler) AddObserver(c *gin.Context) {
	rh.action(c, func(ctx context.Context, actorID, referralID uuid.UUID, req actionRequest) (*types.Referral, error) {
		userID, err := parseUUIDField(req.UserID, "user_id")
		if err != nil {
			return nil, err
		}
		return rh.referralService.AddObserver(ctx, actorID, referralID, userID, req.Notifications)
	})
}

func (rh *ReferralHandler) RemoveObserver(c *gin.Context) {
	rh.action(c, func(ctx context.Context, actorID, referralID uuid.UUID, req actionRequest) (*types.Referral, error) {
		userID, err := parseUUIDField(req.UserID, "user_id")
		if err != nil {
			return nil, err
		}
		return rh.referralService.RemoveObserver(ctx, actorID, referralID, userID)
	})
}

func (rh *ReferralHandler) UpdateUserLink(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Role          string `json:"role"`
		Notifications string `json:"notifications"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, err)
		return
	}
	link, err := rh.referralService.UpdateUserLink(c.Request.Context(), actorID, referralID, req.Role, req.Notifications)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, link)
}

func (rh *ReferralHandler) ChangeUrgencyLevel(c *gin.Context) {
	rh.action(c, func(ctx context.Context, actorID, referralID uuid.UUID, req actionRequest) (*types.Referral, error) {
		urgencyLevelID, err := parseUUIDField(req.UrgencyLevelID, "urgency_level_id")
		if err != nil {
			return nil, err
		}
		return rh.referralService.ChangeUrgencyLevel(ctx, actorID, referralID, urgencyLevelID, req.Explanation)
	})
}

func (rh *ReferralHandler) Close(c *gin.Context) {
	rh.action(c, func(ctx context.Context, actorID, referralID uuid.UUID, req actionRequest) (*types.Referral, error) {
		return rh.referralService.CloseReferral(ctx, actorID, referralID, req.Explanation)
	})
}

// actionRequest is the union of bodies accepted by the action endpoints.
// Each action reads only the fields it needs.
type actionRequest struct {
	AssigneeID     string `json:"assignee_id"`
	UnitID         string `json:"unit_id"`
	UserID         string `json:"user_id"`
	UrgencyLevelID string `json:"urgency_level_id"`
	Notifications  string `json:"notifications"`
	Explanation    string `json:"explanation"`
}

func (rh *ReferralHandler) action(c *gin.Context, run func(ctx context.Context, actorID, referralID uuid.UUID, req actionRequest) (*types.Referral, error)) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req actionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondErrorStatus(c, http.StatusBadRequest, err)
			return
		}
	}
	referral, err := run(c.Request.Context(), actorID, referralID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	rh.reindex(referralID)
	response.RespondOK(c, referral)
}

// reindex refreshes the search document off the request path.
func (rh *ReferralHandler) reindex(referralID uuid.UUID) {
	if rh.indexer == nil {
		return
	}
	go func() {
		if err := rh.indexer.IndexReferral(context.Background(), referralID); err != nil {
			rh.log.Warn("Reindex after action failed", "referral_id", referralID.String(), "error", err)
		}
	}()
}
