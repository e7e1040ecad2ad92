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

type ReportHandler struct {
	log           *logger.Logger
	reportService services.ReportService
	indexer       services.IndexerService
}

func NewReportHandler(log *logger.Logger, reportService services.ReportService, indexer services.IndexerService) *ReportHandler {
	handlerLog := log.With("handler", "ReportHandler")
	return &ReportHandler{log: handlerLog, reportService: reportService, indexer: indexer}
}

func (rh *ReportHandler) GetReport(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	report, versions, err := rh.reportService.GetByReferral(c.Request.Context(), actorID, referralID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report, "versions": versions})
}

func (rh *ReportHandler) ListEvents(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	events, err := rh.reportService.ListEvents(c.Request.Context(), actorID, referralID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, events)
}

type versionRequest struct {
	DocumentName string `json:"document_name"`
	DocumentKey  string `json:"document_key"`
	DocumentSize int64  `json:"document_size"`
}

func (rh *ReportHandler) CreateVersion(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req versionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, err)
		return
	}
	version, err := rh.reportService.CreateVersion(c.Request.Context(), actorID, referralID, services.VersionInput{
		DocumentName: req.DocumentName,
		DocumentKey:  req.DocumentKey,
		DocumentSize: req.DocumentSize,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, version)
}

func (rh *ReportHandler) UpdateVersion(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	versionID, ok := pathUUID(c, "versionId")
	if !ok {
		return
	}
	var req versionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, err)
		return
	}
	version, err := rh.reportService.UpdateVersion(c.Request.Context(), actorID, referralID, versionID, services.VersionInput{
		DocumentName: req.DocumentName,
		DocumentKey:  req.DocumentKey,
		DocumentSize: req.DocumentSize,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, version)
}

func (rh *ReportHandler) RequestValidation(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	versionID, ok := pathUUID(c, "versionId")
	if !ok {
		return
	}
	var req struct {
		Comment       string   `json:"comment"`
		TargetRole    string   `json:"target_role"`
		TargetUnitIDs []string `json:"target_unit_ids"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondErrorStatus(c, http.StatusBadRequest, err)
			return
		}
	}
	targets := services.ValidationTargets{Role: req.TargetRole}
	for _, raw := range req.TargetUnitIDs {
		id, err := parseUUIDField(raw, "target_unit_ids")
		if err != nil {
			response.RespondErrorStatus(c, http.StatusBadRequest, err)
			return
		}
		targets.UnitIDs = append(targets.UnitIDs, id)
	}
	ev, err := rh.reportService.RequestValidation(c.Request.Context(), actorID, referralID, versionID, targets, req.Comment)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, ev)
}

func (rh *ReportHandler) RequestChange(c *gin.Context) {
	rh.event(c, rh.reportService.RequestChange)
}

func (rh *ReportHandler) Validate(c *gin.Context) {
	rh.event(c, rh.reportService.Validate)
}

func (rh *ReportHandler) Publish(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	versionID, ok := pathUUID(c, "versionId")
	if !ok {
		return
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondErrorStatus(c, http.StatusBadRequest, err)
			return
		}
	}
	report, err := rh.reportService.Publish(c.Request.Context(), actorID, referralID, versionID, req.Comment)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	rh.reindex(referralID)
	response.RespondOK(c, report)
}

func (rh *ReportHandler) event(c *gin.Context, run func(ctx context.Context, actorID, referralID, versionID uuid.UUID, comment string) (*types.ReportEvent, error)) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	referralID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	versionID, ok := pathUUID(c, "versionId")
	if !ok {
		return
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondErrorStatus(c, http.StatusBadRequest, err)
			return
		}
	}
	ev, err := run(c.Request.Context(), actorID, referralID, versionID, req.Comment)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, ev)
}

func (rh *ReportHandler) reindex(referralID uuid.UUID) {
	if rh.indexer == nil {
		return
	}
	go func() {
		if err := rh.indexer.IndexReferral(context.Background(), referralID); err != nil {
			rh.log.Warn("Reindex after publish failed", "referral_id", referralID.String(), "error", err)
		}
	}()
}
