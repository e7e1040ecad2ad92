package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/partaj-app/partaj-backend/internal/http/handlers"
	httpMW "github.com/partaj-app/partaj-backend/internal/http/middleware"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	AuthHandler         *httpH.AuthHandler
	UserHandler         *httpH.UserHandler
	UnitHandler         *httpH.UnitHandler
	ReferralHandler     *httpH.ReferralHandler
	ReportHandler       *httpH.ReportHandler
	MessageHandler      *httpH.MessageHandler
	SatisfactionHandler *httpH.SatisfactionHandler
	NotificationHandler *httpH.NotificationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("partaj-backend"))
	r.Use(httpMW.CORS())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
			api.POST("/logout", cfg.AuthHandler.Logout)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		// Units, topics, urgency levels
		if cfg.UnitHandler != nil {
			protected.GET("/units", cfg.UnitHandler.ListUnits)
			protected.GET("/units/mine", cfg.UnitHandler.ListMyUnits)
			protected.GET("/units/:id", cfg.UnitHandler.GetUnit)
			protected.GET("/units/:id/referrals", cfg.UnitHandler.ListUnitReferrals)
			protected.POST("/units/:id/members", cfg.UnitHandler.AddMember)
			protected.GET("/topics", cfg.UnitHandler.ListTopics)
			protected.GET("/urgencies", cfg.UnitHandler.ListUrgencies)
		}

		// Referral lifecycle
		if cfg.ReferralHandler != nil {
			protected.POST("/referrals", cfg.ReferralHandler.CreateDraft)
			protected.GET("/referrals", cfg.ReferralHandler.ListMyReferrals)
			protected.GET("/referrals/:id", cfg.ReferralHandler.GetReferral)
			protected.PUT("/referrals/:id", cfg.ReferralHandler.UpdateDraft)

			protected.POST("/referrals/:id/send", cfg.ReferralHandler.Send)
			protected.POST("/referrals/:id/assign", cfg.ReferralHandler.AssignMember)
			protected.POST("/referrals/:id/unassign", cfg.ReferralHandler.UnassignMember)
			protected.POST("/referrals/:id/assign_unit", cfg.ReferralHandler.AssignUnit)
			protected.POST("/referrals/:id/unassign_unit", cfg.ReferralHandler.UnassignUnit)
			protected.POST("/referrals/:id/add_requester", cfg.ReferralHandler.AddRequester)
			protected.POST("/referrals/:id/remove_requester", cfg.ReferralHandler.RemoveRequester)
			protected.POST("/referrals/:id/add_observer", cfg.ReferralHandler.AddObserver)
			protected.POST("/referrals/:id/remove_observer", cfg.ReferralHandler.RemoveObserver)
			protected.PUT("/referrals/:id/user_link", cfg.ReferralHandler.UpdateUserLink)
			protected.POST("/referrals/:id/change_urgencylevel", cfg.ReferralHandler.ChangeUrgencyLevel)
			protected.POST("/referrals/:id/close", cfg.ReferralHandler.Close)
		}

		// Report workflow
		if cfg.ReportHandler != nil {
			protected.GET("/referrals/:id/report", cfg.ReportHandler.GetReport)
			protected.GET("/referrals/:id/report/events", cfg.ReportHandler.ListEvents)
			protected.POST("/referrals/:id/report/versions", cfg.ReportHandler.CreateVersion)
			protected.PUT("/referrals/:id/report/versions/:versionId", cfg.ReportHandler.UpdateVersion)
			protected.POST("/referrals/:id/report/versions/:versionId/request_validation", cfg.ReportHandler.RequestValidation)
			protected.POST("/referrals/:id/report/versions/:versionId/request_change", cfg.ReportHandler.RequestChange)
			protected.POST("/referrals/:id/report/versions/:versionId/validate", cfg.ReportHandler.Validate)
			protected.POST("/referrals/:id/report/versions/:versionId/publish", cfg.ReportHandler.Publish)
		}

		// Messages
		if cfg.MessageHandler != nil {
			protected.GET("/referrals/:id/messages", cfg.MessageHandler.List)
			protected.POST("/referrals/:id/messages", cfg.MessageHandler.Send)
		}

		// Satisfaction surveys
		if cfg.SatisfactionHandler != nil {
			protected.GET("/referrals/:id/satisfaction", cfg.SatisfactionHandler.List)
			protected.POST("/referrals/:id/satisfaction/request", cfg.SatisfactionHandler.RecordRequestSurvey)
			protected.POST("/referrals/:id/satisfaction/response", cfg.SatisfactionHandler.RecordResponseSurvey)
		}

		// Notifications
		if cfg.NotificationHandler != nil {
			protected.GET("/notifications", cfg.NotificationHandler.List)
			protected.GET("/notifications/unread_count", cfg.NotificationHandler.CountUnread)
			protected.POST("/notifications/read", cfg.NotificationHandler.MarkRead)
		}
	}

	return r
}
