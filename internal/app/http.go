package app

import (
	"github.com/gin-gonic/gin"

	httpserver "github.com/partaj-app/partaj-backend/internal/http"
	httpH "github.com/partaj-app/partaj-backend/internal/http/handlers"
	httpMW "github.com/partaj-app/partaj-backend/internal/http/middleware"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	User         *httpH.UserHandler
	Unit         *httpH.UnitHandler
	Referral     *httpH.ReferralHandler
	Report       *httpH.ReportHandler
	Message      *httpH.MessageHandler
	Satisfaction *httpH.SatisfactionHandler
	Notification *httpH.NotificationHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(),
		Auth:         httpH.NewAuthHandler(services.Auth),
		User:         httpH.NewUserHandler(services.User),
		Unit:         httpH.NewUnitHandler(services.Unit, services.Referral),
		Referral:     httpH.NewReferralHandler(log, services.Referral, services.Indexer),
		Report:       httpH.NewReportHandler(log, services.Report, services.Indexer),
		Message:      httpH.NewMessageHandler(services.Message),
		Satisfaction: httpH.NewSatisfactionHandler(services.Satisfaction),
		Notification: httpH.NewNotificationHandler(services.Notification),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return httpserver.NewRouter(httpserver.RouterConfig{
		Log:                 log,
		AuthMiddleware:      middleware.Auth,
		HealthHandler:       handlers.Health,
		AuthHandler:         handlers.Auth,
		UserHandler:         handlers.User,
		UnitHandler:         handlers.Unit,
		ReferralHandler:     handlers.Referral,
		ReportHandler:       handlers.Report,
		MessageHandler:      handlers.Message,
		SatisfactionHandler: handlers.Satisfaction,
		NotificationHandler: handlers.Notification,
	})
}
