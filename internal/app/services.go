package app

import (
	"gorm.io/gorm"

	redisclient "github.com/partaj-app/partaj-backend/internal/clients/redis"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
	"github.com/partaj-app/partaj-backend/internal/platform/sendgrid"
	"github.com/partaj-app/partaj-backend/internal/services"
)

type Services struct {
	Auth services.AuthService
	User services.UserService
	Unit services.UnitService

	Activity services.ActivityService
	Notifier services.NotifierService
	Mailer   services.MailerService

	Referral     services.ReferralService
	Report       services.ReportService
	Message      services.MessageService
	Satisfaction services.SatisfactionService
	Notification services.NotificationService

	Indexer services.IndexerService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, indexBus redisclient.IndexBus) Services {
	log.Info("Wiring services...")

	authService := services.NewAuthService(
		db, log,
		reposet.User, reposet.UserToken,
		cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)
	userService := services.NewUserService(db, log, reposet.User)
	unitService := services.NewUnitService(
		db, log,
		reposet.Unit, reposet.Membership, reposet.Topic, reposet.Urgency, reposet.User,
	)

	mailClient, err := sendgrid.NewFromEnv(log)
	if err != nil {
		// Notifications still land in the database; only email is skipped.
		log.Warn("SendGrid client unavailable, email delivery disabled", "error", err)
		mailClient = nil
	}
	templates := services.DefaultMailTemplates()
	if cfg.MailTemplatesPath != "" {
		loaded, err := services.LoadMailTemplates(cfg.MailTemplatesPath)
		if err != nil {
			log.Warn("Mail template load failed, using defaults", "path", cfg.MailTemplatesPath, "error", err)
		} else {
			templates = loaded
		}
	}
	mailerService := services.NewMailerService(log, mailClient, templates)

	notifierService := services.NewNotifierService(
		db, log,
		reposet.User, reposet.UserLink, reposet.UnitAssignment, reposet.Membership, reposet.Notification,
		mailerService, cfg.FrontendBaseURL,
	)
	activityService := services.NewActivityService(db, log, reposet.Activity)

	referralService := services.NewReferralService(
		db, log,
		reposet.Referral, reposet.User, reposet.Unit, reposet.Topic, reposet.Membership,
		reposet.UserLink, reposet.Assignment, reposet.UnitAssignment,
		reposet.Urgency, reposet.UrgencyHistory, reposet.Report,
		activityService, notifierService,
	)
	reportService := services.NewReportService(
		db, log,
		reposet.Referral, reposet.Report, reposet.Version, reposet.Event, reposet.Publishment,
		reposet.Membership, reposet.UnitAssignment,
		activityService, notifierService,
	)
	messageService := services.NewMessageService(
		db, log,
		reposet.Referral, reposet.Message, reposet.UserLink, reposet.Membership, reposet.UnitAssignment,
		notifierService,
	)
	satisfactionService := services.NewSatisfactionService(
		db, log,
		reposet.Referral, reposet.Satisfaction, reposet.UserLink, reposet.Membership, reposet.UnitAssignment,
	)
	notificationService := services.NewNotificationService(db, log, reposet.Notification)

	var indexerService services.IndexerService
	if indexBus != nil {
		indexerService = services.NewIndexerService(
			db, log,
			reposet.Referral, reposet.Topic, reposet.Unit, reposet.Urgency,
			reposet.Assignment, reposet.UnitAssignment, reposet.UserLink, reposet.User,
			reposet.Report, reposet.Version,
			indexBus,
		)
	}

	return Services{
		Auth:         authService,
		User:         userService,
		Unit:         unitService,
		Activity:     activityService,
		Notifier:     notifierService,
		Mailer:       mailerService,
		Referral:     referralService,
		Report:       reportService,
		Message:      messageService,
		Satisfaction: satisfactionService,
		Notification: notificationService,
		Indexer:      indexerService,
	}
}
