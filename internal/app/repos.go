package app

import (
	"gorm.io/gorm"

	"github.com/partaj-app/partaj-backend/internal/data/repos"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo

	Unit       repos.UnitRepo
	Membership repos.MembershipRepo
	Topic      repos.TopicRepo

	Referral       repos.ReferralRepo
	UserLink       repos.UserLinkRepo
	Assignment     repos.AssignmentRepo
	UnitAssignment repos.UnitAssignmentRepo
	Activity       repos.ActivityRepo
	Urgency        repos.UrgencyRepo
	UrgencyHistory repos.UrgencyHistoryRepo
	Message        repos.MessageRepo
	Satisfaction   repos.SatisfactionRepo

	Report      repos.ReportRepo
	Version     repos.VersionRepo
	Event       repos.EventRepo
	Publishment repos.PublishmentRepo

	Notification repos.NotificationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),

		Unit:       repos.NewUnitRepo(db, log),
		Membership: repos.NewMembershipRepo(db, log),
		Topic:      repos.NewTopicRepo(db, log),

		Referral:       repos.NewReferralRepo(db, log),
		UserLink:       repos.NewUserLinkRepo(db, log),
		Assignment:     repos.NewAssignmentRepo(db, log),
		UnitAssignment: repos.NewUnitAssignmentRepo(db, log),
		Activity:       repos.NewActivityRepo(db, log),
		Urgency:        repos.NewUrgencyRepo(db, log),
		UrgencyHistory: repos.NewUrgencyHistoryRepo(db, log),
		Message:        repos.NewMessageRepo(db, log),
		Satisfaction:   repos.NewSatisfactionRepo(db, log),

		Report:      repos.NewReportRepo(db, log),
		Version:     repos.NewVersionRepo(db, log),
		Event:       repos.NewEventRepo(db, log),
		Publishment: repos.NewPublishmentRepo(db, log),

		Notification: repos.NewNotificationRepo(db, log),
	}
}
