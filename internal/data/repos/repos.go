package repos

import (
	"gorm.io/gorm"

	"github.com/partaj-app/partaj-backend/internal/data/repos/auth"
	"github.com/partaj-app/partaj-backend/internal/data/repos/notifications"
	"github.com/partaj-app/partaj-backend/internal/data/repos/referrals"
	"github.com/partaj-app/partaj-backend/internal/data/repos/reports"
	"github.com/partaj-app/partaj-backend/internal/data/repos/units"
	"github.com/partaj-app/partaj-backend/internal/data/repos/users"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type UserRepo = users.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type UnitRepo = units.UnitRepo
type MembershipRepo = units.MembershipRepo
type TopicRepo = units.TopicRepo

type ReferralRepo = referrals.ReferralRepo
type UserLinkRepo = referrals.UserLinkRepo
type AssignmentRepo = referrals.AssignmentRepo
type UnitAssignmentRepo = referrals.UnitAssignmentRepo
type ActivityRepo = referrals.ActivityRepo
type UrgencyRepo = referrals.UrgencyRepo
type UrgencyHistoryRepo = referrals.UrgencyHistoryRepo
type MessageRepo = referrals.MessageRepo
type SatisfactionRepo = referrals.SatisfactionRepo

type ReportRepo = reports.ReportRepo
type VersionRepo = reports.VersionRepo
type EventRepo = reports.EventRepo
type PublishmentRepo = reports.PublishmentRepo

type NotificationRepo = notifications.NotificationRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return users.NewUserRepo(db, baseLog)
}
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewUnitRepo(db *gorm.DB, baseLog *logger.Logger) UnitRepo {
	return units.NewUnitRepo(db, baseLog)
}
func NewMembershipRepo(db *gorm.DB, baseLog *logger.Logger) MembershipRepo {
	return units.NewMembershipRepo(db, baseLog)
}
func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return units.NewTopicRepo(db, baseLog)
}

func NewReferralRepo(db *gorm.DB, baseLog *logger.Logger) ReferralRepo {
	return referrals.NewReferralRepo(db, baseLog)
}
func NewUserLinkRepo(db *gorm.DB, baseLog *logger.Logger) UserLinkRepo {
	return referrals.NewUserLinkRepo(db, baseLog)
}
func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return referrals.NewAssignmentRepo(db, baseLog)
}
func NewUnitAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) UnitAssignmentRepo {
	return referrals.NewUnitAssignmentRepo(db, baseLog)
}
func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return referrals.NewActivityRepo(db, baseLog)
}
func NewUrgencyRepo(db *gorm.DB, baseLog *logger.Logger) UrgencyRepo {
	return referrals.NewUrgencyRepo(db, baseLog)
}
func NewUrgencyHistoryRepo(db *gorm.DB, baseLog *logger.Logger) UrgencyHistoryRepo {
	return referrals.NewUrgencyHistoryRepo(db, baseLog)
}
func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return referrals.NewMessageRepo(db, baseLog)
}
func NewSatisfactionRepo(db *gorm.DB, baseLog *logger.Logger) SatisfactionRepo {
	return referrals.NewSatisfactionRepo(db, baseLog)
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return reports.NewReportRepo(db, baseLog)
}
func NewVersionRepo(db *gorm.DB, baseLog *logger.Logger) VersionRepo {
	return reports.NewVersionRepo(db, baseLog)
}
func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return reports.NewEventRepo(db, baseLog)
}
func NewPublishmentRepo(db *gorm.DB, baseLog *logger.Logger) PublishmentRepo {
	return reports.NewPublishmentRepo(db, baseLog)
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return notifications.NewNotificationRepo(db, baseLog)
}
