package domain

import (
	"github.com/partaj-app/partaj-backend/internal/domain/auth"
	"github.com/partaj-app/partaj-backend/internal/domain/notifications"
	"github.com/partaj-app/partaj-backend/internal/domain/referrals"
	"github.com/partaj-app/partaj-backend/internal/domain/reports"
	"github.com/partaj-app/partaj-backend/internal/domain/units"
	"github.com/partaj-app/partaj-backend/internal/domain/users"
)

type User = users.User
type UserToken = auth.UserToken

type Unit = units.Unit
type UnitMembership = units.UnitMembership
type Topic = units.Topic

type Referral = referrals.Referral
type ReferralUserLink = referrals.ReferralUserLink
type ReferralAssignment = referrals.ReferralAssignment
type ReferralUnitAssignment = referrals.ReferralUnitAssignment
type ReferralUrgency = referrals.ReferralUrgency
type ReferralUrgencyLevelHistory = referrals.ReferralUrgencyLevelHistory
type ReferralActivity = referrals.ReferralActivity
type ReferralMessage = referrals.ReferralMessage
type ReferralSatisfaction = referrals.ReferralSatisfaction

type ReferralReport = reports.ReferralReport
type ReferralReportVersion = reports.ReferralReportVersion
type ReferralReportPublishment = reports.ReferralReportPublishment
type ReportEvent = reports.ReportEvent

type Notification = notifications.Notification
