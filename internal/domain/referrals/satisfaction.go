package referrals

import (
	"time"

	"github.com/google/uuid"
)

// Satisfaction survey kinds. Unit members answer the "request" survey
// about the referral they received; requesters answer the "response"
// survey about the answer they got.
const (
	SurveyTypeRequest  = "request"
	SurveyTypeResponse = "response"
)

// ReferralSatisfaction records a one-time satisfaction choice. The
// unique index over (referral, user, survey type) is the duplicate
// gate: a second submission by the same identity for the same survey
// surfaces as a domain error, not a constraint violation.
type ReferralSatisfaction struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReferralID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_satisfaction_referral_user_type;index;column:referral_id" json:"referral_id"`
	SubmittedByID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_satisfaction_referral_user_type;column:submitted_by_id" json:"submitted_by_id"`
	SurveyType    string    `gorm:"not null;uniqueIndex:ux_satisfaction_referral_user_type;column:survey_type" json:"survey_type"`
	// Role the submitter held on the referral at submission time.
	Role      string    `gorm:"not null;column:role" json:"role"`
	Choice    int       `gorm:"not null;column:choice" json:"choice"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ReferralSatisfaction) TableName() string {
	return "referral_satisfaction"
}
