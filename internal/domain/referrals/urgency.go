package referrals

import (
	"time"

	"github.com/google/uuid"
)

// ReferralUrgency is static reference data: how long the answer may
// take and whether picking this level requires a written justification.
type ReferralUrgency struct {
	ID                    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name                  string    `gorm:"not null;column:name" json:"name"`
	DurationHours         int       `gorm:"not null;column:duration_hours" json:"duration_hours"`
	RequiresJustification bool      `gorm:"not null;default:false;column:requires_justification" json:"requires_justification"`
	IsDefault             bool      `gorm:"not null;default:false;column:is_default" json:"is_default"`
	// Index orders urgency levels in pick lists, most urgent first.
	Index     int       `gorm:"not null;default:0;column:index" json:"index"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ReferralUrgency) TableName() string {
	return "referral_urgency"
}

func (u *ReferralUrgency) Duration() time.Duration {
	return time.Duration(u.DurationHours) * time.Hour
}

// ReferralUrgencyLevelHistory records each urgency change with its
// justification. Rows are append-only.
type ReferralUrgencyLevelHistory struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReferralID        uuid.UUID  `gorm:"type:uuid;not null;index;column:referral_id" json:"referral_id"`
	OldUrgencyLevelID *uuid.UUID `gorm:"type:uuid;column:old_urgency_level_id" json:"old_urgency_level_id,omitempty"`
	NewUrgencyLevelID uuid.UUID  `gorm:"type:uuid;not null;column:new_urgency_level_id" json:"new_urgency_level_id"`
	Explanation       string     `gorm:"type:text;not null;column:explanation" json:"explanation"`
	ChangedByID       uuid.UUID  `gorm:"type:uuid;not null;column:changed_by_id" json:"changed_by_id"`
	CreatedAt         time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (ReferralUrgencyLevelHistory) TableName() string {
	return "referral_urgency_level_history"
}
