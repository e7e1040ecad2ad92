package referrals

import (
	"time"

	"github.com/google/uuid"
)

// ReferralAssignment links a referral to an individual assignee inside
// one of the assigned units. Assignees are ordered by creation time.
type ReferralAssignment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReferralID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_assignment_referral_assignee;index;column:referral_id" json:"referral_id"`
	AssigneeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_assignment_referral_assignee;column:assignee_id" json:"assignee_id"`
	UnitID      uuid.UUID `gorm:"type:uuid;not null;index;column:unit_id" json:"unit_id"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null;column:created_by_id" json:"created_by_id"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ReferralAssignment) TableName() string {
	return "referral_assignment"
}

// ReferralUnitAssignment links a referral to a unit responsible for
// answering it. A referral keeps at least one unit assignment from send
// until close.
type ReferralUnitAssignment struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReferralID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_unit_assignment_referral_unit;index;column:referral_id" json:"referral_id"`
	UnitID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_unit_assignment_referral_unit;column:unit_id" json:"unit_id"`
	CreatedByID *uuid.UUID `gorm:"type:uuid;column:created_by_id" json:"created_by_id,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (ReferralUnitAssignment) TableName() string {
	return "referral_unit_assignment"
}
