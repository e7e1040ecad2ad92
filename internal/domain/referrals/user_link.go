package referrals

import (
	"time"

	"github.com/google/uuid"
)

// Participant roles on a referral.
const (
	LinkRoleRequester = "requester"
	LinkRoleObserver  = "observer"
)

// Per-user notification preferences. ALL receives every applicable
// event, RESTRICTED a narrower subset, NONE nothing at all.
const (
	NotifyAll        = "all"
	NotifyRestricted = "restricted"
	NotifyNone       = "none"
)

// DefaultNotifyFor returns the notification preference applied when a
// user is linked without an explicit choice.
func DefaultNotifyFor(role string) string {
	if role == LinkRoleObserver {
		return NotifyRestricted
	}
	return NotifyAll
}

// ReferralUserLink joins a user to a referral with a role and a
// notification preference. One row per (user, referral) pair; the role
// may be converted in place (observer promoted to requester) but a pair
// is never duplicated.
type ReferralUserLink struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReferralID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_user_link_referral_user;index;column:referral_id" json:"referral_id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_user_link_referral_user;index;column:user_id" json:"user_id"`
	Role          string     `gorm:"not null;column:role" json:"role"`
	Notifications string     `gorm:"not null;column:notifications" json:"notifications"`
	CreatedByID   *uuid.UUID `gorm:"type:uuid;column:created_by_id" json:"created_by_id,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (ReferralUserLink) TableName() string {
	return "referral_user_link"
}
