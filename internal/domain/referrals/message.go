package referrals

import (
	"time"

	"github.com/google/uuid"
)

// ReferralMessage is one entry in the requester / unit-member exchange
// attached to a referral.
type ReferralMessage struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReferralID uuid.UUID `gorm:"type:uuid;not null;index;column:referral_id" json:"referral_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;column:user_id" json:"user_id"`
	Content    string    `gorm:"type:text;not null;column:content" json:"content"`
	CreatedAt  time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ReferralMessage) TableName() string {
	return "referral_message"
}
