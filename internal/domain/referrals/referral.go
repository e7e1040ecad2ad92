package referrals

import (
	"time"

	"github.com/google/uuid"
)

// Referral lifecycle states. A referral only ever moves between them
// through the guarded operations in transitions.go.
const (
	StateDraft        = "draft"
	StateReceived     = "received"
	StateAssigned     = "assigned"
	StateProcessing   = "processing"
	StateInValidation = "in_validation"
	StateAnswered     = "answered"
	StateClosed       = "closed"
	StateIncomplete   = "incomplete"
)

const (
	StatusNormal    = "10_n"
	StatusSensitive = "90_s"
)

type Referral struct {
	ID    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	State string    `gorm:"not null;index;column:state" json:"state"`
	// Status flags sensitive referrals for restricted visibility. It is
	// orthogonal to State.
	Status string `gorm:"not null;default:'10_n';column:status" json:"status"`

	TopicID        *uuid.UUID `gorm:"type:uuid;index;column:topic_id" json:"topic_id,omitempty"`
	UrgencyLevelID *uuid.UUID `gorm:"type:uuid;column:urgency_level_id" json:"urgency_level_id,omitempty"`

	Title              string `gorm:"column:title" json:"title"`
	Object             string `gorm:"column:object" json:"object"`
	Question           string `gorm:"type:text;column:question" json:"question"`
	Context            string `gorm:"type:text;column:context" json:"context"`
	PriorWork          string `gorm:"type:text;column:prior_work" json:"prior_work"`
	UrgencyExplanation string `gorm:"type:text;column:urgency_explanation" json:"urgency_explanation"`

	SentAt    *time.Time `gorm:"column:sent_at" json:"sent_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Referral) TableName() string {
	return "referral"
}

// DueDate derives the answer deadline from the urgency duration.
func (r *Referral) DueDate(urgency *ReferralUrgency) *time.Time {
	if urgency == nil {
		return nil
	}
	due := r.CreatedAt.Add(urgency.Duration())
	return &due
}
