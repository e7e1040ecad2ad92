package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Notification types, one per fan-out event kind. Each type maps to a
// mail template and a recipient policy in the notifier service.
const (
	TypeReferralSent           = "referral_sent"
	TypeReferralAssigned       = "referral_assigned"
	TypeReferralUnitAssigned   = "referral_unit_assigned"
	TypeReferralUnitUnassigned = "referral_unit_unassigned"
	TypeRequesterAdded         = "requester_added"
	TypeObserverAdded          = "observer_added"
	TypeUrgencyLevelChanged    = "urgencylevel_changed"
	TypeNewMessage             = "new_message"
	TypeValidationRequested    = "validation_requested"
	TypeValidationPerformed    = "validation_performed"
	TypeVersionAdded           = "version_added"
	TypeReferralAnswered       = "referral_answered"
	TypeReferralClosed         = "referral_closed"
)

// Notification is the persisted in-app counterpart of one email send:
// who triggered it, who receives it, and the referral-scoped item it
// points at.
type Notification struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	NotificationType string     `gorm:"not null;index;column:notification_type" json:"notification_type"`
	NotifierID       uuid.UUID  `gorm:"type:uuid;not null;column:notifier_id" json:"notifier_id"`
	NotifiedID       uuid.UUID  `gorm:"type:uuid;not null;index;column:notified_id" json:"notified_id"`
	ReferralID       uuid.UUID  `gorm:"type:uuid;not null;index;column:referral_id" json:"referral_id"`
	ItemKind         string     `gorm:"column:item_kind" json:"item_kind,omitempty"`
	ItemID           *uuid.UUID `gorm:"type:uuid;column:item_id" json:"item_id,omitempty"`
	ReadAt           *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt        time.Time  `gorm:"not null;default:now();index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notification"
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
