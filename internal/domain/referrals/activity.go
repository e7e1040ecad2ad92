package referrals

import (
	"time"

	"github.com/google/uuid"
)

// Activity verbs, one per transition kind. The activity stream is the
// referral's audit log: rows are created, never mutated, never deleted.
const (
	VerbCreated             = "created"
	VerbSent                = "sent"
	VerbAssigned            = "assigned"
	VerbUnassigned          = "unassigned"
	VerbAssignedUnit        = "assigned_unit"
	VerbUnassignedUnit      = "unassigned_unit"
	VerbAddedRequester      = "added_requester"
	VerbRemovedRequester    = "removed_requester"
	VerbAddedObserver       = "added_observer"
	VerbRemovedObserver     = "removed_observer"
	VerbUrgencyLevelChanged = "urgencylevel_changed"
	VerbClosed              = "closed"
	VerbVersionAdded        = "version_added"
	VerbValidationRequested = "validation_requested"
	VerbValidated           = "validated"
	VerbValidationDenied    = "validation_denied"
	VerbAnswered            = "answered"
)

// Item reference kinds for the polymorphic link carried by activities
// and notifications: a tagged (kind, id) pair instead of a generic FK.
const (
	ItemKindNone             = ""
	ItemKindUser             = "user"
	ItemKindUnit             = "unit"
	ItemKindUrgencyHistory   = "urgency_level_history"
	ItemKindReportVersion    = "report_version"
	ItemKindReportEvent      = "report_event"
	ItemKindMessage          = "message"
	ItemKindCloseExplanation = "close_explanation"
)

type ReferralActivity struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReferralID uuid.UUID  `gorm:"type:uuid;not null;index;column:referral_id" json:"referral_id"`
	ActorID    uuid.UUID  `gorm:"type:uuid;not null;column:actor_id" json:"actor_id"`
	Verb       string     `gorm:"not null;index;column:verb" json:"verb"`
	ItemKind   string     `gorm:"column:item_kind" json:"item_kind,omitempty"`
	ItemID     *uuid.UUID `gorm:"type:uuid;column:item_id" json:"item_id,omitempty"`
	// Message holds free-text attached to the transition, e.g. the
	// close explanation or the assignment explanation.
	Message   string    `gorm:"type:text;column:message" json:"message,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ReferralActivity) TableName() string {
	return "referral_activity"
}
