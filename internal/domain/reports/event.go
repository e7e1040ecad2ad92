package reports

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ReportEvent verbs. Events drive the per-version validation workflow
// layered on top of the referral lifecycle.
const (
	EventRequestValidation = "request_validation"
	EventRequestChange     = "request_change"
	EventVersionValidated  = "version_validated"
	EventVersionUpdated    = "version_updated"
	EventMessage           = "message"
)

// ReportEvent states. ACTIVE events define the version's visible
// workflow position; superseded events become OBSOLETE, events cancelled
// by a contrary action become INACTIVE.
const (
	EventStateActive   = "active"
	EventStateObsolete = "obsolete"
	EventStateInactive = "inactive"
)

// ReportEvent is an append-ordered workflow record on a report version.
// Metadata describes sender/receiver role and unit for validation
// routing.
type ReportEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReportID  uuid.UUID      `gorm:"type:uuid;not null;index;column:report_id" json:"report_id"`
	VersionID *uuid.UUID     `gorm:"type:uuid;index;column:version_id" json:"version_id,omitempty"`
	Verb      string         `gorm:"not null;index;column:verb" json:"verb"`
	State     string         `gorm:"not null;default:'active';index;column:state" json:"state"`
	ActorID   uuid.UUID      `gorm:"type:uuid;not null;column:actor_id" json:"actor_id"`
	Comment   string         `gorm:"type:text;column:comment" json:"comment,omitempty"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ReportEvent) TableName() string {
	return "report_event"
}

// EventMetadata is the decoded shape of ReportEvent.Metadata. Sender
// fields record which unit the actor spoke for; receiver fields record
// who a validation request is addressed to.
type EventMetadata struct {
	SenderRole      string      `json:"sender_role,omitempty"`
	SenderUnitID    *uuid.UUID  `json:"sender_unit_id,omitempty"`
	ReceiverRole    string      `json:"receiver_role,omitempty"`
	ReceiverUnitIDs []uuid.UUID `json:"receiver_unit_ids,omitempty"`
}

// Covers reports whether a validation request carrying this metadata
// addresses a user holding role in unitID. A request without receiver
// fields addresses nobody in particular; validation rights then fall
// back to unit owners and admins.
func (m EventMetadata) Covers(unitID uuid.UUID, role string) bool {
	if m.ReceiverRole == "" && len(m.ReceiverUnitIDs) == 0 {
		return false
	}
	if m.ReceiverRole != "" && role != m.ReceiverRole {
		return false
	}
	if len(m.ReceiverUnitIDs) == 0 {
		return true
	}
	for _, id := range m.ReceiverUnitIDs {
		if id == unitID {
			return true
		}
	}
	return false
}

// ActiveValidationRequest returns the version's open validation
// request, or nil when none is active.
func ActiveValidationRequest(events []ReportEvent) *ReportEvent {
	for i := range events {
		if events[i].Verb == EventRequestValidation && events[i].State == EventStateActive {
			return &events[i]
		}
	}
	return nil
}

// SupersededBy returns the IDs of events that must leave the ACTIVE
// state when a new event with verb lands on a version:
//
//   - a new request_validation obsoletes prior active request_validation
//     events (at most one active validation request per version);
//   - a request_change cancels active request_validation events and all
//     active version_validated events;
//   - a version_validated cancels active request_validation events but
//     leaves other validations active (concurrent validations stack).
//
// The input slice is the version's existing events; order is irrelevant.
func SupersededBy(verb string, existing []ReportEvent) []uuid.UUID {
	var out []uuid.UUID
	for _, ev := range existing {
		if ev.State != EventStateActive {
			continue
		}
		switch verb {
		case EventRequestValidation:
			if ev.Verb == EventRequestValidation {
				out = append(out, ev.ID)
			}
		case EventRequestChange:
			if ev.Verb == EventRequestValidation || ev.Verb == EventVersionValidated {
				out = append(out, ev.ID)
			}
		case EventVersionValidated:
			if ev.Verb == EventRequestValidation {
				out = append(out, ev.ID)
			}
		}
	}
	return out
}

// StateAfterSupersede maps the verb of the incoming event to the state
// the superseded events take: replaced validation requests become
// obsolete, cancelled ones inactive.
func StateAfterSupersede(incomingVerb string) string {
	if incomingVerb == EventRequestValidation {
		return EventStateObsolete
	}
	return EventStateInactive
}
