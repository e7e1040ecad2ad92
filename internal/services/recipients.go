package services

import (
	"github.com/google/uuid"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	notifdomain "github.com/partaj-app/partaj-backend/internal/domain/notifications"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
)

// restrictedTypes is the subset of notification types delivered to
// links with the RESTRICTED preference. Everything else (messages,
// assignment churn) only reaches links with ALL.
var restrictedTypes = map[string]struct{}{
	notifdomain.TypeRequesterAdded:      {},
	notifdomain.TypeObserverAdded:       {},
	notifdomain.TypeUrgencyLevelChanged: {},
	notifdomain.TypeReferralAnswered:    {},
	notifdomain.TypeReferralClosed:      {},
}

// PreferenceAllows reports whether a link preference lets a
// notification of the given type through.
func PreferenceAllows(preference, notificationType string) bool {
	switch preference {
	case refdomain.NotifyAll:
		return true
	case refdomain.NotifyRestricted:
		_, ok := restrictedTypes[notificationType]
		return ok
	default:
		return false
	}
}

// LinkedRecipients computes the requester-facing recipient set: every
// user link whose preference admits the notification type, minus the
// acting user.
func LinkedRecipients(notificationType string, links []*types.ReferralUserLink, actorID uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, link := range links {
		if link.UserID == actorID {
			continue
		}
		if !PreferenceAllows(link.Notifications, notificationType) {
			continue
		}
		out = append(out, link.UserID)
	}
	return out
}

// UnitRecipients computes the unit-facing recipient set: owners and
// admins of the assigned units, deduplicated across units, minus the
// acting user. Plain members never receive unit-facing notifications.
func UnitRecipients(memberships []*types.UnitMembership, actorID uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, m := range memberships {
		if m.UserID == actorID {
			continue
		}
		if !m.IsOwnerOrAdmin() {
			continue
		}
		if _, dup := seen[m.UserID]; dup {
			continue
		}
		seen[m.UserID] = struct{}{}
		out = append(out, m.UserID)
	}
	return out
}

// MergeRecipients unions recipient sets preserving first-seen order.
func MergeRecipients(sets ...[]uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, set := range sets {
		for _, id := range set {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
