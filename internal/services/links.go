package services

import (
	"fmt"

	"github.com/google/uuid"

	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
)

// Recipient relationships for deep-link computation. A requester lands
// on their sent-referrals view, a unit member on the unit inbox.
const (
	LinkAudienceRequester  = "requester"
	LinkAudienceUnitMember = "unit_member"
)

// ReferralLink builds the absolute URL a notification email points at.
// Draft referrals have no routable detail page yet, so they link to the
// draft form instead.
func ReferralLink(baseURL, audience, state string, referralID uuid.UUID, unitID *uuid.UUID) string {
	if state == refdomain.StateDraft {
		return fmt.Sprintf("%s/new-referral/%s", baseURL, referralID)
	}
	if audience == LinkAudienceUnitMember && unitID != nil {
		return fmt.Sprintf("%s/unit/%s/referrals-list/referral-detail/%s", baseURL, *unitID, referralID)
	}
	return fmt.Sprintf("%s/sent-referrals/referral-detail/%s", baseURL, referralID)
}

// MessageLink appends the messages tab to the referral detail link.
func MessageLink(baseURL, audience, state string, referralID uuid.UUID, unitID *uuid.UUID) string {
	return ReferralLink(baseURL, audience, state, referralID, unitID) + "/messages"
}
