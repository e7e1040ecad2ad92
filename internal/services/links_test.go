package services

import (
	"testing"

	"github.com/google/uuid"

	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
)

func TestReferralLink(t *testing.T) {
	t.Parallel()

	base := "https://partaj.example.com"
	referralID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	unitID := uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

	cases := []struct {
		name     string
		audience string
		state    string
		unitID   *uuid.UUID
		want     string
	}{
		{
			name:     "draft links to the form",
			audience: LinkAudienceRequester,
			state:    refdomain.StateDraft,
			want:     base + "/new-referral/" + referralID.String(),
		},
		{
			name:     "unit member links to the unit inbox detail",
			audience: LinkAudienceUnitMember,
			state:    refdomain.StateReceived,
			unitID:   &unitID,
			want:     base + "/unit/" + unitID.String() + "/referrals-list/referral-detail/" + referralID.String(),
		},
		{
			name:     "unit member without unit falls back to sent referrals",
			audience: LinkAudienceUnitMember,
			state:    refdomain.StateReceived,
			want:     base + "/sent-referrals/referral-detail/" + referralID.String(),
		},
		{
			name:     "requester links to sent referrals",
			audience: LinkAudienceRequester,
			state:    refdomain.StateAnswered,
			want:     base + "/sent-referrals/referral-detail/" + referralID.String(),
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ReferralLink(base, tc.audience, tc.state, referralID, tc.unitID)
			if got != tc.want {
				t.Fatalf("got=%q want=%q", got, tc.want)
			}
		})
	}
}

func TestMessageLink(t *testing.T) {
	t.Parallel()

	base := "https://partaj.example.com"
	referralID := uuid.New()

	got := MessageLink(base, LinkAudienceRequester, refdomain.StateProcessing, referralID, nil)
	want := base + "/sent-referrals/referral-detail/" + referralID.String() + "/messages"
	if got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
}
