package services

import (
	"testing"

	"github.com/google/uuid"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	notifdomain "github.com/partaj-app/partaj-backend/internal/domain/notifications"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
	unitsdomain "github.com/partaj-app/partaj-backend/internal/domain/units"
)

func TestPreferenceAllows(t *testing.T) {
	t.Parallel()

	cases := []struct {
		preference       string
		notificationType string
		want             bool
	}{
		{refdomain.NotifyAll, notifdomain.TypeNewMessage, true},
		{refdomain.NotifyAll, notifdomain.TypeReferralAnswered, true},
		{refdomain.NotifyRestricted, notifdomain.TypeReferralAnswered, true},
		{refdomain.NotifyRestricted, notifdomain.TypeReferralClosed, true},
		{refdomain.NotifyRestricted, notifdomain.TypeRequesterAdded, true},
		{refdomain.NotifyRestricted, notifdomain.TypeObserverAdded, true},
		{refdomain.NotifyRestricted, notifdomain.TypeUrgencyLevelChanged, true},
		{refdomain.NotifyRestricted, notifdomain.TypeNewMessage, false},
		{refdomain.NotifyRestricted, notifdomain.TypeReferralAssigned, false},
		{refdomain.NotifyRestricted, notifdomain.TypeVersionAdded, false},
		{refdomain.NotifyNone, notifdomain.TypeReferralAnswered, false},
		{refdomain.NotifyNone, notifdomain.TypeNewMessage, false},
		{"", notifdomain.TypeReferralAnswered, false},
	}
	for _, tc := range cases {
		if got := PreferenceAllows(tc.preference, tc.notificationType); got != tc.want {
			t.Errorf("PreferenceAllows(%s, %s): got=%v want=%v", tc.preference, tc.notificationType, got, tc.want)
		}
	}
}

func TestLinkedRecipientsExcludesActorAndMuted(t *testing.T) {
	t.Parallel()

	actor := uuid.New()
	all := uuid.New()
	restricted := uuid.New()
	muted := uuid.New()

	links := []*types.ReferralUserLink{
		{UserID: actor, Notifications: refdomain.NotifyAll},
		{UserID: all, Notifications: refdomain.NotifyAll},
		{UserID: restricted, Notifications: refdomain.NotifyRestricted},
		{UserID: muted, Notifications: refdomain.NotifyNone},
	}

	got := LinkedRecipients(notifdomain.TypeNewMessage, links, actor)
	if len(got) != 1 || got[0] != all {
		t.Fatalf("new_message recipients: %v", got)
	}

	got = LinkedRecipients(notifdomain.TypeReferralAnswered, links, actor)
	if len(got) != 2 || got[0] != all || got[1] != restricted {
		t.Fatalf("referral_answered recipients: %v", got)
	}
}

func TestUnitRecipientsOwnersAndAdminsOnly(t *testing.T) {
	t.Parallel()

	actor := uuid.New()
	owner := uuid.New()
	admin := uuid.New()
	member := uuid.New()

	memberships := []*types.UnitMembership{
		{UserID: owner, Role: unitsdomain.RoleOwner},
		{UserID: admin, Role: unitsdomain.RoleAdmin},
		{UserID: member, Role: unitsdomain.RoleMember},
		{UserID: actor, Role: unitsdomain.RoleOwner},
		// Same admin through a second assigned unit.
		{UserID: admin, Role: unitsdomain.RoleAdmin},
	}

	got := UnitRecipients(memberships, actor)
	if len(got) != 2 || got[0] != owner || got[1] != admin {
		t.Fatalf("unit recipients: %v", got)
	}
}

func TestMergeRecipients(t *testing.T) {
	t.Parallel()

	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	got := MergeRecipients([]uuid.UUID{a, b}, []uuid.UUID{b, c}, nil, []uuid.UUID{a})
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Fatalf("merged recipients: %v", got)
	}

	if got := MergeRecipients(); got != nil {
		t.Fatalf("expected nil for no sets, got %v", got)
	}
}
