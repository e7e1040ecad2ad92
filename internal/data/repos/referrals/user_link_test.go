package referrals

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/partaj-app/partaj-backend/internal/data/repos/testutil"
	types "github.com/partaj-app/partaj-backend/internal/domain"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
)

func TestUserLinkUniquePerReferralAndUser(t *testing.T) {
	tx := testutil.Tx(t)
	log := testutil.Logger(t)
	repo := NewUserLinkRepo(tx, log)
	ctx := context.Background()

	referralID := uuid.New()
	userID := uuid.New()

	_, err := repo.Create(ctx, tx, []*types.ReferralUserLink{{
		ReferralID:    referralID,
		UserID:        userID,
		Role:          refdomain.LinkRoleRequester,
		Notifications: refdomain.NotifyAll,
	}})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	_, err = repo.Create(ctx, tx, []*types.ReferralUserLink{{
		ReferralID:    referralID,
		UserID:        userID,
		Role:          refdomain.LinkRoleObserver,
		Notifications: refdomain.NotifyRestricted,
	}})
	if err == nil {
		t.Fatal("expected uniqueness violation for duplicate pair")
	}
}

func TestUserLinkLifecycle(t *testing.T) {
	tx := testutil.Tx(t)
	log := testutil.Logger(t)
	repo := NewUserLinkRepo(tx, log)
	ctx := context.Background()

	referralID := uuid.New()
	requester := uuid.New()
	observer := uuid.New()

	_, err := repo.Create(ctx, tx, []*types.ReferralUserLink{
		{ReferralID: referralID, UserID: requester, Role: refdomain.LinkRoleRequester, Notifications: refdomain.NotifyAll},
		{ReferralID: referralID, UserID: observer, Role: refdomain.LinkRoleObserver, Notifications: refdomain.NotifyRestricted},
	})
	if err != nil {
		t.Fatalf("create links: %v", err)
	}

	count, err := repo.CountRequesters(ctx, tx, referralID)
	if err != nil {
		t.Fatalf("count requesters: %v", err)
	}
	if count != 1 {
		t.Fatalf("requester count: got=%d want=1", count)
	}

	link, err := repo.GetByReferralAndUser(ctx, tx, referralID, observer)
	if err != nil {
		t.Fatalf("get link: %v", err)
	}
	if link == nil || link.Role != refdomain.LinkRoleObserver {
		t.Fatalf("unexpected link: %+v", link)
	}

	// Promote the observer in place.
	if err := repo.Update(ctx, tx, link.ID, refdomain.LinkRoleRequester, refdomain.NotifyAll); err != nil {
		t.Fatalf("update link: %v", err)
	}
	count, err = repo.CountRequesters(ctx, tx, referralID)
	if err != nil {
		t.Fatalf("recount requesters: %v", err)
	}
	if count != 2 {
		t.Fatalf("requester count after promote: got=%d want=2", count)
	}

	if err := repo.Delete(ctx, tx, link.ID); err != nil {
		t.Fatalf("delete link: %v", err)
	}
	gone, err := repo.GetByReferralAndUser(ctx, tx, referralID, observer)
	if err != nil {
		t.Fatalf("get deleted link: %v", err)
	}
	if gone != nil {
		t.Fatalf("link still present after delete: %+v", gone)
	}
}
