package referrals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/partaj-app/partaj-backend/internal/data/repos/testutil"
	types "github.com/partaj-app/partaj-backend/internal/domain"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
)

func TestReferralRoundTrip(t *testing.T) {
	tx := testutil.Tx(t)
	log := testutil.Logger(t)
	repo := NewReferralRepo(tx, log)
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.Referral{{
		State:    refdomain.StateDraft,
		Status:   refdomain.StatusNormal,
		Title:    "Question on procurement",
		Object:   "Procurement thresholds",
		Question: "Which threshold applies?",
	}})
	if err != nil {
		t.Fatalf("create referral: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("unexpected create result: %+v", created)
	}
	referralID := created[0].ID

	loaded, err := repo.GetByID(ctx, tx, referralID)
	if err != nil {
		t.Fatalf("get referral: %v", err)
	}
	if loaded == nil || loaded.Title != "Question on procurement" {
		t.Fatalf("unexpected referral: %+v", loaded)
	}
	if loaded.State != refdomain.StateDraft {
		t.Fatalf("unexpected state: %s", loaded.State)
	}

	sentAt := time.Now().UTC().Truncate(time.Millisecond)
	if err := repo.MarkSent(ctx, tx, referralID, sentAt); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	loaded, err = repo.GetByID(ctx, tx, referralID)
	if err != nil {
		t.Fatalf("reload referral: %v", err)
	}
	if loaded.State != refdomain.StateReceived {
		t.Fatalf("state after mark sent: %s", loaded.State)
	}
	if loaded.SentAt == nil {
		t.Fatal("sent_at not set")
	}

	if err := repo.UpdateState(ctx, tx, referralID, refdomain.StateAssigned); err != nil {
		t.Fatalf("update state: %v", err)
	}

	listed, err := repo.ListByStates(ctx, tx, []string{refdomain.StateAssigned})
	if err != nil {
		t.Fatalf("list by states: %v", err)
	}
	found := false
	for _, r := range listed {
		if r.ID == referralID {
			found = true
		}
	}
	if !found {
		t.Fatal("referral missing from state listing")
	}
}

func TestReferralGetByIDMissing(t *testing.T) {
	tx := testutil.Tx(t)
	log := testutil.Logger(t)
	repo := NewReferralRepo(tx, log)

	got, err := repo.GetByID(context.Background(), tx, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing referral, got %+v", got)
	}
}
