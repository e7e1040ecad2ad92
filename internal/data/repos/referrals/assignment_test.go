package referrals

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/partaj-app/partaj-backend/internal/data/repos/testutil"
	types "github.com/partaj-app/partaj-backend/internal/domain"
)

func TestAssignmentUniquePerReferralAndAssignee(t *testing.T) {
	tx := testutil.Tx(t)
	log := testutil.Logger(t)
	repo := NewAssignmentRepo(tx, log)
	ctx := context.Background()

	referralID := uuid.New()
	assigneeID := uuid.New()
	unitID := uuid.New()
	actorID := uuid.New()

	_, err := repo.Create(ctx, tx, []*types.ReferralAssignment{{
		ReferralID:  referralID,
		AssigneeID:  assigneeID,
		UnitID:      unitID,
		CreatedByID: actorID,
	}})
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	_, err = repo.Create(ctx, tx, []*types.ReferralAssignment{{
		ReferralID:  referralID,
		AssigneeID:  assigneeID,
		UnitID:      unitID,
		CreatedByID: actorID,
	}})
	if err == nil {
		t.Fatal("expected uniqueness violation for duplicate assignee")
	}
}

func TestAssignmentCountsAndDelete(t *testing.T) {
	tx := testutil.Tx(t)
	log := testutil.Logger(t)
	repo := NewAssignmentRepo(tx, log)
	ctx := context.Background()

	referralID := uuid.New()
	unitA := uuid.New()
	unitB := uuid.New()
	actorID := uuid.New()

	created, err := repo.Create(ctx, tx, []*types.ReferralAssignment{
		{ReferralID: referralID, AssigneeID: uuid.New(), UnitID: unitA, CreatedByID: actorID},
		{ReferralID: referralID, AssigneeID: uuid.New(), UnitID: unitA, CreatedByID: actorID},
		{ReferralID: referralID, AssigneeID: uuid.New(), UnitID: unitB, CreatedByID: actorID},
	})
	if err != nil {
		t.Fatalf("create assignments: %v", err)
	}

	total, err := repo.CountByReferral(ctx, tx, referralID)
	if err != nil {
		t.Fatalf("count by referral: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 assignments, got %d", total)
	}

	inUnitA, err := repo.CountByReferralAndUnit(ctx, tx, referralID, unitA)
	if err != nil {
		t.Fatalf("count by referral and unit: %v", err)
	}
	if inUnitA != 2 {
		t.Fatalf("expected 2 assignments in unit, got %d", inUnitA)
	}

	if err := repo.Delete(ctx, tx, created[0].ID); err != nil {
		t.Fatalf("delete assignment: %v", err)
	}
	remaining, err := repo.ListByReferral(ctx, tx, referralID)
	if err != nil {
		t.Fatalf("list by referral: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 assignments after delete, got %d", len(remaining))
	}
}

func TestUnitAssignmentUniquePerReferralAndUnit(t *testing.T) {
	tx := testutil.Tx(t)
	log := testutil.Logger(t)
	repo := NewUnitAssignmentRepo(tx, log)
	ctx := context.Background()

	referralID := uuid.New()
	unitID := uuid.New()
	actorID := uuid.New()

	_, err := repo.Create(ctx, tx, []*types.ReferralUnitAssignment{{
		ReferralID:  referralID,
		UnitID:      unitID,
		CreatedByID: &actorID,
	}})
	if err != nil {
		t.Fatalf("create unit assignment: %v", err)
	}

	_, err = repo.Create(ctx, tx, []*types.ReferralUnitAssignment{{
		ReferralID:  referralID,
		UnitID:      unitID,
		CreatedByID: &actorID,
	}})
	if err == nil {
		t.Fatal("expected uniqueness violation for duplicate unit")
	}
}
