package search

import (
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
)

func testInput() ReferralDocumentInput {
	requester := &types.User{ID: uuid.New(), FirstName: "Marie", LastName: "Curie"}
	observer := &types.User{ID: uuid.New(), FirstName: "Paul", LastName: "Langevin"}
	unit := &types.Unit{ID: uuid.New(), Name: "DAJ"}
	sentAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	return ReferralDocumentInput{
		Referral: &types.Referral{
			ID:        uuid.New(),
			State:     refdomain.StateProcessing,
			Title:     "Data retention question",
			Object:    "Retention periods",
			Question:  "How long may logs be kept?",
			SentAt:    &sentAt,
			CreatedAt: sentAt.Add(-time.Hour),
		},
		Topic: &types.Topic{ID: uuid.New(), Name: "Privacy"},
		Urgency: &types.ReferralUrgency{
			ID:            uuid.New(),
			DurationHours: 24 * 7,
		},
		Units: []*types.Unit{unit},
		Assignments: []*types.ReferralAssignment{
			{AssigneeID: observer.ID},
		},
		Links: []*types.ReferralUserLink{
			{UserID: requester.ID, Role: refdomain.LinkRoleRequester},
			{UserID: observer.ID, Role: refdomain.LinkRoleObserver},
		},
		LinkedUsers: []*types.User{requester, observer},
	}
}

func TestBuildReferralDocument(t *testing.T) {
	t.Parallel()

	in := testInput()
	doc := BuildReferralDocument(in)

	if doc.ID != in.Referral.ID {
		t.Fatalf("id: got=%s", doc.ID)
	}
	if doc.State != refdomain.StateProcessing {
		t.Fatalf("state: got=%s", doc.State)
	}
	if doc.TopicName != "Privacy" {
		t.Fatalf("topic: got=%q", doc.TopicName)
	}
	if len(doc.UnitNames) != 1 || doc.UnitNames[0] != "DAJ" {
		t.Fatalf("unit names: %v", doc.UnitNames)
	}
	if len(doc.AssigneeIDs) != 1 {
		t.Fatalf("assignees: %v", doc.AssigneeIDs)
	}
	if len(doc.RequesterNames) != 1 || doc.RequesterNames[0] != "Marie Curie" {
		t.Fatalf("requester names: %v", doc.RequesterNames)
	}
	if doc.DueDate == nil {
		t.Fatal("due date not set")
	}
	wantDue := in.Referral.CreatedAt.Add(7 * 24 * time.Hour)
	if !doc.DueDate.Equal(wantDue) {
		t.Fatalf("due date: got=%s want=%s", doc.DueDate, wantDue)
	}
	if doc.PublishedAt != nil {
		t.Fatal("published_at set without report")
	}
}

func TestBuildReferralDocumentWithoutUrgency(t *testing.T) {
	t.Parallel()

	in := testInput()
	in.Urgency = nil
	doc := BuildReferralDocument(in)
	if doc.DueDate != nil {
		t.Fatalf("due date without urgency: %v", doc.DueDate)
	}
}

func TestBuildNoteDocument(t *testing.T) {
	t.Parallel()

	in := testInput()
	finalVersion := &types.ReferralReportVersion{
		ID:          uuid.New(),
		DocumentKey: "reports/answer-final.pdf",
		CreatedByID: uuid.New(),
	}

	if got := BuildNoteDocument(in, finalVersion); got != nil {
		t.Fatal("note built without a report")
	}

	in.Report = &types.ReferralReport{ID: uuid.New()}
	if got := BuildNoteDocument(in, finalVersion); got != nil {
		t.Fatal("note built for unpublished report")
	}

	publishedAt := time.Now()
	in.Report.FinalVersionID = &finalVersion.ID
	in.Report.PublishedAt = &publishedAt

	note := BuildNoteDocument(in, finalVersion)
	if note == nil {
		t.Fatal("expected a note document")
	}
	if note.ReferralID != in.Referral.ID {
		t.Fatalf("referral id: got=%s", note.ReferralID)
	}
	if note.DocumentKey != "reports/answer-final.pdf" {
		t.Fatalf("document key: got=%q", note.DocumentKey)
	}
	if note.AuthorID != finalVersion.CreatedByID {
		t.Fatalf("author: got=%s", note.AuthorID)
	}
	if note.TopicName != "Privacy" {
		t.Fatalf("topic: got=%q", note.TopicName)
	}

	if got := BuildNoteDocument(in, nil); got != nil {
		t.Fatal("note built without final version")
	}
}
