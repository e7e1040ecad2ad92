// Package search builds the flat documents pushed to the search index.
// Builders are pure: they read loaded models and return a document, so
// indexing behavior is testable without a database or an index.
package search

import (
	"time"

	"github.com/google/uuid"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
)

// ReferralDocument is the index representation of a referral, denormalized
// so unit inboxes can filter and sort without joins.
type ReferralDocument struct {
	ID             uuid.UUID   `json:"id"`
	CaseNumber     string      `json:"case_number"`
	State          string      `json:"state"`
	Title          string      `json:"title"`
	Object         string      `json:"object"`
	Question       string      `json:"question"`
	TopicName      string      `json:"topic_name"`
	UnitIDs        []uuid.UUID `json:"unit_ids"`
	UnitNames      []string    `json:"unit_names"`
	AssigneeIDs    []uuid.UUID `json:"assignee_ids"`
	RequesterNames []string    `json:"requester_names"`
	DueDate        *time.Time  `json:"due_date,omitempty"`
	SentAt         *time.Time  `json:"sent_at,omitempty"`
	PublishedAt    *time.Time  `json:"published_at,omitempty"`
}

// ReferralDocumentInput bundles the preloaded relations of one referral.
type ReferralDocumentInput struct {
	Referral    *types.Referral
	Topic       *types.Topic
	Urgency     *types.ReferralUrgency
	Units       []*types.Unit
	Assignments []*types.ReferralAssignment
	Links       []*types.ReferralUserLink
	LinkedUsers []*types.User
	Report      *types.ReferralReport
}

func BuildReferralDocument(in ReferralDocumentInput) ReferralDocument {
	doc := ReferralDocument{
		ID:         in.Referral.ID,
		CaseNumber: in.Referral.ID.String(),
		State:      in.Referral.State,
		Title:      in.Referral.Title,
		Object:     in.Referral.Object,
		Question:   in.Referral.Question,
		SentAt:     in.Referral.SentAt,
		DueDate:    in.Referral.DueDate(in.Urgency),
	}
	if in.Topic != nil {
		doc.TopicName = in.Topic.Name
	}
	for _, u := range in.Units {
		doc.UnitIDs = append(doc.UnitIDs, u.ID)
		doc.UnitNames = append(doc.UnitNames, u.Name)
	}
	for _, a := range in.Assignments {
		doc.AssigneeIDs = append(doc.AssigneeIDs, a.AssigneeID)
	}

	usersByID := map[uuid.UUID]*types.User{}
	for _, u := range in.LinkedUsers {
		usersByID[u.ID] = u
	}
	for _, link := range in.Links {
		if link.Role != refdomain.LinkRoleRequester {
			continue
		}
		if u, ok := usersByID[link.UserID]; ok {
			doc.RequesterNames = append(doc.RequesterNames, u.FullName())
		}
	}

	if in.Report != nil {
		doc.PublishedAt = in.Report.PublishedAt
	}
	return doc
}

// NoteDocument is the knowledge-base entry for one published answer.
// Only answered referrals produce notes.
type NoteDocument struct {
	ReferralID  uuid.UUID  `json:"referral_id"`
	Title       string     `json:"title"`
	TopicName   string     `json:"topic_name"`
	UnitNames   []string   `json:"unit_names"`
	DocumentKey string     `json:"document_key"`
	AuthorID    uuid.UUID  `json:"author_id"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// BuildNoteDocument returns nil when the report has no published final
// version yet.
func BuildNoteDocument(in ReferralDocumentInput, finalVersion *types.ReferralReportVersion) *NoteDocument {
	if in.Report == nil || !in.Report.IsPublished() || finalVersion == nil {
		return nil
	}
	doc := &NoteDocument{
		ReferralID:  in.Referral.ID,
		Title:       in.Referral.Title,
		DocumentKey: finalVersion.DocumentKey,
		AuthorID:    finalVersion.CreatedByID,
		PublishedAt: in.Report.PublishedAt,
	}
	if in.Topic != nil {
		doc.TopicName = in.Topic.Name
	}
	for _, u := range in.Units {
		doc.UnitNames = append(doc.UnitNames, u.Name)
	}
	return doc
}
