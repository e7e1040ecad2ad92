package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partaj-app/partaj-backend/internal/data/repos"
	types "github.com/partaj-app/partaj-backend/internal/domain"
	notifdomain "github.com/partaj-app/partaj-backend/internal/domain/notifications"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
	unitsdomain "github.com/partaj-app/partaj-backend/internal/domain/units"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

// CreateDraftInput carries the fields a requester fills in before
// sending. Everything is optional while the referral stays in draft.
type CreateDraftInput struct {
	Title              string
	Object             string
	Question           string
	Context            string
	PriorWork          string
	TopicID            *uuid.UUID
	UrgencyLevelID     *uuid.UUID
	UrgencyExplanation string
}

// ReferralService is the transition engine. Every operation loads the
// referral, checks the state guard and the actor's role, mutates
// relations, appends exactly one activity, all inside one transaction;
// the notification fan-out runs only after the transaction commits.
type ReferralService interface {
	CreateDraft(ctx context.Context, actorID uuid.UUID, in CreateDraftInput) (*types.Referral, error)
	UpdateDraft(ctx context.Context, actorID, referralID uuid.UUID, in CreateDraftInput) (*types.Referral, error)
	GetByID(ctx context.Context, actorID, referralID uuid.UUID) (*types.Referral, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Referral, error)
	ListForUnit(ctx context.Context, actorID, unitID uuid.UUID) ([]*types.Referral, error)

	Send(ctx context.Context, actorID, referralID uuid.UUID) (*types.Referral, error)
	AssignMember(ctx context.Context, actorID, referralID, assigneeID, unitID uuid.UUID) (*types.Referral, error)
	UnassignMember(ctx context.Context, actorID, referralID, assigneeID uuid.UUID) (*types.Referral, error)
	AssignUnit(ctx context.Context, actorID, referralID, unitID uuid.UUID, explanation string) (*types.Referral, error)
	UnassignUnit(ctx context.Context, actorID, referralID, unitID uuid.UUID) (*types.Referral, error)
	AddRequester(ctx context.Context, actorID, referralID, userID uuid.UUID, notifications string) (*types.Referral, error)
	RemoveRequester(ctx context.Context, actorID, referralID, userID uuid.UUID) (*types.Referral, error)
	AddObserver(ctx context.Context, actorID, referralID, userID uuid.UUID, notifications string) (*types.Referral, error)
	RemoveObserver(ctx context.Context, actorID, referralID, userID uuid.UUID) (*types.Referral, error)
	UpdateUserLink(ctx context.Context, actorID, referralID uuid.UUID, role, notifications string) (*types.ReferralUserLink, error)
	ChangeUrgencyLevel(ctx context.Context, actorID, referralID, urgencyLevelID uuid.UUID, explanation string) (*types.Referral, error)
	CloseReferral(ctx context.Context, actorID, referralID uuid.UUID, explanation string) (*types.Referral, error)
}

type referralService struct {
	db  *gorm.DB
	log *logger.Logger

	referralRepo       repos.ReferralRepo
	userRepo           repos.UserRepo
	unitRepo           repos.UnitRepo
	topicRepo          repos.TopicRepo
	membershipRepo     repos.MembershipRepo
	userLinkRepo       repos.UserLinkRepo
	assignmentRepo     repos.AssignmentRepo
	unitAssignmentRepo repos.UnitAssignmentRepo
	urgencyRepo        repos.UrgencyRepo
	urgencyHistoryRepo repos.UrgencyHistoryRepo
	reportRepo         repos.ReportRepo

	activityService ActivityService
	notifier        NotifierService
}

func NewReferralService(
	db *gorm.DB,
	log *logger.Logger,
	referralRepo repos.ReferralRepo,
	userRepo repos.UserRepo,
	unitRepo repos.UnitRepo,
	topicRepo repos.TopicRepo,
	membershipRepo repos.MembershipRepo,
	userLinkRepo repos.UserLinkRepo,
	assignmentRepo repos.AssignmentRepo,
	unitAssignmentRepo repos.UnitAssignmentRepo,
	urgencyRepo repos.UrgencyRepo,
	urgencyHistoryRepo repos.UrgencyHistoryRepo,
	reportRepo repos.ReportRepo,
	activityService ActivityService,
	notifier NotifierService,
) ReferralService {
	serviceLog := log.With("service", "ReferralService")
	return &referralService{
		db:                 db,
		log:                serviceLog,
		referralRepo:       referralRepo,
		userRepo:           userRepo,
		unitRepo:           unitRepo,
		topicRepo:          topicRepo,
		membershipRepo:     membershipRepo,
		userLinkRepo:       userLinkRepo,
		assignmentRepo:     assignmentRepo,
		unitAssignmentRepo: unitAssignmentRepo,
		urgencyRepo:        urgencyRepo,
		urgencyHistoryRepo: urgencyHistoryRepo,
		reportRepo:         reportRepo,
		activityService:    activityService,
		notifier:           notifier,
	}
}

func (rs *referralService) CreateDraft(ctx context.Context, actorID uuid.UUID, in CreateDraftInput) (*types.Referral, error) {
	var created *types.Referral
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral := &types.Referral{
			State:              refdomain.StateDraft,
			Status:             refdomain.StatusNormal,
			Title:              in.Title,
			Object:             in.Object,
			Question:           in.Question,
			Context:            in.Context,
			PriorWork:          in.PriorWork,
			TopicID:            in.TopicID,
			UrgencyLevelID:     in.UrgencyLevelID,
			UrgencyExplanation: in.UrgencyExplanation,
		}
		referrals, err := rs.referralRepo.Create(ctx, tx, []*types.Referral{referral})
		if err != nil {
			return fmt.Errorf("create referral: %w", err)
		}
		created = referrals[0]

		link := &types.ReferralUserLink{
			ReferralID:    created.ID,
			UserID:        actorID,
			Role:          refdomain.LinkRoleRequester,
			Notifications: refdomain.NotifyAll,
			CreatedByID:   &actorID,
		}
		if _, err := rs.userLinkRepo.Create(ctx, tx, []*types.ReferralUserLink{link}); err != nil {
			return fmt.Errorf("link creator: %w", err)
		}

		_, err = rs.activityService.Record(ctx, tx, created.ID, actorID, refdomain.VerbCreated, refdomain.ItemKindNone, nil, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (rs *referralService) UpdateDraft(ctx context.Context, actorID, referralID uuid.UUID, in CreateDraftInput) (*types.Referral, error) {
	var updated *types.Referral
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := rs.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if referral.State != refdomain.StateDraft {
			return refdomain.NewTransitionError("update_draft", referral.State)
		}
		if err := rs.requireRequester(ctx, tx, referralID, actorID); err != nil {
			return err
		}

		fields := map[string]any{
			"title":               in.Title,
			"object":              in.Object,
			"question":            in.Question,
			"context":             in.Context,
			"prior_work":          in.PriorWork,
			"urgency_explanation": in.UrgencyExplanation,
		}
		if in.TopicID != nil {
			fields["topic_id"] = *in.TopicID
		}
		if in.UrgencyLevelID != nil {
			fields["urgency_level_id"] = *in.UrgencyLevelID
		}
		if err := rs.referralRepo.UpdateFields(ctx, tx, referralID, fields); err != nil {
			return fmt.Errorf("update draft: %w", err)
		}
		updated, err = rs.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (rs *referralService) GetByID(ctx context.Context, actorID, referralID uuid.UUID) (*types.Referral, error) {
	referral, err := rs.loadReferral(ctx, nil, referralID)
	if err != nil {
		return nil, err
	}
	if err := rs.requireParticipant(ctx, nil, referralID, actorID); err != nil {
		return nil, err
	}
	return referral, nil
}

func (rs *referralService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Referral, error) {
	links, err := rs.userLinkRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list user links: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.ReferralID)
	}
	if len(ids) == 0 {
		return []*types.Referral{}, nil
	}
	return rs.referralRepo.ListByIDs(ctx, nil, ids)
}

func (rs *referralService) ListForUnit(ctx context.Context, actorID, unitID uuid.UUID) ([]*types.Referral, error) {
	membership, err := rs.membershipRepo.GetByUserAndUnit(ctx, nil, actorID, unitID)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	if membership == nil {
		return nil, refdomain.NewAuthorizationError("user %s is not a member of unit %s", actorID, unitID)
	}

	assignments, err := rs.unitAssignmentRepo.ListByUnit(ctx, nil, unitID)
	if err != nil {
		return nil, fmt.Errorf("list unit assignments: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ReferralID)
	}
	if len(ids) == 0 {
		return []*types.Referral{}, nil
	}
	return rs.referralRepo.ListByIDs(ctx, nil, ids)
}

// Send moves a draft to RECEIVED: validates required fields and the
// urgency justification, stamps sent_at, routes the referral to the
// topic's unit, and opens the report container.
func (rs *referralService) Send(ctx context.Context, actorID, referralID uuid.UUID) (*types.Referral, error) {
	var sent *types.Referral
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := rs.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(refdomain.OpSend, referral.State); err != nil {
			return err
		}
		if err := rs.requireRequester(ctx, tx, referralID, actorID); err != nil {
			return err
		}
		if strings.TrimSpace(referral.Question) == "" || strings.TrimSpace(referral.Object) == "" {
			return refdomain.NewValidationError("object and question are required to send a referral")
		}
		if referral.TopicID == nil {
			return refdomain.NewValidationError("topic is required to send a referral")
		}

		topics, err := rs.topicRepo.GetByIDs(ctx, tx, []uuid.UUID{*referral.TopicID})
		if err != nil {
			return fmt.Errorf("load topic: %w", err)
		}
		if len(topics) == 0 {
			return refdomain.NewInvalidReferenceError("topic", referral.TopicID.String())
		}
		topic := topics[0]

		urgency, err := rs.resolveUrgency(ctx, tx, referral)
		if err != nil {
			return err
		}
		if urgency.RequiresJustification && strings.TrimSpace(referral.UrgencyExplanation) == "" {
			return refdomain.NewValidationError("urgency level %s requires a justification", urgency.Name)
		}
		if referral.UrgencyLevelID == nil {
			if err := rs.referralRepo.UpdateFields(ctx, tx, referralID, map[string]any{"urgency_level_id": urgency.ID}); err != nil {
				return fmt.Errorf("set default urgency: %w", err)
			}
		}

		if err := rs.referralRepo.MarkSent(ctx, tx, referralID, time.Now()); err != nil {
			return fmt.Errorf("mark sent: %w", err)
		}

		unitAssignment := &types.ReferralUnitAssignment{
			ReferralID:  referralID,
			UnitID:      topic.UnitID,
			CreatedByID: &actorID,
		}
		if _, err := rs.unitAssignmentRepo.Create(ctx, tx, []*types.ReferralUnitAssignment{unitAssignment}); err != nil {
			return fmt.Errorf("route to topic unit: %w", err)
		}

		report := &types.ReferralReport{ReferralID: referralID}
		if _, err := rs.reportRepo.Create(ctx, tx, []*types.ReferralReport{report}); err != nil {
			return fmt.Errorf("open report: %w", err)
		}

		if _, err := rs.activityService.Record(ctx, tx, referralID, actorID, refdomain.VerbSent, refdomain.ItemKindNone, nil, ""); err != nil {
			return err
		}

		sent, err = rs.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}

	rs.notifier.Notify(ctx, NotifyInput{
		Type:          notifdomain.TypeReferralSent,
		Referral:      sent,
		ActorID:       actorID,
		IncludeLinked: true,
		IncludeUnits:  true,
	})
	return sent, nil
}

// AssignMember appends an assignee. An already-assigned referral stays
// in ASSIGNED; existing assignees are never displaced.
func (rs *referralService) AssignMember(ctx context.Context, actorID, referralID, assigneeID, unitID uuid.UUID) (*types.Referral, error) {
	var assigned *types.Referral
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := rs.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(refdomain.OpAssign, referral.State); err != nil {
			return err
		}
		if err := rs.requireUnitOrganizer(ctx, tx, referralID, actorID); err != nil {
			return err
		}

		unitAssignment, err := rs.unitAssignmentRepo.GetByReferralAndUnit(ctx, tx, referralID, unitID)
		if err != nil {
			return fmt.Errorf("load unit assignment: %w", err)
		}
		if unitAssignment == nil {
			return refdomain.NewInvalidReferenceError("unit", unitID.String())
		}

		membership, err := rs.membershipRepo.GetByUserAndUnit(ctx, tx, assigneeID, unitID)
		if err != nil {
			return fmt.Errorf("load assignee membership: %w", err)
		}
		if membership == nil {
			return refdomain.NewInvalidReferenceError("user", assigneeID.String())
		}

		existing, err := rs.assignmentRepo.GetByReferralAndAssignee(ctx, tx, referralID, assigneeID)
		if err != nil {
			return fmt.Errorf("check assignment: %w", err)
		}
		if existing != nil {
			return refdomain.NewDuplicateLinkError(fmt.Sprintf("user %s is already assigned to this referral", assigneeID))
		}

		assignment := &types.ReferralAssignment{
			ReferralID:  referralID,
			AssigneeID:  assigneeID,
			UnitID:      unitID,
			CreatedByID: actorID,
		}
		if _, err := rs.assignmentRepo.Create(ctx, tx, []*types.ReferralAssignment{assignment}); err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}

		if referral.State == refdomain.StateReceived {
			if err := rs.referralRepo.UpdateState(ctx, tx, referralID, refdomain.StateAssigned); err != nil {
				return fmt.Errorf("update state: %w", err)
			}
		}

		if _, err := rs.activityService.Record(ctx, tx, referralID, actorID, refdomain.VerbAssigned, refdomain.ItemKindUser, &assigneeID, ""); err != nil {
			return err
		}

		assigned, err = rs.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}

	rs.notifier.Notify(ctx, NotifyInput{
		Type:     notifdomain.TypeReferralAssigned,
		Referral: assigned,
		ActorID:  actorID,
		Direct:   []uuid.UUID{assigneeID},
	})
	return assigned, nil
}

// UnassignMember removes an assignee. The referral reverts from
// ASSIGNED to RECEIVED only when no assignee remains at all.
func (rs *referralService) UnassignMember(ctx context.Context, actorID, referralID, assigneeID uuid.UUID) (*types.Referral, error) {
	var updated *types.Referral
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := rs.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(refdomain.OpUnassign, referral.State); err != nil {
			return err
		}
		if err := rs.requireUnitOrganizer(ctx, tx, referralID, actorID); err != nil {
			return err
		}

		assignment, err := rs.assignmentRepo.GetByReferralAndAssignee(ctx, tx, referralID, assigneeID)
		if err != nil {
			return fmt.Errorf("load assignment: %w", err)
		}
		if assignment == nil {
			return refdomain.NewInvalidReferenceError("assignment", assigneeID.String())
		}
		if err := rs.assignmentRepo.Delete(ctx, tx, assignment.ID); err != nil {
			return fmt.Errorf("delete assignment: %w", err)
		}

		remaining, err := rs.assignmentRepo.CountByReferral(ctx, tx, referralID)
		if err != nil {
			return fmt.Errorf("count assignments: %w", err)
		}
		if remaining == 0 && referral.State == refdomain.StateAssigned {
			if err := rs.referralRepo.UpdateState(ctx, tx, referralID, refdomain.StateReceived); err != nil {
				return fmt.Errorf("update state: %w", err)
			}
		}

		if _, err := rs.activityService.Record(ctx, tx, referralID, actorID, refdomain.VerbUnassigned, refdomain.ItemKindUser, &assigneeID, ""); err != nil {
			return err
		}

		updated, err = rs.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (rs *referralService) AssignUnit(ctx context.Context, actorID, referralID, unitID uuid.UUID, explanation string) (*types.Referral, error) {
	var updated *types.Referral
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := rs.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(refdomain.OpAssignUnit, referral.State); err != nil {
			return err
		}
		if err := rs.requireUnitOrganizer(ctx, tx, referralID, actorID); err != nil {
			return err
		}

		units, err := rs.unitRepo.GetByIDs(ctx, tx, []uuid.UUID{unitID})
		if err != nil {
			return fmt.Errorf("load unit: %w", err)
		}
		if len(units) == 0 {
			return refdomain.NewInvalidReferenceError("unit", unitID.String())
		}

		existing, err := rs.unitAssignmentRepo.GetByReferralAndUnit(ctx, tx, referralID, unitID)
		if err != nil {
			return fmt.Errorf("check unit assignment: %w", err)
		}
		if existing != nil {
			return refdomain.NewDuplicateLinkError(fmt.Sprintf("unit %s is already assigned to this referral", unitID))
		}

		assignment := &types.ReferralUnitAssignment{
			ReferralID:  referralID,
			UnitID:      unitID,
			CreatedByID: &actorID,
		}
		if _, err := rs.unitAssignmentRepo.Create(ctx, tx, []*types.ReferralUnitAssignment{assignment}); err != nil {
			return fmt.Errorf("create unit assignment: %w", err)
		}

		if _, err := rs.activityService.Record(ctx, tx, referralID, actorID, refdomain.VerbAssignedUnit, refdomain.ItemKindUnit, &unitID, explanation); err != nil {
			return err
		}

		updated, err = rs.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}

	recipients := rs.unitOrganizers(ctx, unitID)
	rs.notifier.Notify(ctx, NotifyInput{
		Type:     notifdomain.TypeReferralUnitAssigned,
		Referral: updated,
		ActorID:  actorID,
		Direct:   recipients,
		TemplateData: map[string]any{
			"assignment_explanation": explanation,
		},
	})
	return updated, nil
}

func (rs *referralService) UnassignUnit(ctx context.Context, actorID, referralID, unitID uuid.UUID) (*types.Referral, error) {
	var updated *types.Referral
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := rs.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(refdomain.OpUnassignUnit, referral.State); err != nil {
			return err
		}
		if err := rs.requireUnitOrganizer(ctx, tx, referralID, actorID); err != nil {
			return err
		}

		assignment, err := rs.unitAssignmentRepo.GetByReferralAndUnit(ctx, tx, referralID, unitID)
		if err != nil {
			return fmt.Errorf("load unit assignment: %w", err)
		}
		if assignment == nil {
			return refdomain.NewInvalidReferenceError("unit assignment", unitID.String())
		}

		total, err := rs.unitAssignmentRepo.CountByReferral(ctx, tx, referralID)
		if err != nil {
			return fmt.Errorf("count unit assignments: %w", err)
		}
		if total <= 1 {
			return refdomain.NewValidationError("cannot unassign the only unit from a referral")
		}

		assignees, err := rs.assignmentRepo.CountByReferralAndUnit(ctx, tx, referralID, unitID)
		if err != nil {
			return fmt.Errorf("count unit assignees: %w", err)
		}
		if assignees > 0 {
			return refdomain.NewValidationError("cannot unassign a unit that still has assigned members")
		}

		if err := rs.unitAssignmentRepo.Delete(ctx, tx, assignment.ID); err != nil {
			return fmt.Errorf("delete unit assignment: %w", err)
		}

		if _, err := rs.activityService.Record(ctx, tx, referralID, actorID, refdomain.VerbUnassignedUnit, refdomain.ItemKindUnit, &unitID, ""); err != nil {
			return err
		}

		updated, err = rs.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}

	recipients := rs.unitOrganizers(ctx, unitID)
	rs.notifier.Notify(ctx, NotifyInput{
		Type:     notifdomain.TypeReferralUnitUnassigned,
		Referral: updated,
		ActorID:  actorID,
		Direct:   recipients,
	})
	return updated, nil
}

// AddRequester links a user as requester. An existing observer link is
// converted in place and its restricted default dropped; an existing
// requester link is never rewritten on someone else's behalf.
func (rs *referralService) AddRequester(ctx context.Context, actorID, referralID, userID uuid.UUID, notifications string) (*types.Referral, error) {
	referral, err := rs.addLink(ctx, actorID, referralID, userID, refdomain.LinkRoleRequester, notifications, refdomain.OpAddRequester, refdomain.VerbAddedRequester)
	if err != nil {
		return nil, err
	}

	rs.notifier.Notify(ctx, NotifyInput{
		Type:     notifdomain.TypeRequesterAdded,
		Referral: referral,
		ActorID:  actorID,
		Direct:   []uuid.UUID{userID},
	})
	return referral, nil
}

func (rs *referralService) AddObserver(ctx context.Context, actorID, referralID, userID uuid.UUID, notifications string) (*types.Referral, error) {
	referral, err := rs.addLink(ctx, actorID, referralID, userID, refdomain.LinkRoleObserver, notifications, refdomain.OpAddObserver, refdomain.VerbAddedObserver)
	if err != nil {
		return nil, err
	}

	rs.notifier.Notify(ctx, NotifyInput{
		Type:     notifdomain.TypeObserverAdded,
		Referral: referral,
		ActorID:  actorID,
		Direct:   []uuid.UUID{userID},
	})
	return referral, nil
}

func (rs *referralService) addLink(ctx context.Context, actorID, referralID, userID uuid.UUID, role, notifications, op, verb string) (*types.Referral, error) {
	var updated *types.Referral
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := rs.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(op, referral.State); err != nil {
			return err
		}
		if err := rs.requireParticipant(ctx, tx, referralID, actorID); err != nil {
			return err
		}

		found, err := rs.userRepo.GetByIDs(ctx, tx, []uuid.UUID{userID})
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if len(found) == 0 {
			return refdomain.NewInvalidReferenceError("user", userID.String())
		}

		if notifications == "" {
			notifications = refdomain.DefaultNotifyFor(role)
		}

		existing, err := rs.userLinkRepo.GetByReferralAndUser(ctx, tx, referralID, userID)
		if err != nil {
			return fmt.Errorf("check user link: %w", err)
		}

		switch {
		case existing == nil:
			link := &types.ReferralUserLink{
				ReferralID:    referralID,
				UserID:        userID,
				Role:          role,
				Notifications: notifications,
				CreatedByID:   &actorID,
			}
			if _, err := rs.userLinkRepo.Create(ctx, tx, []*types.ReferralUserLink{link}); err != nil {
				return fmt.Errorf("create user link: %w", err)
			}
		case existing.Role == refdomain.LinkRoleObserver && role == refdomain.LinkRoleRequester:
			// Promotion replaces the observer's restricted default.
			if err := rs.userLinkRepo.Update(ctx, tx, existing.ID, role, refdomain.NotifyAll); err != nil {
				return fmt.Errorf("promote observer: %w", err)
			}
		case existing.Role == role && existing.Notifications == notifications:
			return refdomain.NewDuplicateLinkError(fmt.Sprintf("user %s is already linked to this referral as %s", userID, role))
		case actorID == userID:
			if err := rs.userLinkRepo.Update(ctx, tx, existing.ID, role, notifications); err != nil {
				return fmt.Errorf("update own link: %w", err)
			}
		default:
			return refdomain.NewAuthorizationError(
				"user %s may not change the notification preference of user %s", actorID, userID,
			)
		}

		if _, err := rs.activityService.Record(ctx, tx, referralID, actorID, verb, refdomain.ItemKindUser, &userID, ""); err != nil {
			return err
		}

		updated, err = rs.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveRequester drops a requester link. The last requester can never
// be removed: a referral without any requester would be orphaned.
func (rs *referralService) RemoveRequester(ctx context.Context, actorID, referralID, userID uuid.UUID) (*types.Referral, error) {
	return rs.removeLink(ctx, actorID, referralID, userID, refdomain.LinkRoleRequester, refdomain.OpRemoveRequester, refdomain.VerbRemovedRequester)
}

func (rs *referralService) RemoveObserver(ctx context.Context, actorID, referralID, userID uuid.UUID) (*types.Referral, error) {
	return rs.removeLink(ctx, actorID, referralID, userID, refdomain.LinkRoleObserver, refdomain.OpRemoveObserver, refdomain.VerbRemovedObserver)
}

func (rs *referralService) removeLink(ctx context.Context, actorID, referralID, userID uuid.UUID, role, op, verb string) (*types.Referral, error) {
	var updated *types.Referral
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := rs.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(op, referral.State); err != nil {
			return err
		}
		if err := rs.requireParticipant(ctx, tx, referralID, actorID); err != nil {
			return err
		}

		link, err := rs.userLinkRepo.GetByReferralAndUser(ctx, tx, referralID, userID)
		if err != nil {
			return fmt.Errorf("load user link: %w", err)
		}
		if link == nil || link.Role != role {
			return refdomain.NewInvalidReferenceError(role+" link", userID.String())
		}

		if role == refdomain.LinkRoleRequester {
			requesters, err := rs.userLinkRepo.CountRequesters(ctx, tx, referralID)
			if err != nil {
				return fmt.Errorf("count requesters: %w", err)
			}
			if requesters <= 1 {
				return refdomain.NewValidationError("cannot remove the last requester from a referral")
			}
		}

		if err := rs.userLinkRepo.Delete(ctx, tx, link.ID); err != nil {
			return fmt.Errorf("delete user link: %w", err)
		}

		if _, err := rs.activityService.Record(ctx, tx, referralID, actorID, verb, refdomain.ItemKindUser, &userID, ""); err != nil {
			return err
		}

		updated, err = rs.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateUserLink lets a user change their own role or notification
// preference; it never touches anyone else's link.
func (rs *referralService) UpdateUserLink(ctx context.Context, actorID, referralID uuid.UUID, role, notifications string) (*types.ReferralUserLink, error) {
	var updated *types.ReferralUserLink
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := rs.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(refdomain.OpUpdateUserLink, referral.State); err != nil {
			return err
		}

		link, err := rs.userLinkRepo.GetByReferralAndUser(ctx, tx, referralID, actorID)
		if err != nil {
			return fmt.Errorf("load user link: %w", err)
		}
		if link == nil {
			return refdomain.NewAuthorizationError("user %s is not linked to this referral", actorID)
		}

		if role == "" {
			role = link.Role
		}
		if notifications == "" {
			notifications = link.Notifications
		}
		if role != refdomain.LinkRoleRequester && role != refdomain.LinkRoleObserver {
			return refdomain.NewValidationError("unknown link role %q", role)
		}
		switch notifications {
		case refdomain.NotifyAll, refdomain.NotifyRestricted, refdomain.NotifyNone:
		default:
			return refdomain.NewValidationError("unknown notification preference %q", notifications)
		}

		if err := rs.userLinkRepo.Update(ctx, tx, link.ID, role, notifications); err != nil {
			return fmt.Errorf("update user link: %w", err)
		}
		updated, err = rs.userLinkRepo.GetByReferralAndUser(ctx, tx, referralID, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (rs *referralService) ChangeUrgencyLevel(ctx context.Context, actorID, referralID, urgencyLevelID uuid.UUID, explanation string) (*types.Referral, error) {
	var updated *types.Referral
	var historyID uuid.UUID
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := rs.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(refdomain.OpChangeUrgencyLevel, referral.State); err != nil {
			return err
		}
		if err := rs.requireUnitOrganizer(ctx, tx, referralID, actorID); err != nil {
			return err
		}
		if strings.TrimSpace(explanation) == "" {
			return refdomain.NewValidationError("an explanation is required to change the urgency level")
		}

		urgency, err := rs.urgencyRepo.GetByID(ctx, tx, urgencyLevelID)
		if err != nil {
			return fmt.Errorf("load urgency: %w", err)
		}
		if urgency == nil {
			return refdomain.NewInvalidReferenceError("urgency level", urgencyLevelID.String())
		}

		history := &types.ReferralUrgencyLevelHistory{
			ReferralID:        referralID,
			OldUrgencyLevelID: referral.UrgencyLevelID,
			NewUrgencyLevelID: urgencyLevelID,
			Explanation:       explanation,
			ChangedByID:       actorID,
		}
		entries, err := rs.urgencyHistoryRepo.Create(ctx, tx, []*types.ReferralUrgencyLevelHistory{history})
		if err != nil {
			return fmt.Errorf("record urgency history: %w", err)
		}
		historyID = entries[0].ID

		if err := rs.referralRepo.UpdateFields(ctx, tx, referralID, map[string]any{"urgency_level_id": urgencyLevelID}); err != nil {
			return fmt.Errorf("update urgency: %w", err)
		}

		if _, err := rs.activityService.Record(ctx, tx, referralID, actorID, refdomain.VerbUrgencyLevelChanged, refdomain.ItemKindUrgencyHistory, &historyID, explanation); err != nil {
			return err
		}

		updated, err = rs.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}

	rs.notifier.Notify(ctx, NotifyInput{
		Type:          notifdomain.TypeUrgencyLevelChanged,
		Referral:      updated,
		ActorID:       actorID,
		ItemKind:      refdomain.ItemKindUrgencyHistory,
		ItemID:        &historyID,
		IncludeLinked: true,
		IncludeUnits:  true,
		TemplateData: map[string]any{
			"urgency_explanation": explanation,
		},
	})
	return updated, nil
}

func (rs *referralService) CloseReferral(ctx context.Context, actorID, referralID uuid.UUID, explanation string) (*types.Referral, error) {
	var closed *types.Referral
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := rs.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(refdomain.OpClose, referral.State); err != nil {
			return err
		}
		if err := rs.requireParticipant(ctx, tx, referralID, actorID); err != nil {
			return err
		}
		if strings.TrimSpace(explanation) == "" {
			return refdomain.NewValidationError("an explanation is required to close a referral")
		}

		if err := rs.referralRepo.UpdateState(ctx, tx, referralID, refdomain.StateClosed); err != nil {
			return fmt.Errorf("update state: %w", err)
		}

		if _, err := rs.activityService.Record(ctx, tx, referralID, actorID, refdomain.VerbClosed, refdomain.ItemKindCloseExplanation, nil, explanation); err != nil {
			return err
		}

		closed, err = rs.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}

	rs.notifier.Notify(ctx, NotifyInput{
		Type:          notifdomain.TypeReferralClosed,
		Referral:      closed,
		ActorID:       actorID,
		IncludeLinked: true,
		IncludeUnits:  true,
		TemplateData: map[string]any{
			"close_explanation": explanation,
		},
	})
	return closed, nil
}

func (rs *referralService) loadReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (*types.Referral, error) {
	referral, err := rs.referralRepo.GetByID(ctx, tx, referralID)
	if err != nil {
		return nil, fmt.Errorf("load referral: %w", err)
	}
	if referral == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return referral, nil
}

func (rs *referralService) resolveUrgency(ctx context.Context, tx *gorm.DB, referral *types.Referral) (*types.ReferralUrgency, error) {
	if referral.UrgencyLevelID != nil {
		urgency, err := rs.urgencyRepo.GetByID(ctx, tx, *referral.UrgencyLevelID)
		if err != nil {
			return nil, fmt.Errorf("load urgency: %w", err)
		}
		if urgency == nil {
			return nil, refdomain.NewInvalidReferenceError("urgency level", referral.UrgencyLevelID.String())
		}
		return urgency, nil
	}
	urgency, err := rs.urgencyRepo.GetDefault(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load default urgency: %w", err)
	}
	if urgency == nil {
		return nil, refdomain.NewValidationError("no default urgency level configured")
	}
	return urgency, nil
}

// requireRequester allows only users holding a requester link.
func (rs *referralService) requireRequester(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID) error {
	link, err := rs.userLinkRepo.GetByReferralAndUser(ctx, tx, referralID, userID)
	if err != nil {
		return fmt.Errorf("load user link: %w", err)
	}
	if link == nil || link.Role != refdomain.LinkRoleRequester {
		return refdomain.NewAuthorizationError("user %s is not a requester on this referral", userID)
	}
	return nil
}

// requireParticipant allows any linked user or member of an assigned
// unit.
func (rs *referralService) requireParticipant(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID) error {
	link, err := rs.userLinkRepo.GetByReferralAndUser(ctx, tx, referralID, userID)
	if err != nil {
		return fmt.Errorf("load user link: %w", err)
	}
	if link != nil {
		return nil
	}
	return rs.requireUnitMember(ctx, tx, referralID, userID)
}

// requireUnitMember allows members of any assigned unit.
func (rs *referralService) requireUnitMember(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID) error {
	assignments, err := rs.unitAssignmentRepo.ListByReferral(ctx, tx, referralID)
	if err != nil {
		return fmt.Errorf("list unit assignments: %w", err)
	}
	unitIDs := make([]uuid.UUID, 0, len(assignments))
	for _, a := range assignments {
		unitIDs = append(unitIDs, a.UnitID)
	}
	if len(unitIDs) == 0 {
		return refdomain.NewAuthorizationError("user %s has no access to this referral", userID)
	}
	member, err := rs.membershipRepo.IsMemberOfAny(ctx, tx, userID, unitIDs)
	if err != nil {
		return fmt.Errorf("check memberships: %w", err)
	}
	if !member {
		return refdomain.NewAuthorizationError("user %s has no access to this referral", userID)
	}
	return nil
}

// requireUnitOrganizer allows only owners and admins of an assigned
// unit.
func (rs *referralService) requireUnitOrganizer(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID) error {
	assignments, err := rs.unitAssignmentRepo.ListByReferral(ctx, tx, referralID)
	if err != nil {
		return fmt.Errorf("list unit assignments: %w", err)
	}
	for _, a := range assignments {
		membership, err := rs.membershipRepo.GetByUserAndUnit(ctx, tx, userID, a.UnitID)
		if err != nil {
			return fmt.Errorf("load membership: %w", err)
		}
		if membership != nil && membership.IsOwnerOrAdmin() {
			return nil
		}
	}
	return refdomain.NewAuthorizationError("user %s is not an owner or admin of an assigned unit", userID)
}

// unitOrganizers loads a single unit's owner/admin IDs for direct
// fan-out, outside any transaction.
func (rs *referralService) unitOrganizers(ctx context.Context, unitID uuid.UUID) []uuid.UUID {
	memberships, err := rs.membershipRepo.ListByUnitsAndRoles(ctx, nil, []uuid.UUID{unitID}, []string{unitsdomain.RoleOwner, unitsdomain.RoleAdmin})
	if err != nil {
		rs.log.Error("load unit organizers failed", "unit_id", unitID, "error", err)
		return nil
	}
	out := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, m.UserID)
	}
	return out
}
