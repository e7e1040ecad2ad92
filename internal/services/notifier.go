package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partaj-app/partaj-backend/internal/data/repos"
	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

// NotifyInput describes one fan-out: which event happened, on which
// referral, and which audiences it reaches. Recipients are the union of
// the enabled audiences, minus the acting user.
type NotifyInput struct {
	Type     string
	Referral *types.Referral
	ActorID  uuid.UUID
	ItemKind string
	ItemID   *uuid.UUID

	// IncludeLinked adds the referral's user links, filtered by each
	// link's notification preference.
	IncludeLinked bool
	// IncludeUnits adds owners and admins of every assigned unit.
	IncludeUnits bool
	// Direct adds explicit recipients (an assignee, a version author)
	// regardless of preference.
	Direct []uuid.UUID

	TemplateData map[string]any
}

// NotifierService runs after a transition commits. It persists in-app
// notification rows and dispatches one templated email per recipient.
// Nothing here may fail the transition: every error is logged and
// dropped.
type NotifierService interface {
	Notify(ctx context.Context, in NotifyInput)
}

type notifierService struct {
	db               *gorm.DB
	log              *logger.Logger
	userRepo         repos.UserRepo
	userLinkRepo     repos.UserLinkRepo
	unitAssignRepo   repos.UnitAssignmentRepo
	membershipRepo   repos.MembershipRepo
	notificationRepo repos.NotificationRepo
	mailer           MailerService
	baseURL          string
}

func NewNotifierService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userLinkRepo repos.UserLinkRepo,
	unitAssignRepo repos.UnitAssignmentRepo,
	membershipRepo repos.MembershipRepo,
	notificationRepo repos.NotificationRepo,
	mailer MailerService,
	baseURL string,
) NotifierService {
	serviceLog := log.With("service", "NotifierService")
	return &notifierService{
		db:               db,
		log:              serviceLog,
		userRepo:         userRepo,
		userLinkRepo:     userLinkRepo,
		unitAssignRepo:   unitAssignRepo,
		membershipRepo:   membershipRepo,
		notificationRepo: notificationRepo,
		mailer:           mailer,
		baseURL:          baseURL,
	}
}

func (ns *notifierService) Notify(ctx context.Context, in NotifyInput) {
	if in.Referral == nil {
		return
	}

	linked, unitRecipients := ns.collect(ctx, in)

	direct := make([]uuid.UUID, 0, len(in.Direct))
	for _, id := range in.Direct {
		if id != in.ActorID {
			direct = append(direct, id)
		}
	}

	recipients := MergeRecipients(direct, linked, unitRecipients)
	if len(recipients) == 0 {
		return
	}

	unitSet := map[uuid.UUID]struct{}{}
	for _, id := range unitRecipients {
		unitSet[id] = struct{}{}
	}

	ns.persist(ctx, in, recipients)
	ns.mail(ctx, in, recipients, unitSet)
}

func (ns *notifierService) collect(ctx context.Context, in NotifyInput) (linked, unitRecipients []uuid.UUID) {
	if in.IncludeLinked {
		links, err := ns.userLinkRepo.ListByReferral(ctx, nil, in.Referral.ID)
		if err != nil {
			ns.log.Error("fan-out: list user links failed", "referral_id", in.Referral.ID, "error", err)
		} else {
			linked = LinkedRecipients(in.Type, links, in.ActorID)
		}
	}

	if in.IncludeUnits {
		assignments, err := ns.unitAssignRepo.ListByReferral(ctx, nil, in.Referral.ID)
		if err != nil {
			ns.log.Error("fan-out: list unit assignments failed", "referral_id", in.Referral.ID, "error", err)
			return linked, nil
		}
		unitIDs := make([]uuid.UUID, 0, len(assignments))
		for _, a := range assignments {
			unitIDs = append(unitIDs, a.UnitID)
		}
		if len(unitIDs) == 0 {
			return linked, nil
		}
		memberships, err := ns.membershipRepo.ListByUnits(ctx, nil, unitIDs)
		if err != nil {
			ns.log.Error("fan-out: list memberships failed", "referral_id", in.Referral.ID, "error", err)
			return linked, nil
		}
		unitRecipients = UnitRecipients(memberships, in.ActorID)
	}

	return linked, unitRecipients
}

func (ns *notifierService) persist(ctx context.Context, in NotifyInput, recipients []uuid.UUID) {
	rows := make([]*types.Notification, 0, len(recipients))
	for _, id := range recipients {
		rows = append(rows, &types.Notification{
			NotificationType: in.Type,
			NotifierID:       in.ActorID,
			NotifiedID:       id,
			ReferralID:       in.Referral.ID,
			ItemKind:         in.ItemKind,
			ItemID:           in.ItemID,
		})
	}
	if _, err := ns.notificationRepo.Create(ctx, nil, rows); err != nil {
		ns.log.Error("fan-out: persist notifications failed", "referral_id", in.Referral.ID, "error", err)
	}
}

func (ns *notifierService) mail(ctx context.Context, in NotifyInput, recipients []uuid.UUID, unitSet map[uuid.UUID]struct{}) {
	users, err := ns.userRepo.GetByIDs(ctx, nil, recipients)
	if err != nil {
		ns.log.Error("fan-out: load recipients failed", "referral_id", in.Referral.ID, "error", err)
		return
	}

	// First assigned unit backs the unit-inbox deep link. Good enough:
	// owners of any assigned unit can open the referral from their own
	// inbox as well.
	var unitID *uuid.UUID
	if len(unitSet) > 0 {
		assignments, err := ns.unitAssignRepo.ListByReferral(ctx, nil, in.Referral.ID)
		if err == nil && len(assignments) > 0 {
			unitID = &assignments[0].UnitID
		}
	}

	for _, u := range users {
		audience := LinkAudienceRequester
		var linkUnitID *uuid.UUID
		if _, fromUnit := unitSet[u.ID]; fromUnit {
			audience = LinkAudienceUnitMember
			linkUnitID = unitID
		}

		data := map[string]any{
			"case_number":    in.Referral.ID.String(),
			"referral_title": in.Referral.Title,
			"link_to_referral": ReferralLink(
				ns.baseURL, audience, in.Referral.State, in.Referral.ID, linkUnitID,
			),
			"first_name": u.FirstName,
			"last_name":  u.LastName,
		}
		for k, v := range in.TemplateData {
			data[k] = v
		}

		ns.mailer.Send(ctx, in.Type, u.Email, u.FullName(), data)
	}
}
