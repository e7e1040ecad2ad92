package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partaj-app/partaj-backend/internal/data/repos"
	types "github.com/partaj-app/partaj-backend/internal/domain"
	notifdomain "github.com/partaj-app/partaj-backend/internal/domain/notifications"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

// MessageService runs the requester / unit-member exchange on a
// referral. Messages are plain rows; the interesting part is who gets
// told about them, which follows the generic fan-out preferences.
type MessageService interface {
	Send(ctx context.Context, actorID, referralID uuid.UUID, content string) (*types.ReferralMessage, error)
	ListByReferral(ctx context.Context, actorID, referralID uuid.UUID) ([]*types.ReferralMessage, error)
}

type messageService struct {
	db  *gorm.DB
	log *logger.Logger

	referralRepo       repos.ReferralRepo
	messageRepo        repos.MessageRepo
	userLinkRepo       repos.UserLinkRepo
	membershipRepo     repos.MembershipRepo
	unitAssignmentRepo repos.UnitAssignmentRepo

	notifier NotifierService
}

func NewMessageService(
	db *gorm.DB,
	log *logger.Logger,
	referralRepo repos.ReferralRepo,
	messageRepo repos.MessageRepo,
	userLinkRepo repos.UserLinkRepo,
	membershipRepo repos.MembershipRepo,
	unitAssignmentRepo repos.UnitAssignmentRepo,
	notifier NotifierService,
) MessageService {
	serviceLog := log.With("service", "MessageService")
	return &messageService{
		db:                 db,
		log:                serviceLog,
		referralRepo:       referralRepo,
		messageRepo:        messageRepo,
		userLinkRepo:       userLinkRepo,
		membershipRepo:     membershipRepo,
		unitAssignmentRepo: unitAssignmentRepo,
		notifier:           notifier,
	}
}

func (ms *messageService) Send(ctx context.Context, actorID, referralID uuid.UUID, content string) (*types.ReferralMessage, error) {
	var created *types.ReferralMessage
	var referral *types.Referral
	err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		referral, err = ms.referralRepo.GetByID(ctx, tx, referralID)
		if err != nil {
			return fmt.Errorf("load referral: %w", err)
		}
		if referral == nil {
			return gorm.ErrRecordNotFound
		}
		if err := refdomain.GuardTransition(refdomain.OpSendMessage, referral.State); err != nil {
			return err
		}
		if err := ms.requireParticipant(ctx, tx, referralID, actorID); err != nil {
			return err
		}
		if strings.TrimSpace(content) == "" {
			return refdomain.NewValidationError("message content is required")
		}

		message := &types.ReferralMessage{
			ReferralID: referralID,
			UserID:     actorID,
			Content:    content,
		}
		messages, err := ms.messageRepo.Create(ctx, tx, []*types.ReferralMessage{message})
		if err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		created = messages[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	ms.notifier.Notify(ctx, NotifyInput{
		Type:          notifdomain.TypeNewMessage,
		Referral:      referral,
		ActorID:       actorID,
		ItemKind:      refdomain.ItemKindMessage,
		ItemID:        &created.ID,
		IncludeLinked: true,
		IncludeUnits:  true,
	})
	return created, nil
}

func (ms *messageService) ListByReferral(ctx context.Context, actorID, referralID uuid.UUID) ([]*types.ReferralMessage, error) {
	if err := ms.requireParticipant(ctx, nil, referralID, actorID); err != nil {
		return nil, err
	}
	return ms.messageRepo.ListByReferral(ctx, nil, referralID)
}

func (ms *messageService) requireParticipant(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID) error {
	link, err := ms.userLinkRepo.GetByReferralAndUser(ctx, tx, referralID, userID)
	if err != nil {
		return fmt.Errorf("load user link: %w", err)
	}
	if link != nil {
		return nil
	}

	assignments, err := ms.unitAssignmentRepo.ListByReferral(ctx, tx, referralID)
	if err != nil {
		return fmt.Errorf("list unit assignments: %w", err)
	}
	unitIDs := make([]uuid.UUID, 0, len(assignments))
	for _, a := range assignments {
		unitIDs = append(unitIDs, a.UnitID)
	}
	if len(unitIDs) > 0 {
		member, err := ms.membershipRepo.IsMemberOfAny(ctx, tx, userID, unitIDs)
		if err != nil {
			return fmt.Errorf("check memberships: %w", err)
		}
		if member {
			return nil
		}
	}
	return refdomain.NewAuthorizationError("user %s has no access to this referral", userID)
}
