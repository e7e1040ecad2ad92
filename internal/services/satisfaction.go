package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partaj-app/partaj-backend/internal/data/repos"
	types "github.com/partaj-app/partaj-backend/internal/domain"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

// SatisfactionService records the two one-shot surveys: unit members
// rate the request they received, requesters rate the answer they got.
// Each identity gets exactly one submission per survey per referral.
type SatisfactionService interface {
	RecordRequestSurvey(ctx context.Context, actorID, referralID uuid.UUID, choice int) (*types.ReferralSatisfaction, error)
	RecordResponseSurvey(ctx context.Context, actorID, referralID uuid.UUID, choice int) (*types.ReferralSatisfaction, error)
	ListByReferral(ctx context.Context, actorID, referralID uuid.UUID) ([]*types.ReferralSatisfaction, error)
}

// SurveyRecorder is the shape shared by the two Record*Survey methods.
type SurveyRecorder func(ctx context.Context, actorID, referralID uuid.UUID, choice int) (*types.ReferralSatisfaction, error)

type satisfactionService struct {
	db  *gorm.DB
	log *logger.Logger

	referralRepo       repos.ReferralRepo
	satisfactionRepo   repos.SatisfactionRepo
	userLinkRepo       repos.UserLinkRepo
	membershipRepo     repos.MembershipRepo
	unitAssignmentRepo repos.UnitAssignmentRepo
}

func NewSatisfactionService(
	db *gorm.DB,
	log *logger.Logger,
	referralRepo repos.ReferralRepo,
	satisfactionRepo repos.SatisfactionRepo,
	userLinkRepo repos.UserLinkRepo,
	membershipRepo repos.MembershipRepo,
	unitAssignmentRepo repos.UnitAssignmentRepo,
) SatisfactionService {
	serviceLog := log.With("service", "SatisfactionService")
	return &satisfactionService{
		db:                 db,
		log:                serviceLog,
		referralRepo:       referralRepo,
		satisfactionRepo:   satisfactionRepo,
		userLinkRepo:       userLinkRepo,
		membershipRepo:     membershipRepo,
		unitAssignmentRepo: unitAssignmentRepo,
	}
}

func (ss *satisfactionService) RecordRequestSurvey(ctx context.Context, actorID, referralID uuid.UUID, choice int) (*types.ReferralSatisfaction, error) {
	var created *types.ReferralSatisfaction
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := ss.referralRepo.GetByID(ctx, tx, referralID)
		if err != nil {
			return fmt.Errorf("load referral: %w", err)
		}
		if referral == nil {
			return gorm.ErrRecordNotFound
		}
		if referral.State == refdomain.StateDraft {
			return refdomain.NewTransitionError("satisfaction_request", referral.State)
		}

		role, err := ss.unitRole(ctx, tx, referralID, actorID)
		if err != nil {
			return err
		}

		created, err = ss.record(ctx, tx, referralID, actorID, refdomain.SurveyTypeRequest, role, choice)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (ss *satisfactionService) RecordResponseSurvey(ctx context.Context, actorID, referralID uuid.UUID, choice int) (*types.ReferralSatisfaction, error) {
	var created *types.ReferralSatisfaction
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := ss.referralRepo.GetByID(ctx, tx, referralID)
		if err != nil {
			return fmt.Errorf("load referral: %w", err)
		}
		if referral == nil {
			return gorm.ErrRecordNotFound
		}
		// Requesters only rate an answer that exists.
		if referral.State != refdomain.StateAnswered && referral.State != refdomain.StateClosed {
			return refdomain.NewTransitionError("satisfaction_response", referral.State)
		}

		link, err := ss.userLinkRepo.GetByReferralAndUser(ctx, tx, referralID, actorID)
		if err != nil {
			return fmt.Errorf("load user link: %w", err)
		}
		if link == nil || link.Role != refdomain.LinkRoleRequester {
			return refdomain.NewAuthorizationError("user %s is not a requester on this referral", actorID)
		}

		created, err = ss.record(ctx, tx, referralID, actorID, refdomain.SurveyTypeResponse, link.Role, choice)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (ss *satisfactionService) ListByReferral(ctx context.Context, actorID, referralID uuid.UUID) ([]*types.ReferralSatisfaction, error) {
	if _, err := ss.unitRole(ctx, nil, referralID, actorID); err != nil {
		return nil, err
	}
	return ss.satisfactionRepo.ListByReferral(ctx, nil, referralID)
}

func (ss *satisfactionService) record(ctx context.Context, tx *gorm.DB, referralID, actorID uuid.UUID, surveyType, role string, choice int) (*types.ReferralSatisfaction, error) {
	if choice < 0 || choice > 10 {
		return nil, refdomain.NewValidationError("satisfaction choice must be between 0 and 10")
	}

	responded, err := ss.satisfactionRepo.HasResponded(ctx, tx, referralID, actorID, surveyType)
	if err != nil {
		return nil, fmt.Errorf("check prior response: %w", err)
	}
	if responded {
		return nil, refdomain.NewDuplicateLinkError(fmt.Sprintf("user %s already answered the %s survey for this referral", actorID, surveyType))
	}

	row := &types.ReferralSatisfaction{
		ReferralID:    referralID,
		SubmittedByID: actorID,
		SurveyType:    surveyType,
		Role:          role,
		Choice:        choice,
	}
	rows, err := ss.satisfactionRepo.Create(ctx, tx, []*types.ReferralSatisfaction{row})
	if err != nil {
		return nil, fmt.Errorf("record satisfaction: %w", err)
	}
	return rows[0], nil
}

// unitRole returns the actor's membership role in an assigned unit, or
// an authorization error when they are not a member of any.
func (ss *satisfactionService) unitRole(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID) (string, error) {
	assignments, err := ss.unitAssignmentRepo.ListByReferral(ctx, tx, referralID)
	if err != nil {
		return "", fmt.Errorf("list unit assignments: %w", err)
	}
	for _, a := range assignments {
		membership, err := ss.membershipRepo.GetByUserAndUnit(ctx, tx, userID, a.UnitID)
		if err != nil {
			return "", fmt.Errorf("load membership: %w", err)
		}
		if membership != nil {
			return membership.Role, nil
		}
	}
	return "", refdomain.NewAuthorizationError("user %s is not a member of an assigned unit", userID)
}
