package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partaj-app/partaj-backend/internal/data/repos"
	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

// ActivityService appends and reads the referral audit stream. Writes
// always happen inside the transition's transaction so a transition and
// its activity record commit or roll back together.
type ActivityService interface {
	Record(ctx context.Context, tx *gorm.DB, referralID, actorID uuid.UUID, verb, itemKind string, itemID *uuid.UUID, message string) (*types.ReferralActivity, error)
	ListByReferral(ctx context.Context, referralID uuid.UUID) ([]*types.ReferralActivity, error)
}

type activityService struct {
	db           *gorm.DB
	log          *logger.Logger
	activityRepo repos.ActivityRepo
}

func NewActivityService(db *gorm.DB, log *logger.Logger, activityRepo repos.ActivityRepo) ActivityService {
	serviceLog := log.With("service", "ActivityService")
	return &activityService{db: db, log: serviceLog, activityRepo: activityRepo}
}

func (as *activityService) Record(ctx context.Context, tx *gorm.DB, referralID, actorID uuid.UUID, verb, itemKind string, itemID *uuid.UUID, message string) (*types.ReferralActivity, error) {
	activity := &types.ReferralActivity{
		ReferralID: referralID,
		ActorID:    actorID,
		Verb:       verb,
		ItemKind:   itemKind,
		ItemID:     itemID,
		Message:    message,
	}
	created, err := as.activityRepo.Create(ctx, tx, []*types.ReferralActivity{activity})
	if err != nil {
		return nil, fmt.Errorf("record activity %s: %w", verb, err)
	}
	return created[0], nil
}

func (as *activityService) ListByReferral(ctx context.Context, referralID uuid.UUID) ([]*types.ReferralActivity, error) {
	return as.activityRepo.ListByReferral(ctx, nil, referralID)
}
