package referrals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

// ActivityRepo is append-only: activities are never updated or deleted.
type ActivityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, activities []*types.ReferralActivity) ([]*types.ReferralActivity, error)
	ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralActivity, error)
	CountByReferralAndVerb(ctx context.Context, tx *gorm.DB, referralID uuid.UUID, verb string) (int64, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	repoLog := baseLog.With("repo", "ActivityRepo")
	return &activityRepo{db: db, log: repoLog}
}

func (r *activityRepo) Create(ctx context.Context, tx *gorm.DB, activities []*types.ReferralActivity) ([]*types.ReferralActivity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(activities) == 0 {
		return []*types.ReferralActivity{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepo) ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralActivity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralActivity
	if err := transaction.WithContext(ctx).
		Where("referral_id = ?", referralID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityRepo) CountByReferralAndVerb(ctx context.Context, tx *gorm.DB, referralID uuid.UUID, verb string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ReferralActivity{}).
		Where("referral_id = ? AND verb = ?", referralID, verb).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
