package referrals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type UrgencyHistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.ReferralUrgencyLevelHistory) ([]*types.ReferralUrgencyLevelHistory, error)
	ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralUrgencyLevelHistory, error)
}

type urgencyHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUrgencyHistoryRepo(db *gorm.DB, baseLog *logger.Logger) UrgencyHistoryRepo {
	repoLog := baseLog.With("repo", "UrgencyHistoryRepo")
	return &urgencyHistoryRepo{db: db, log: repoLog}
}

func (r *urgencyHistoryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.ReferralUrgencyLevelHistory) ([]*types.ReferralUrgencyLevelHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(entries) == 0 {
		return []*types.ReferralUrgencyLevelHistory{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *urgencyHistoryRepo) ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralUrgencyLevelHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralUrgencyLevelHistory
	if err := transaction.WithContext(ctx).
		Where("referral_id = ?", referralID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
