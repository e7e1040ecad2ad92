package referrals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type SatisfactionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, responses []*types.ReferralSatisfaction) ([]*types.ReferralSatisfaction, error)
	HasResponded(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID, surveyType string) (bool, error)
	ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralSatisfaction, error)
}

type satisfactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSatisfactionRepo(db *gorm.DB, baseLog *logger.Logger) SatisfactionRepo {
	repoLog := baseLog.With("repo", "SatisfactionRepo")
	return &satisfactionRepo{db: db, log: repoLog}
}

func (r *satisfactionRepo) Create(ctx context.Context, tx *gorm.DB, responses []*types.ReferralSatisfaction) ([]*types.ReferralSatisfaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(responses) == 0 {
		return []*types.ReferralSatisfaction{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *satisfactionRepo) HasResponded(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID, surveyType string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ReferralSatisfaction{}).
		Where("referral_id = ? AND submitted_by_id = ? AND survey_type = ?", referralID, userID, surveyType).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *satisfactionRepo) ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralSatisfaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralSatisfaction
	if err := transaction.WithContext(ctx).
		Where("referral_id = ?", referralID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
