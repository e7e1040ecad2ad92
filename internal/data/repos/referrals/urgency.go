package referrals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type UrgencyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, urgencies []*types.ReferralUrgency) ([]*types.ReferralUrgency, error)
	GetByID(ctx context.Context, tx *gorm.DB, urgencyID uuid.UUID) (*types.ReferralUrgency, error)
	GetDefault(ctx context.Context, tx *gorm.DB) (*types.ReferralUrgency, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.ReferralUrgency, error)
}

type urgencyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUrgencyRepo(db *gorm.DB, baseLog *logger.Logger) UrgencyRepo {
	repoLog := baseLog.With("repo", "UrgencyRepo")
	return &urgencyRepo{db: db, log: repoLog}
}

func (r *urgencyRepo) Create(ctx context.Context, tx *gorm.DB, urgencies []*types.ReferralUrgency) ([]*types.ReferralUrgency, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(urgencies) == 0 {
		return []*types.ReferralUrgency{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&urgencies).Error; err != nil {
		return nil, err
	}
	return urgencies, nil
}

func (r *urgencyRepo) GetByID(ctx context.Context, tx *gorm.DB, urgencyID uuid.UUID) (*types.ReferralUrgency, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralUrgency
	if err := transaction.WithContext(ctx).
		Where("id = ?", urgencyID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *urgencyRepo) GetDefault(ctx context.Context, tx *gorm.DB) (*types.ReferralUrgency, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralUrgency
	if err := transaction.WithContext(ctx).
		Where("is_default = ?", true).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *urgencyRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.ReferralUrgency, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralUrgency
	if err := transaction.WithContext(ctx).
		Order(`"index" ASC`).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
