package referrals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type ReferralRepo interface {
	Create(ctx context.Context, tx *gorm.DB, referrals []*types.Referral) ([]*types.Referral, error)
	GetByID(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (*types.Referral, error)
	ListByIDs(ctx context.Context, tx *gorm.DB, referralIDs []uuid.UUID) ([]*types.Referral, error)
	ListByStates(ctx context.Context, tx *gorm.DB, states []string) ([]*types.Referral, error)
	UpdateState(ctx context.Context, tx *gorm.DB, referralID uuid.UUID, state string) error
	UpdateFields(ctx context.Context, tx *gorm.DB, referralID uuid.UUID, fields map[string]any) error
	MarkSent(ctx context.Context, tx *gorm.DB, referralID uuid.UUID, sentAt time.Time) error
}

type referralRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReferralRepo(db *gorm.DB, baseLog *logger.Logger) ReferralRepo {
	repoLog := baseLog.With("repo", "ReferralRepo")
	return &referralRepo{db: db, log: repoLog}
}

func (r *referralRepo) Create(ctx context.Context, tx *gorm.DB, referrals []*types.Referral) ([]*types.Referral, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(referrals) == 0 {
		return []*types.Referral{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&referrals).Error; err != nil {
		return nil, err
	}
	return referrals, nil
}

func (r *referralRepo) GetByID(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (*types.Referral, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Referral
	if err := transaction.WithContext(ctx).
		Where("id = ?", referralID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *referralRepo) ListByIDs(ctx context.Context, tx *gorm.DB, referralIDs []uuid.UUID) ([]*types.Referral, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Referral
	if len(referralIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", referralIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *referralRepo) ListByStates(ctx context.Context, tx *gorm.DB, states []string) ([]*types.Referral, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Referral
	if len(states) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("state IN ?", states).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *referralRepo) UpdateState(ctx context.Context, tx *gorm.DB, referralID uuid.UUID, state string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Referral{}).
		Where("id = ?", referralID).
		Update("state", state).Error
}

func (r *referralRepo) UpdateFields(ctx context.Context, tx *gorm.DB, referralID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Referral{}).
		Where("id = ?", referralID).
		Updates(fields).Error
}

func (r *referralRepo) MarkSent(ctx context.Context, tx *gorm.DB, referralID uuid.UUID, sentAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Referral{}).
		Where("id = ?", referralID).
		Updates(map[string]any{
			"state":   refdomain.StateReceived,
			"sent_at": sentAt,
		}).Error
}
