package referrals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type MessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, messages []*types.ReferralMessage) ([]*types.ReferralMessage, error)
	ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralMessage, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	repoLog := baseLog.With("repo", "MessageRepo")
	return &messageRepo{db: db, log: repoLog}
}

func (r *messageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.ReferralMessage) ([]*types.ReferralMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(messages) == 0 {
		return []*types.ReferralMessage{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepo) ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralMessage
	if err := transaction.WithContext(ctx).
		Where("referral_id = ?", referralID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
