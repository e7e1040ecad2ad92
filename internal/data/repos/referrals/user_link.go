package referrals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type UserLinkRepo interface {
	Create(ctx context.Context, tx *gorm.DB, links []*types.ReferralUserLink) ([]*types.ReferralUserLink, error)
	GetByReferralAndUser(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID) (*types.ReferralUserLink, error)
	ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralUserLink, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ReferralUserLink, error)
	Update(ctx context.Context, tx *gorm.DB, linkID uuid.UUID, role, notifications string) error
	Delete(ctx context.Context, tx *gorm.DB, linkID uuid.UUID) error
	CountRequesters(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (int64, error)
}

type userLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserLinkRepo(db *gorm.DB, baseLog *logger.Logger) UserLinkRepo {
	repoLog := baseLog.With("repo", "UserLinkRepo")
	return &userLinkRepo{db: db, log: repoLog}
}

func (r *userLinkRepo) Create(ctx context.Context, tx *gorm.DB, links []*types.ReferralUserLink) ([]*types.ReferralUserLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(links) == 0 {
		return []*types.ReferralUserLink{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *userLinkRepo) GetByReferralAndUser(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID) (*types.ReferralUserLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralUserLink
	if err := transaction.WithContext(ctx).
		Where("referral_id = ? AND user_id = ?", referralID, userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *userLinkRepo) ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralUserLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralUserLink
	if err := transaction.WithContext(ctx).
		Where("referral_id = ?", referralID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userLinkRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ReferralUserLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralUserLink
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userLinkRepo) Update(ctx context.Context, tx *gorm.DB, linkID uuid.UUID, role, notifications string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ReferralUserLink{}).
		Where("id = ?", linkID).
		Updates(map[string]any{
			"role":          role,
			"notifications": notifications,
		}).Error
}

func (r *userLinkRepo) Delete(ctx context.Context, tx *gorm.DB, linkID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", linkID).
		Delete(&types.ReferralUserLink{}).Error
}

func (r *userLinkRepo) CountRequesters(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ReferralUserLink{}).
		Where("referral_id = ? AND role = ?", referralID, refdomain.LinkRoleRequester).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
