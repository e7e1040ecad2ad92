package referrals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type UnitAssignmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, assignments []*types.ReferralUnitAssignment) ([]*types.ReferralUnitAssignment, error)
	GetByReferralAndUnit(ctx context.Context, tx *gorm.DB, referralID, unitID uuid.UUID) (*types.ReferralUnitAssignment, error)
	ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralUnitAssignment, error)
	ListByUnit(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) ([]*types.ReferralUnitAssignment, error)
	Delete(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) error
	CountByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (int64, error)
}

type unitAssignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUnitAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) UnitAssignmentRepo {
	repoLog := baseLog.With("repo", "UnitAssignmentRepo")
	return &unitAssignmentRepo{db: db, log: repoLog}
}

func (r *unitAssignmentRepo) Create(ctx context.Context, tx *gorm.DB, assignments []*types.ReferralUnitAssignment) ([]*types.ReferralUnitAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(assignments) == 0 {
		return []*types.ReferralUnitAssignment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *unitAssignmentRepo) GetByReferralAndUnit(ctx context.Context, tx *gorm.DB, referralID, unitID uuid.UUID) (*types.ReferralUnitAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralUnitAssignment
	if err := transaction.WithContext(ctx).
		Where("referral_id = ? AND unit_id = ?", referralID, unitID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *unitAssignmentRepo) ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralUnitAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralUnitAssignment
	if err := transaction.WithContext(ctx).
		Where("referral_id = ?", referralID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *unitAssignmentRepo) ListByUnit(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) ([]*types.ReferralUnitAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralUnitAssignment
	if err := transaction.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *unitAssignmentRepo) Delete(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", assignmentID).
		Delete(&types.ReferralUnitAssignment{}).Error
}

func (r *unitAssignmentRepo) CountByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ReferralUnitAssignment{}).
		Where("referral_id = ?", referralID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
