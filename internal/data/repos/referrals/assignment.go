package referrals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type AssignmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, assignments []*types.ReferralAssignment) ([]*types.ReferralAssignment, error)
	GetByReferralAndAssignee(ctx context.Context, tx *gorm.DB, referralID, assigneeID uuid.UUID) (*types.ReferralAssignment, error)
	ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralAssignment, error)
	Delete(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) error
	CountByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (int64, error)
	CountByReferralAndUnit(ctx context.Context, tx *gorm.DB, referralID, unitID uuid.UUID) (int64, error)
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	repoLog := baseLog.With("repo", "AssignmentRepo")
	return &assignmentRepo{db: db, log: repoLog}
}

func (r *assignmentRepo) Create(ctx context.Context, tx *gorm.DB, assignments []*types.ReferralAssignment) ([]*types.ReferralAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(assignments) == 0 {
		return []*types.ReferralAssignment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepo) GetByReferralAndAssignee(ctx context.Context, tx *gorm.DB, referralID, assigneeID uuid.UUID) (*types.ReferralAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralAssignment
	if err := transaction.WithContext(ctx).
		Where("referral_id = ? AND assignee_id = ?", referralID, assigneeID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *assignmentRepo) ListByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) ([]*types.ReferralAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralAssignment
	if err := transaction.WithContext(ctx).
		Where("referral_id = ?", referralID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentRepo) Delete(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", assignmentID).
		Delete(&types.ReferralAssignment{}).Error
}

func (r *assignmentRepo) CountByReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ReferralAssignment{}).
		Where("referral_id = ?", referralID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *assignmentRepo) CountByReferralAndUnit(ctx context.Context, tx *gorm.DB, referralID, unitID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ReferralAssignment{}).
		Where("referral_id = ? AND unit_id = ?", referralID, unitID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
