package units

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type MembershipRepo interface {
	Create(ctx context.Context, tx *gorm.DB, memberships []*types.UnitMembership) ([]*types.UnitMembership, error)
	GetByUserAndUnit(ctx context.Context, tx *gorm.DB, userID, unitID uuid.UUID) (*types.UnitMembership, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UnitMembership, error)
	ListByUnits(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.UnitMembership, error)
	ListByUnitsAndRoles(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID, roles []string) ([]*types.UnitMembership, error)
	IsMemberOfAny(ctx context.Context, tx *gorm.DB, userID uuid.UUID, unitIDs []uuid.UUID) (bool, error)
}

type membershipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMembershipRepo(db *gorm.DB, baseLog *logger.Logger) MembershipRepo {
	repoLog := baseLog.With("repo", "MembershipRepo")
	return &membershipRepo{db: db, log: repoLog}
}

func (r *membershipRepo) Create(ctx context.Context, tx *gorm.DB, memberships []*types.UnitMembership) ([]*types.UnitMembership, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(memberships) == 0 {
		return []*types.UnitMembership{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *membershipRepo) GetByUserAndUnit(ctx context.Context, tx *gorm.DB, userID, unitID uuid.UUID) (*types.UnitMembership, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UnitMembership
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND unit_id = ?", userID, unitID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *membershipRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UnitMembership, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UnitMembership
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *membershipRepo) ListByUnits(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.UnitMembership, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UnitMembership
	if len(unitIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("unit_id IN ?", unitIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *membershipRepo) ListByUnitsAndRoles(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID, roles []string) ([]*types.UnitMembership, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UnitMembership
	if len(unitIDs) == 0 || len(roles) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("unit_id IN ? AND role IN ?", unitIDs, roles).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *membershipRepo) IsMemberOfAny(ctx context.Context, tx *gorm.DB, userID uuid.UUID, unitIDs []uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(unitIDs) == 0 {
		return false, nil
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.UnitMembership{}).
		Where("user_id = ? AND unit_id IN ?", userID, unitIDs).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
