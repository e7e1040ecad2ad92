package reports

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type PublishmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, publishments []*types.ReferralReportPublishment) ([]*types.ReferralReportPublishment, error)
	ListByReport(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) ([]*types.ReferralReportPublishment, error)
}

type publishmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPublishmentRepo(db *gorm.DB, baseLog *logger.Logger) PublishmentRepo {
	repoLog := baseLog.With("repo", "PublishmentRepo")
	return &publishmentRepo{db: db, log: repoLog}
}

func (r *publishmentRepo) Create(ctx context.Context, tx *gorm.DB, publishments []*types.ReferralReportPublishment) ([]*types.ReferralReportPublishment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(publishments) == 0 {
		return []*types.ReferralReportPublishment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&publishments).Error; err != nil {
		return nil, err
	}
	return publishments, nil
}

func (r *publishmentRepo) ListByReport(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) ([]*types.ReferralReportPublishment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var publishments []*types.ReferralReportPublishment
	if err := transaction.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at DESC").
		Find(&publishments).Error; err != nil {
		return nil, err
	}
	return publishments, nil
}
