package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type ReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, reports []*types.ReferralReport) ([]*types.ReferralReport, error)
	GetByID(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) (*types.ReferralReport, error)
	GetByReferralID(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (*types.ReferralReport, error)
	MarkPublished(ctx context.Context, tx *gorm.DB, reportID, finalVersionID uuid.UUID, publishedAt time.Time, comment string) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	repoLog := baseLog.With("repo", "ReportRepo")
	return &reportRepo{db: db, log: repoLog}
}

func (r *reportRepo) Create(ctx context.Context, tx *gorm.DB, reports []*types.ReferralReport) ([]*types.ReferralReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(reports) == 0 {
		return []*types.ReferralReport{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepo) GetByID(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) (*types.ReferralReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralReport
	if err := transaction.WithContext(ctx).
		Where("id = ?", reportID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *reportRepo) GetByReferralID(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (*types.ReferralReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralReport
	if err := transaction.WithContext(ctx).
		Where("referral_id = ?", referralID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *reportRepo) MarkPublished(ctx context.Context, tx *gorm.DB, reportID, finalVersionID uuid.UUID, publishedAt time.Time, comment string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ReferralReport{}).
		Where("id = ?", reportID).
		Updates(map[string]any{
			"final_version_id": finalVersionID,
			"published_at":     publishedAt,
			"comment":          comment,
		}).Error
}
