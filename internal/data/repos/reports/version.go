package reports

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type VersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, versions []*types.ReferralReportVersion) ([]*types.ReferralReportVersion, error)
	GetByID(ctx context.Context, tx *gorm.DB, versionID uuid.UUID) (*types.ReferralReportVersion, error)
	ListByReport(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) ([]*types.ReferralReportVersion, error)
	GetLast(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) (*types.ReferralReportVersion, error)
	MaxVersionNumber(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) (int, error)
	UpdateDocument(ctx context.Context, tx *gorm.DB, versionID uuid.UUID, name, key string, size int64) error
}

type versionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVersionRepo(db *gorm.DB, baseLog *logger.Logger) VersionRepo {
	repoLog := baseLog.With("repo", "VersionRepo")
	return &versionRepo{db: db, log: repoLog}
}

func (r *versionRepo) Create(ctx context.Context, tx *gorm.DB, versions []*types.ReferralReportVersion) ([]*types.ReferralReportVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(versions) == 0 {
		return []*types.ReferralReportVersion{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *versionRepo) GetByID(ctx context.Context, tx *gorm.DB, versionID uuid.UUID) (*types.ReferralReportVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralReportVersion
	if err := transaction.WithContext(ctx).
		Where("id = ?", versionID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *versionRepo) ListByReport(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) ([]*types.ReferralReportVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var versions []*types.ReferralReportVersion
	if err := transaction.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("version_number DESC").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *versionRepo) GetLast(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) (*types.ReferralReportVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReferralReportVersion
	if err := transaction.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("version_number DESC").
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *versionRepo) MaxVersionNumber(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var max int
	if err := transaction.WithContext(ctx).
		Model(&types.ReferralReportVersion{}).
		Where("report_id = ?", reportID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *versionRepo) UpdateDocument(ctx context.Context, tx *gorm.DB, versionID uuid.UUID, name, key string, size int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ReferralReportVersion{}).
		Where("id = ?", versionID).
		Updates(map[string]any{
			"document_name": name,
			"document_key":  key,
			"document_size": size,
		}).Error
}
