package reports

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type EventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*types.ReportEvent) ([]*types.ReportEvent, error)
	ListByReport(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) ([]*types.ReportEvent, error)
	ListByVersion(ctx context.Context, tx *gorm.DB, versionID uuid.UUID) ([]*types.ReportEvent, error)
	UpdateStates(ctx context.Context, tx *gorm.DB, eventIDs []uuid.UUID, state string) error
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	repoLog := baseLog.With("repo", "EventRepo")
	return &eventRepo{db: db, log: repoLog}
}

func (r *eventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.ReportEvent) ([]*types.ReportEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(events) == 0 {
		return []*types.ReportEvent{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepo) ListByReport(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) ([]*types.ReportEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var events []*types.ReportEvent
	if err := transaction.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepo) ListByVersion(ctx context.Context, tx *gorm.DB, versionID uuid.UUID) ([]*types.ReportEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var events []*types.ReportEvent
	if err := transaction.WithContext(ctx).
		Where("version_id = ?", versionID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepo) UpdateStates(ctx context.Context, tx *gorm.DB, eventIDs []uuid.UUID, state string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(eventIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.ReportEvent{}).
		Where("id IN ?", eventIDs).
		Update("state", state).Error
}
