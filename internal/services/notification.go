package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partaj-app/partaj-backend/internal/data/repos"
	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

// NotificationService reads the in-app notification feed.
type NotificationService interface {
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*types.Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, notificationIDs []uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	db               *gorm.DB
	log              *logger.Logger
	notificationRepo repos.NotificationRepo
}

func NewNotificationService(db *gorm.DB, log *logger.Logger, notificationRepo repos.NotificationRepo) NotificationService {
	serviceLog := log.With("service", "NotificationService")
	return &notificationService{db: db, log: serviceLog, notificationRepo: notificationRepo}
}

func (ns *notificationService) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*types.Notification, error) {
	return ns.notificationRepo.ListByUser(ctx, nil, userID, unreadOnly)
}

func (ns *notificationService) MarkRead(ctx context.Context, userID uuid.UUID, notificationIDs []uuid.UUID) error {
	return ns.notificationRepo.MarkRead(ctx, nil, notificationIDs, userID, time.Now())
}

func (ns *notificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return ns.notificationRepo.CountUnread(ctx, nil, userID)
}
