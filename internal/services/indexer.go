package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	redisclient "github.com/partaj-app/partaj-backend/internal/clients/redis"
	"github.com/partaj-app/partaj-backend/internal/data/repos"
	types "github.com/partaj-app/partaj-backend/internal/domain"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
	"github.com/partaj-app/partaj-backend/internal/search"
)

// IndexerService assembles search documents and hands them to the
// index bus. IndexAll is the batch path behind the indexer command;
// IndexReferral keeps the index warm after a transition.
type IndexerService interface {
	IndexReferral(ctx context.Context, referralID uuid.UUID) error
	IndexAll(ctx context.Context) (int, error)
}

type indexerService struct {
	db  *gorm.DB
	log *logger.Logger

	referralRepo       repos.ReferralRepo
	topicRepo          repos.TopicRepo
	unitRepo           repos.UnitRepo
	urgencyRepo        repos.UrgencyRepo
	assignmentRepo     repos.AssignmentRepo
	unitAssignmentRepo repos.UnitAssignmentRepo
	userLinkRepo       repos.UserLinkRepo
	userRepo           repos.UserRepo
	reportRepo         repos.ReportRepo
	versionRepo        repos.VersionRepo

	bus redisclient.IndexBus
}

func NewIndexerService(
	db *gorm.DB,
	log *logger.Logger,
	referralRepo repos.ReferralRepo,
	topicRepo repos.TopicRepo,
	unitRepo repos.UnitRepo,
	urgencyRepo repos.UrgencyRepo,
	assignmentRepo repos.AssignmentRepo,
	unitAssignmentRepo repos.UnitAssignmentRepo,
	userLinkRepo repos.UserLinkRepo,
	userRepo repos.UserRepo,
	reportRepo repos.ReportRepo,
	versionRepo repos.VersionRepo,
	bus redisclient.IndexBus,
) IndexerService {
	serviceLog := log.With("service", "IndexerService")
	return &indexerService{
		db:                 db,
		log:                serviceLog,
		referralRepo:       referralRepo,
		topicRepo:          topicRepo,
		unitRepo:           unitRepo,
		urgencyRepo:        urgencyRepo,
		assignmentRepo:     assignmentRepo,
		unitAssignmentRepo: unitAssignmentRepo,
		userLinkRepo:       userLinkRepo,
		userRepo:           userRepo,
		reportRepo:         reportRepo,
		versionRepo:        versionRepo,
		bus:                bus,
	}
}

func (is *indexerService) IndexReferral(ctx context.Context, referralID uuid.UUID) error {
	referral, err := is.referralRepo.GetByID(ctx, nil, referralID)
	if err != nil {
		return fmt.Errorf("load referral: %w", err)
	}
	if referral == nil {
		return gorm.ErrRecordNotFound
	}
	return is.index(ctx, referral)
}

// IndexAll rebuilds the index from every sent referral. Documents are
// assembled and published concurrently; the first failure aborts the
// batch.
func (is *indexerService) IndexAll(ctx context.Context) (int, error) {
	states := []string{
		refdomain.StateReceived,
		refdomain.StateAssigned,
		refdomain.StateProcessing,
		refdomain.StateInValidation,
		refdomain.StateAnswered,
		refdomain.StateClosed,
	}
	referrals, err := is.referralRepo.ListByStates(ctx, nil, states)
	if err != nil {
		return 0, fmt.Errorf("list referrals: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, referral := range referrals {
		g.Go(func() error {
			return is.index(gctx, referral)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(referrals), nil
}

func (is *indexerService) index(ctx context.Context, referral *types.Referral) error {
	in := search.ReferralDocumentInput{Referral: referral}

	if referral.TopicID != nil {
		topics, err := is.topicRepo.GetByIDs(ctx, nil, []uuid.UUID{*referral.TopicID})
		if err != nil {
			return fmt.Errorf("load topic: %w", err)
		}
		if len(topics) > 0 {
			in.Topic = topics[0]
		}
	}
	if referral.UrgencyLevelID != nil {
		urgency, err := is.urgencyRepo.GetByID(ctx, nil, *referral.UrgencyLevelID)
		if err != nil {
			return fmt.Errorf("load urgency: %w", err)
		}
		in.Urgency = urgency
	}

	unitAssignments, err := is.unitAssignmentRepo.ListByReferral(ctx, nil, referral.ID)
	if err != nil {
		return fmt.Errorf("list unit assignments: %w", err)
	}
	unitIDs := make([]uuid.UUID, 0, len(unitAssignments))
	for _, a := range unitAssignments {
		unitIDs = append(unitIDs, a.UnitID)
	}
	if len(unitIDs) > 0 {
		in.Units, err = is.unitRepo.GetByIDs(ctx, nil, unitIDs)
		if err != nil {
			return fmt.Errorf("load units: %w", err)
		}
	}

	in.Assignments, err = is.assignmentRepo.ListByReferral(ctx, nil, referral.ID)
	if err != nil {
		return fmt.Errorf("list assignments: %w", err)
	}

	in.Links, err = is.userLinkRepo.ListByReferral(ctx, nil, referral.ID)
	if err != nil {
		return fmt.Errorf("list user links: %w", err)
	}
	userIDs := make([]uuid.UUID, 0, len(in.Links))
	for _, link := range in.Links {
		userIDs = append(userIDs, link.UserID)
	}
	if len(userIDs) > 0 {
		in.LinkedUsers, err = is.userRepo.GetByIDs(ctx, nil, userIDs)
		if err != nil {
			return fmt.Errorf("load linked users: %w", err)
		}
	}

	in.Report, err = is.reportRepo.GetByReferralID(ctx, nil, referral.ID)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	if err := is.bus.PublishReferral(ctx, search.BuildReferralDocument(in)); err != nil {
		return fmt.Errorf("publish referral document: %w", err)
	}

	if in.Report != nil && in.Report.FinalVersionID != nil {
		finalVersion, err := is.versionRepo.GetByID(ctx, nil, *in.Report.FinalVersionID)
		if err != nil {
			return fmt.Errorf("load final version: %w", err)
		}
		if note := search.BuildNoteDocument(in, finalVersion); note != nil {
			if err := is.bus.PublishNote(ctx, *note); err != nil {
				return fmt.Errorf("publish note document: %w", err)
			}
		}
	}
	return nil
}
