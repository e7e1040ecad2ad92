package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partaj-app/partaj-backend/internal/data/repos"
	types "github.com/partaj-app/partaj-backend/internal/domain"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
	unitsdomain "github.com/partaj-app/partaj-backend/internal/domain/units"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

// UnitService reads and administers units, memberships, and the topic
// tree that routes referrals to units.
type UnitService interface {
	List(ctx context.Context) ([]*types.Unit, error)
	Get(ctx context.Context, unitID uuid.UUID) (*types.Unit, []*types.UnitMembership, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*types.UnitMembership, error)
	AddMember(ctx context.Context, actorID, unitID, userID uuid.UUID, role string) (*types.UnitMembership, error)
	ListTopics(ctx context.Context) ([]*types.Topic, error)
	ListUrgencies(ctx context.Context) ([]*types.ReferralUrgency, error)
}

type unitService struct {
	db  *gorm.DB
	log *logger.Logger

	unitRepo       repos.UnitRepo
	membershipRepo repos.MembershipRepo
	topicRepo      repos.TopicRepo
	urgencyRepo    repos.UrgencyRepo
	userRepo       repos.UserRepo
}

func NewUnitService(
	db *gorm.DB,
	log *logger.Logger,
	unitRepo repos.UnitRepo,
	membershipRepo repos.MembershipRepo,
	topicRepo repos.TopicRepo,
	urgencyRepo repos.UrgencyRepo,
	userRepo repos.UserRepo,
) UnitService {
	serviceLog := log.With("service", "UnitService")
	return &unitService{
		db:             db,
		log:            serviceLog,
		unitRepo:       unitRepo,
		membershipRepo: membershipRepo,
		topicRepo:      topicRepo,
		urgencyRepo:    urgencyRepo,
		userRepo:       userRepo,
	}
}

func (us *unitService) List(ctx context.Context) ([]*types.Unit, error) {
	return us.unitRepo.List(ctx, nil)
}

func (us *unitService) Get(ctx context.Context, unitID uuid.UUID) (*types.Unit, []*types.UnitMembership, error) {
	units, err := us.unitRepo.GetByIDs(ctx, nil, []uuid.UUID{unitID})
	if err != nil {
		return nil, nil, fmt.Errorf("load unit: %w", err)
	}
	if len(units) == 0 {
		return nil, nil, gorm.ErrRecordNotFound
	}
	memberships, err := us.membershipRepo.ListByUnits(ctx, nil, []uuid.UUID{unitID})
	if err != nil {
		return nil, nil, fmt.Errorf("list memberships: %w", err)
	}
	return units[0], memberships, nil
}

func (us *unitService) ListMine(ctx context.Context, userID uuid.UUID) ([]*types.UnitMembership, error) {
	return us.membershipRepo.ListByUser(ctx, nil, userID)
}

// AddMember creates a membership. Only owners and admins of the unit
// may grow it.
func (us *unitService) AddMember(ctx context.Context, actorID, unitID, userID uuid.UUID, role string) (*types.UnitMembership, error) {
	switch role {
	case unitsdomain.RoleOwner, unitsdomain.RoleAdmin, unitsdomain.RoleMember:
	default:
		return nil, refdomain.NewValidationError("unknown unit role %q", role)
	}

	var created *types.UnitMembership
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := us.membershipRepo.GetByUserAndUnit(ctx, tx, actorID, unitID)
		if err != nil {
			return fmt.Errorf("load actor membership: %w", err)
		}
		if actor == nil || !actor.IsOwnerOrAdmin() {
			return refdomain.NewAuthorizationError("user %s is not an owner or admin of unit %s", actorID, unitID)
		}

		found, err := us.userRepo.GetByIDs(ctx, tx, []uuid.UUID{userID})
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if len(found) == 0 {
			return refdomain.NewInvalidReferenceError("user", userID.String())
		}

		existing, err := us.membershipRepo.GetByUserAndUnit(ctx, tx, userID, unitID)
		if err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if existing != nil {
			return refdomain.NewDuplicateLinkError(fmt.Sprintf("user %s is already a member of unit %s", userID, unitID))
		}

		membership := &types.UnitMembership{
			UserID: userID,
			UnitID: unitID,
			Role:   role,
		}
		memberships, err := us.membershipRepo.Create(ctx, tx, []*types.UnitMembership{membership})
		if err != nil {
			return fmt.Errorf("create membership: %w", err)
		}
		created = memberships[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (us *unitService) ListTopics(ctx context.Context) ([]*types.Topic, error) {
	return us.topicRepo.ListActive(ctx, nil)
}

func (us *unitService) ListUrgencies(ctx context.Context) ([]*types.ReferralUrgency, error) {
	return us.urgencyRepo.List(ctx, nil)
}
