package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/partaj-app/partaj-backend/internal/data/repos"
	types "github.com/partaj-app/partaj-backend/internal/domain"
	notifdomain "github.com/partaj-app/partaj-backend/internal/domain/notifications"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
	reportsdomain "github.com/partaj-app/partaj-backend/internal/domain/reports"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

// VersionInput is the uploaded document behind a report version.
type VersionInput struct {
	DocumentName string
	DocumentKey  string
	DocumentSize int64
}

// ValidationTargets names who a validation request is addressed to:
// specific units, a role, or both. Targeted users gain change-request
// and validate rights on the version while the request stays active.
type ValidationTargets struct {
	UnitIDs []uuid.UUID
	Role    string
}

// ReportService drives the per-version validation workflow layered on
// top of the referral lifecycle: draft versions, validation requests,
// change requests, validations, and the final publish.
type ReportService interface {
	GetByReferral(ctx context.Context, actorID, referralID uuid.UUID) (*types.ReferralReport, []*types.ReferralReportVersion, error)
	ListEvents(ctx context.Context, actorID, referralID uuid.UUID) ([]*types.ReportEvent, error)

	CreateVersion(ctx context.Context, actorID, referralID uuid.UUID, in VersionInput) (*types.ReferralReportVersion, error)
	UpdateVersion(ctx context.Context, actorID, referralID, versionID uuid.UUID, in VersionInput) (*types.ReferralReportVersion, error)
	RequestValidation(ctx context.Context, actorID, referralID, versionID uuid.UUID, targets ValidationTargets, comment string) (*types.ReportEvent, error)
	RequestChange(ctx context.Context, actorID, referralID, versionID uuid.UUID, comment string) (*types.ReportEvent, error)
	Validate(ctx context.Context, actorID, referralID, versionID uuid.UUID, comment string) (*types.ReportEvent, error)
	Publish(ctx context.Context, actorID, referralID, versionID uuid.UUID, comment string) (*types.ReferralReport, error)
}

type reportService struct {
	db  *gorm.DB
	log *logger.Logger

	referralRepo       repos.ReferralRepo
	reportRepo         repos.ReportRepo
	versionRepo        repos.VersionRepo
	eventRepo          repos.EventRepo
	publishmentRepo    repos.PublishmentRepo
	membershipRepo     repos.MembershipRepo
	unitAssignmentRepo repos.UnitAssignmentRepo

	activityService ActivityService
	notifier        NotifierService
}

func NewReportService(
	db *gorm.DB,
	log *logger.Logger,
	referralRepo repos.ReferralRepo,
	reportRepo repos.ReportRepo,
	versionRepo repos.VersionRepo,
	eventRepo repos.EventRepo,
	publishmentRepo repos.PublishmentRepo,
	membershipRepo repos.MembershipRepo,
	unitAssignmentRepo repos.UnitAssignmentRepo,
	activityService ActivityService,
	notifier NotifierService,
) ReportService {
	serviceLog := log.With("service", "ReportService")
	return &reportService{
		db:                 db,
		log:                serviceLog,
		referralRepo:       referralRepo,
		reportRepo:         reportRepo,
		versionRepo:        versionRepo,
		eventRepo:          eventRepo,
		publishmentRepo:    publishmentRepo,
		membershipRepo:     membershipRepo,
		unitAssignmentRepo: unitAssignmentRepo,
		activityService:    activityService,
		notifier:           notifier,
	}
}

func (ps *reportService) GetByReferral(ctx context.Context, actorID, referralID uuid.UUID) (*types.ReferralReport, []*types.ReferralReportVersion, error) {
	if err := ps.requireUnitMember(ctx, nil, referralID, actorID); err != nil {
		return nil, nil, err
	}
	report, err := ps.loadReport(ctx, nil, referralID)
	if err != nil {
		return nil, nil, err
	}
	versions, err := ps.versionRepo.ListByReport(ctx, nil, report.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list versions: %w", err)
	}
	return report, versions, nil
}

func (ps *reportService) ListEvents(ctx context.Context, actorID, referralID uuid.UUID) ([]*types.ReportEvent, error) {
	if err := ps.requireUnitMember(ctx, nil, referralID, actorID); err != nil {
		return nil, err
	}
	report, err := ps.loadReport(ctx, nil, referralID)
	if err != nil {
		return nil, err
	}
	return ps.eventRepo.ListByReport(ctx, nil, report.ID)
}

// CreateVersion appends a draft version. The first version moves the
// referral into PROCESSING.
func (ps *reportService) CreateVersion(ctx context.Context, actorID, referralID uuid.UUID, in VersionInput) (*types.ReferralReportVersion, error) {
	var created *types.ReferralReportVersion
	var notifyReferral *types.Referral
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := ps.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(refdomain.OpAddVersion, referral.State); err != nil {
			return err
		}
		if err := ps.requireUnitMember(ctx, tx, referralID, actorID); err != nil {
			return err
		}
		if in.DocumentName == "" || in.DocumentKey == "" {
			return refdomain.NewValidationError("a document is required to create a version")
		}

		report, err := ps.loadReport(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if report.IsPublished() {
			return refdomain.NewAuthorizationError("report is already published")
		}

		max, err := ps.versionRepo.MaxVersionNumber(ctx, tx, report.ID)
		if err != nil {
			return fmt.Errorf("max version number: %w", err)
		}

		version := &types.ReferralReportVersion{
			ReportID:      report.ID,
			VersionNumber: max + 1,
			DocumentName:  in.DocumentName,
			DocumentKey:   in.DocumentKey,
			DocumentSize:  in.DocumentSize,
			CreatedByID:   actorID,
		}
		versions, err := ps.versionRepo.Create(ctx, tx, []*types.ReferralReportVersion{version})
		if err != nil {
			return fmt.Errorf("create version: %w", err)
		}
		created = versions[0]

		if referral.State != refdomain.StateProcessing {
			if err := ps.referralRepo.UpdateState(ctx, tx, referralID, refdomain.StateProcessing); err != nil {
				return fmt.Errorf("update state: %w", err)
			}
		}

		if _, err := ps.activityService.Record(ctx, tx, referralID, actorID, refdomain.VerbVersionAdded, refdomain.ItemKindReportVersion, &created.ID, ""); err != nil {
			return err
		}

		notifyReferral, err = ps.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}

	ps.notifier.Notify(ctx, NotifyInput{
		Type:         notifdomain.TypeVersionAdded,
		Referral:     notifyReferral,
		ActorID:      actorID,
		ItemKind:     refdomain.ItemKindReportVersion,
		ItemID:       &created.ID,
		IncludeUnits: true,
	})
	return created, nil
}

// UpdateVersion replaces the document of the last version. Only the
// version's author may update it, and only while it is still the last.
func (ps *reportService) UpdateVersion(ctx context.Context, actorID, referralID, versionID uuid.UUID, in VersionInput) (*types.ReferralReportVersion, error) {
	var updated *types.ReferralReportVersion
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := ps.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(refdomain.OpAddVersion, referral.State); err != nil {
			return err
		}

		version, report, err := ps.loadVersion(ctx, tx, referralID, versionID)
		if err != nil {
			return err
		}
		if version.CreatedByID != actorID {
			return refdomain.NewAuthorizationError("only the author of a version may update it")
		}
		last, err := ps.versionRepo.GetLast(ctx, tx, report.ID)
		if err != nil {
			return fmt.Errorf("load last version: %w", err)
		}
		if last == nil || last.ID != version.ID {
			return refdomain.NewAuthorizationError("only the last version may be updated")
		}
		if in.DocumentName == "" || in.DocumentKey == "" {
			return refdomain.NewValidationError("a document is required to update a version")
		}

		if err := ps.versionRepo.UpdateDocument(ctx, tx, versionID, in.DocumentName, in.DocumentKey, in.DocumentSize); err != nil {
			return fmt.Errorf("update version document: %w", err)
		}
		updated, err = ps.versionRepo.GetByID(ctx, tx, versionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RequestValidation opens a validation round on a version and moves the
// referral into IN_VALIDATION. Targets name the units or role asked to
// validate. Only one validation request stays active per version: a new
// one obsoletes the prior.
func (ps *reportService) RequestValidation(ctx context.Context, actorID, referralID, versionID uuid.UUID, targets ValidationTargets, comment string) (*types.ReportEvent, error) {
	return ps.createEvent(ctx, actorID, referralID, versionID, comment, eventSpec{
		op:               refdomain.OpRequestValidation,
		verb:             reportsdomain.EventRequestValidation,
		activityVerb:     refdomain.VerbValidationRequested,
		targets:          targets,
		moveToValidation: true,
		notifyType:       notifdomain.TypeValidationRequested,
		notifyUnits:      true,
	})
}

// RequestChange records a change request from a granted user and
// cancels the active validation request plus any standing validations.
func (ps *reportService) RequestChange(ctx context.Context, actorID, referralID, versionID uuid.UUID, comment string) (*types.ReportEvent, error) {
	return ps.createEvent(ctx, actorID, referralID, versionID, comment, eventSpec{
		op:             refdomain.OpPerformValidation,
		verb:           reportsdomain.EventRequestChange,
		activityVerb:   refdomain.VerbValidationDenied,
		requireGranted: true,
		notifyType:     notifdomain.TypeValidationPerformed,
		notifyAuthor:   true,
	})
}

// Validate records a validation from a granted user. Validations from
// different grantees stack; each cancels the open validation request.
func (ps *reportService) Validate(ctx context.Context, actorID, referralID, versionID uuid.UUID, comment string) (*types.ReportEvent, error) {
	return ps.createEvent(ctx, actorID, referralID, versionID, comment, eventSpec{
		op:             refdomain.OpPerformValidation,
		verb:           reportsdomain.EventVersionValidated,
		activityVerb:   refdomain.VerbValidated,
		requireGranted: true,
		notifyType:     notifdomain.TypeValidationPerformed,
		notifyAuthor:   true,
	})
}

type eventSpec struct {
	op               string
	verb             string
	activityVerb     string
	requireGranted   bool
	targets          ValidationTargets
	moveToValidation bool
	notifyType       string
	notifyUnits      bool
	notifyAuthor     bool
}

func (ps *reportService) createEvent(ctx context.Context, actorID, referralID, versionID uuid.UUID, comment string, spec eventSpec) (*types.ReportEvent, error) {
	var created *types.ReportEvent
	var notifyReferral *types.Referral
	var authorID uuid.UUID
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := ps.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(spec.op, referral.State); err != nil {
			return err
		}
		if !spec.requireGranted {
			if err := ps.requireUnitMember(ctx, tx, referralID, actorID); err != nil {
				return err
			}
		}

		version, report, err := ps.loadVersion(ctx, tx, referralID, versionID)
		if err != nil {
			return err
		}
		authorID = version.CreatedByID

		last, err := ps.versionRepo.GetLast(ctx, tx, report.ID)
		if err != nil {
			return fmt.Errorf("load last version: %w", err)
		}
		if last == nil || last.ID != version.ID {
			return refdomain.NewAuthorizationError("only the last version may go through validation")
		}

		existing, err := ps.eventRepo.ListByVersion(ctx, tx, versionID)
		if err != nil {
			return fmt.Errorf("list version events: %w", err)
		}
		if spec.requireGranted {
			if err := ps.requireGranted(ctx, tx, referralID, actorID, deref(existing)); err != nil {
				return err
			}
		}
		superseded := reportsdomain.SupersededBy(spec.verb, deref(existing))
		if len(superseded) > 0 {
			state := reportsdomain.StateAfterSupersede(spec.verb)
			if err := ps.eventRepo.UpdateStates(ctx, tx, superseded, state); err != nil {
				return fmt.Errorf("supersede events: %w", err)
			}
		}

		metadata, err := ps.eventMetadata(ctx, tx, referralID, actorID, spec.targets)
		if err != nil {
			return err
		}

		event := &types.ReportEvent{
			ReportID:  report.ID,
			VersionID: &versionID,
			Verb:      spec.verb,
			State:     reportsdomain.EventStateActive,
			ActorID:   actorID,
			Comment:   comment,
			Metadata:  metadata,
		}
		events, err := ps.eventRepo.Create(ctx, tx, []*types.ReportEvent{event})
		if err != nil {
			return fmt.Errorf("create report event: %w", err)
		}
		created = events[0]

		if spec.moveToValidation && referral.State != refdomain.StateInValidation {
			if err := ps.referralRepo.UpdateState(ctx, tx, referralID, refdomain.StateInValidation); err != nil {
				return fmt.Errorf("update state: %w", err)
			}
		}

		if _, err := ps.activityService.Record(ctx, tx, referralID, actorID, spec.activityVerb, refdomain.ItemKindReportEvent, &created.ID, comment); err != nil {
			return err
		}

		notifyReferral, err = ps.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}

	in := NotifyInput{
		Type:         spec.notifyType,
		Referral:     notifyReferral,
		ActorID:      actorID,
		ItemKind:     refdomain.ItemKindReportEvent,
		ItemID:       &created.ID,
		IncludeUnits: spec.notifyUnits,
		TemplateData: map[string]any{"comment": comment},
	}
	if spec.notifyAuthor {
		in.Direct = []uuid.UUID{authorID}
	}
	ps.notifier.Notify(ctx, in)
	return created, nil
}

// Publish freezes the last version as the final answer, moves the
// referral to ANSWERED, and records the publishment. A published report
// can never be published again.
func (ps *reportService) Publish(ctx context.Context, actorID, referralID, versionID uuid.UUID, comment string) (*types.ReferralReport, error) {
	var published *types.ReferralReport
	var notifyReferral *types.Referral
	var authorID uuid.UUID
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := ps.loadReferral(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if err := refdomain.GuardTransition(refdomain.OpPublishReport, referral.State); err != nil {
			return err
		}
		if err := ps.requireUnitMember(ctx, tx, referralID, actorID); err != nil {
			return err
		}

		version, report, err := ps.loadVersion(ctx, tx, referralID, versionID)
		if err != nil {
			return err
		}
		if report.IsPublished() {
			return refdomain.NewAuthorizationError("report is already published")
		}
		authorID = version.CreatedByID

		last, err := ps.versionRepo.GetLast(ctx, tx, report.ID)
		if err != nil {
			return fmt.Errorf("load last version: %w", err)
		}
		if last == nil || last.ID != version.ID {
			return refdomain.NewAuthorizationError("only the last version may be published")
		}

		if err := ps.reportRepo.MarkPublished(ctx, tx, report.ID, versionID, time.Now(), comment); err != nil {
			return fmt.Errorf("mark published: %w", err)
		}

		publishment := &types.ReferralReportPublishment{
			ReportID:    report.ID,
			VersionID:   versionID,
			CreatedByID: actorID,
		}
		if _, err := ps.publishmentRepo.Create(ctx, tx, []*types.ReferralReportPublishment{publishment}); err != nil {
			return fmt.Errorf("create publishment: %w", err)
		}

		if err := ps.referralRepo.UpdateState(ctx, tx, referralID, refdomain.StateAnswered); err != nil {
			return fmt.Errorf("update state: %w", err)
		}

		if _, err := ps.activityService.Record(ctx, tx, referralID, actorID, refdomain.VerbAnswered, refdomain.ItemKindReportVersion, &versionID, comment); err != nil {
			return err
		}

		published, err = ps.reportRepo.GetByID(ctx, tx, report.ID)
		if err != nil {
			return err
		}
		notifyReferral, err = ps.loadReferral(ctx, tx, referralID)
		return err
	})
	if err != nil {
		return nil, err
	}

	ps.notifier.Notify(ctx, NotifyInput{
		Type:          notifdomain.TypeReferralAnswered,
		Referral:      notifyReferral,
		ActorID:       actorID,
		ItemKind:      refdomain.ItemKindReportVersion,
		ItemID:        &versionID,
		IncludeLinked: true,
		IncludeUnits:  true,
		Direct:        []uuid.UUID{authorID},
		TemplateData:  map[string]any{"answer_comment": comment},
	})
	return published, nil
}

func (ps *reportService) loadReferral(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (*types.Referral, error) {
	referral, err := ps.referralRepo.GetByID(ctx, tx, referralID)
	if err != nil {
		return nil, fmt.Errorf("load referral: %w", err)
	}
	if referral == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return referral, nil
}

func (ps *reportService) loadReport(ctx context.Context, tx *gorm.DB, referralID uuid.UUID) (*types.ReferralReport, error) {
	report, err := ps.reportRepo.GetByReferralID(ctx, tx, referralID)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if report == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return report, nil
}

func (ps *reportService) loadVersion(ctx context.Context, tx *gorm.DB, referralID, versionID uuid.UUID) (*types.ReferralReportVersion, *types.ReferralReport, error) {
	report, err := ps.loadReport(ctx, tx, referralID)
	if err != nil {
		return nil, nil, err
	}
	version, err := ps.versionRepo.GetByID(ctx, tx, versionID)
	if err != nil {
		return nil, nil, fmt.Errorf("load version: %w", err)
	}
	if version == nil || version.ReportID != report.ID {
		return nil, nil, refdomain.NewInvalidReferenceError("report version", versionID.String())
	}
	return version, report, nil
}

// eventMetadata captures, at event time, which assigned unit the actor
// spoke for, and for validation requests who the request targets.
// Validation routing reads it back when deciding who may validate.
func (ps *reportService) eventMetadata(ctx context.Context, tx *gorm.DB, referralID, actorID uuid.UUID, targets ValidationTargets) (datatypes.JSON, error) {
	assignments, err := ps.unitAssignmentRepo.ListByReferral(ctx, tx, referralID)
	if err != nil {
		return nil, fmt.Errorf("list unit assignments: %w", err)
	}
	meta := reportsdomain.EventMetadata{
		ReceiverRole:    targets.Role,
		ReceiverUnitIDs: targets.UnitIDs,
	}
	for _, a := range assignments {
		membership, err := ps.membershipRepo.GetByUserAndUnit(ctx, tx, actorID, a.UnitID)
		if err != nil {
			return nil, fmt.Errorf("load actor membership: %w", err)
		}
		if membership != nil {
			meta.SenderRole = membership.Role
			meta.SenderUnitID = &membership.UnitID
			break
		}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode event metadata: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func (ps *reportService) requireUnitMember(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID) error {
	assignments, err := ps.unitAssignmentRepo.ListByReferral(ctx, tx, referralID)
	if err != nil {
		return fmt.Errorf("list unit assignments: %w", err)
	}
	unitIDs := make([]uuid.UUID, 0, len(assignments))
	for _, a := range assignments {
		unitIDs = append(unitIDs, a.UnitID)
	}
	if len(unitIDs) == 0 {
		return refdomain.NewAuthorizationError("user %s has no access to this report", userID)
	}
	member, err := ps.membershipRepo.IsMemberOfAny(ctx, tx, userID, unitIDs)
	if err != nil {
		return fmt.Errorf("check memberships: %w", err)
	}
	if !member {
		return refdomain.NewAuthorizationError("user %s has no access to this report", userID)
	}
	return nil
}

func (ps *reportService) requireUnitOrganizer(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID) error {
	assignments, err := ps.unitAssignmentRepo.ListByReferral(ctx, tx, referralID)
	if err != nil {
		return fmt.Errorf("list unit assignments: %w", err)
	}
	for _, a := range assignments {
		membership, err := ps.membershipRepo.GetByUserAndUnit(ctx, tx, userID, a.UnitID)
		if err != nil {
			return fmt.Errorf("load membership: %w", err)
		}
		if membership != nil && membership.IsOwnerOrAdmin() {
			return nil
		}
	}
	return refdomain.NewAuthorizationError("user %s is not granted to act on validations for this referral", userID)
}

// requireGranted accepts owners and admins of the assigned units, plus
// any user the version's active validation request targets. A request
// naming only a role addresses holders of that role within the
// referral's assigned units; a request naming units addresses members
// of those units wherever they sit.
func (ps *reportService) requireGranted(ctx context.Context, tx *gorm.DB, referralID, userID uuid.UUID, events []types.ReportEvent) error {
	if err := ps.requireUnitOrganizer(ctx, tx, referralID, userID); err == nil {
		return nil
	}

	request := reportsdomain.ActiveValidationRequest(events)
	if request == nil || len(request.Metadata) == 0 {
		return refdomain.NewAuthorizationError("user %s is not granted to act on validations for this referral", userID)
	}
	var meta reportsdomain.EventMetadata
	if err := json.Unmarshal(request.Metadata, &meta); err != nil {
		return fmt.Errorf("decode validation request metadata: %w", err)
	}

	memberships, err := ps.membershipRepo.ListByUser(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("load memberships: %w", err)
	}
	assigned := map[uuid.UUID]bool{}
	if len(meta.ReceiverUnitIDs) == 0 {
		assignments, err := ps.unitAssignmentRepo.ListByReferral(ctx, tx, referralID)
		if err != nil {
			return fmt.Errorf("list unit assignments: %w", err)
		}
		for _, a := range assignments {
			assigned[a.UnitID] = true
		}
	}
	for _, m := range memberships {
		if len(meta.ReceiverUnitIDs) == 0 && !assigned[m.UnitID] {
			continue
		}
		if meta.Covers(m.UnitID, m.Role) {
			return nil
		}
	}
	return refdomain.NewAuthorizationError("user %s is not granted to act on validations for this referral", userID)
}

func deref(events []*types.ReportEvent) []types.ReportEvent {
	out := make([]types.ReportEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, *ev)
	}
	return out
}
