package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partaj-app/partaj-backend/internal/data/repos"
	"github.com/partaj-app/partaj-backend/internal/data/repos/testutil"
	types "github.com/partaj-app/partaj-backend/internal/domain"
	refdomain "github.com/partaj-app/partaj-backend/internal/domain/referrals"
	reportsdomain "github.com/partaj-app/partaj-backend/internal/domain/reports"
	unitsdomain "github.com/partaj-app/partaj-backend/internal/domain/units"
)

// workflowEnv runs the referral and report services against a real
// database transaction, rolled back after each test.
type workflowEnv struct {
	tx *gorm.DB

	referrals ReferralService
	reports   ReportService

	activityRepo repos.ActivityRepo
	eventRepo    repos.EventRepo
	userLinkRepo repos.UserLinkRepo
	reportRepo   repos.ReportRepo
	versionRepo  repos.VersionRepo
}

func newWorkflowEnv(t *testing.T) *workflowEnv {
	t.Helper()
	tx := testutil.Tx(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(tx, log)
	unitRepo := repos.NewUnitRepo(tx, log)
	membershipRepo := repos.NewMembershipRepo(tx, log)
	topicRepo := repos.NewTopicRepo(tx, log)
	referralRepo := repos.NewReferralRepo(tx, log)
	userLinkRepo := repos.NewUserLinkRepo(tx, log)
	assignmentRepo := repos.NewAssignmentRepo(tx, log)
	unitAssignmentRepo := repos.NewUnitAssignmentRepo(tx, log)
	activityRepo := repos.NewActivityRepo(tx, log)
	urgencyRepo := repos.NewUrgencyRepo(tx, log)
	urgencyHistoryRepo := repos.NewUrgencyHistoryRepo(tx, log)
	notificationRepo := repos.NewNotificationRepo(tx, log)
	reportRepo := repos.NewReportRepo(tx, log)
	versionRepo := repos.NewVersionRepo(tx, log)
	eventRepo := repos.NewEventRepo(tx, log)
	publishmentRepo := repos.NewPublishmentRepo(tx, log)

	activity := NewActivityService(tx, log, activityRepo)
	mailer := NewMailerService(log, nil, DefaultMailTemplates())
	notifier := NewNotifierService(
		tx, log,
		userRepo, userLinkRepo, unitAssignmentRepo, membershipRepo, notificationRepo,
		mailer, "http://localhost:3000",
	)

	return &workflowEnv{
		tx: tx,
		referrals: NewReferralService(
			tx, log,
			referralRepo, userRepo, unitRepo, topicRepo, membershipRepo,
			userLinkRepo, assignmentRepo, unitAssignmentRepo,
			urgencyRepo, urgencyHistoryRepo, reportRepo,
			activity, notifier,
		),
		reports: NewReportService(
			tx, log,
			referralRepo, reportRepo, versionRepo, eventRepo, publishmentRepo,
			membershipRepo, unitAssignmentRepo,
			activity, notifier,
		),
		activityRepo: activityRepo,
		eventRepo:    eventRepo,
		userLinkRepo: userLinkRepo,
		reportRepo:   reportRepo,
		versionRepo:  versionRepo,
	}
}

func (e *workflowEnv) user(t *testing.T, email string) uuid.UUID {
	t.Helper()
	u := &types.User{Email: email, Password: "x", FirstName: "Test", LastName: "User"}
	if err := e.tx.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u.ID
}

func (e *workflowEnv) unit(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u := &types.Unit{Name: name}
	if err := e.tx.Create(u).Error; err != nil {
		t.Fatalf("seed unit %s: %v", name, err)
	}
	return u.ID
}

func (e *workflowEnv) member(t *testing.T, userID, unitID uuid.UUID, role string) {
	t.Helper()
	m := &types.UnitMembership{UserID: userID, UnitID: unitID, Role: role}
	if err := e.tx.Create(m).Error; err != nil {
		t.Fatalf("seed membership: %v", err)
	}
}

// fixture seeds a unit with an owner and a plain member, reference
// data, and a referral sent by a requester into that unit.
type fixture struct {
	requesterID uuid.UUID
	ownerID     uuid.UUID
	memberID    uuid.UUID
	unitID      uuid.UUID
	referralID  uuid.UUID
}

func (e *workflowEnv) sentReferral(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	unitID := e.unit(t, "DAJ "+uuid.NewString())
	ownerID := e.user(t, uuid.NewString()+"-owner@example.com")
	memberID := e.user(t, uuid.NewString()+"-member@example.com")
	requesterID := e.user(t, uuid.NewString()+"-requester@example.com")
	e.member(t, ownerID, unitID, unitsdomain.RoleOwner)
	e.member(t, memberID, unitID, unitsdomain.RoleMember)

	topic := &types.Topic{Name: "public procurement", UnitID: unitID, IsActive: true}
	if err := e.tx.Create(topic).Error; err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	urgency := &types.ReferralUrgency{Name: "three weeks", DurationHours: 21 * 24, IsDefault: true}
	if err := e.tx.Create(urgency).Error; err != nil {
		t.Fatalf("seed urgency: %v", err)
	}

	draft, err := e.referrals.CreateDraft(ctx, requesterID, CreateDraftInput{
		Title:    "land use question",
		Object:   "land use",
		Question: "may the prefecture requalify the parcel",
		TopicID:  &topic.ID,
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if _, err := e.referrals.Send(ctx, requesterID, draft.ID); err != nil {
		t.Fatalf("send referral: %v", err)
	}

	return fixture{
		requesterID: requesterID,
		ownerID:     ownerID,
		memberID:    memberID,
		unitID:      unitID,
		referralID:  draft.ID,
	}
}

func (e *workflowEnv) version(t *testing.T, f fixture) uuid.UUID {
	t.Helper()
	v, err := e.reports.CreateVersion(context.Background(), f.memberID, f.referralID, VersionInput{
		DocumentName: "answer-v1.docx",
		DocumentKey:  "reports/answer-v1.docx",
		DocumentSize: 2048,
	})
	if err != nil {
		t.Fatalf("create version: %v", err)
	}
	return v.ID
}

func TestValidateRightsFollowValidationRequestTargets(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()
	f := env.sentReferral(t)

	validatorUnitID := env.unit(t, "cabinet "+uuid.NewString())
	validatorID := env.user(t, uuid.NewString()+"-validator@example.com")
	env.member(t, validatorID, validatorUnitID, unitsdomain.RoleMember)

	versionID := env.version(t, f)
	_, err := env.reports.RequestValidation(ctx, f.memberID, f.referralID, versionID, ValidationTargets{
		UnitIDs: []uuid.UUID{validatorUnitID},
	}, "please validate")
	if err != nil {
		t.Fatalf("request validation: %v", err)
	}

	// A plain member of the assigned unit is not covered by the request.
	var authErr *refdomain.AuthorizationError
	if _, err := env.reports.Validate(ctx, f.memberID, f.referralID, versionID, "lgtm"); !errors.As(err, &authErr) {
		t.Fatalf("expected authorization error for uncovered member, got %v", err)
	}

	// The targeted member validates even without owner or admin rights.
	ev, err := env.reports.Validate(ctx, validatorID, f.referralID, versionID, "validated")
	if err != nil {
		t.Fatalf("targeted validator: %v", err)
	}
	if ev.Verb != reportsdomain.EventVersionValidated || ev.State != reportsdomain.EventStateActive {
		t.Fatalf("unexpected event: verb=%s state=%s", ev.Verb, ev.State)
	}

	referral, err := env.referrals.GetByID(ctx, f.ownerID, f.referralID)
	if err != nil {
		t.Fatalf("reload referral: %v", err)
	}
	if referral.State != refdomain.StateInValidation {
		t.Fatalf("state changed by validate: %s", referral.State)
	}
}

func TestRemoveLastRequesterRejected(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()
	f := env.sentReferral(t)

	var valErr *refdomain.ValidationError
	_, err := env.referrals.RemoveRequester(ctx, f.requesterID, f.referralID, f.requesterID)
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error removing the last requester, got %v", err)
	}

	colleagueID := env.user(t, uuid.NewString()+"-colleague@example.com")
	if _, err := env.referrals.AddRequester(ctx, f.requesterID, f.referralID, colleagueID, ""); err != nil {
		t.Fatalf("add second requester: %v", err)
	}
	if _, err := env.referrals.RemoveRequester(ctx, f.requesterID, f.referralID, f.requesterID); err != nil {
		t.Fatalf("remove with another requester left: %v", err)
	}
}

func TestAddRequesterIdempotenceAndPromotion(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()
	f := env.sentReferral(t)

	var dupErr *refdomain.DuplicateLinkError
	_, err := env.referrals.AddRequester(ctx, f.requesterID, f.referralID, f.requesterID, "")
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected duplicate link error, got %v", err)
	}

	observerID := env.user(t, uuid.NewString()+"-observer@example.com")
	if _, err := env.referrals.AddObserver(ctx, f.requesterID, f.referralID, observerID, ""); err != nil {
		t.Fatalf("add observer: %v", err)
	}
	if _, err := env.referrals.AddRequester(ctx, f.requesterID, f.referralID, observerID, ""); err != nil {
		t.Fatalf("promote observer: %v", err)
	}
	link, err := env.userLinkRepo.GetByReferralAndUser(ctx, env.tx, f.referralID, observerID)
	if err != nil {
		t.Fatalf("load link: %v", err)
	}
	if link == nil || link.Role != refdomain.LinkRoleRequester || link.Notifications != refdomain.NotifyAll {
		t.Fatalf("promotion left link %+v", link)
	}
}

func TestPublishTwiceRejected(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()
	f := env.sentReferral(t)
	versionID := env.version(t, f)

	report, err := env.reports.Publish(ctx, f.memberID, f.referralID, versionID, "final answer")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if report.FinalVersionID == nil || *report.FinalVersionID != versionID {
		t.Fatalf("final version not recorded: %+v", report)
	}

	if _, err := env.reports.Publish(ctx, f.memberID, f.referralID, versionID, "again"); err == nil {
		t.Fatal("expected second publish to be rejected")
	}

	referral, err := env.referrals.GetByID(ctx, f.memberID, f.referralID)
	if err != nil {
		t.Fatalf("reload referral: %v", err)
	}
	if referral.State != refdomain.StateAnswered {
		t.Fatalf("state after rejected republish: %s", referral.State)
	}
}

func TestAssignMemberRequiresRoutedUnit(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()
	f := env.sentReferral(t)

	strayUnitID := env.unit(t, "stray "+uuid.NewString())
	env.member(t, f.memberID, strayUnitID, unitsdomain.RoleMember)

	var refErr *refdomain.InvalidReferenceError
	_, err := env.referrals.AssignMember(ctx, f.ownerID, f.referralID, f.memberID, strayUnitID)
	if !errors.As(err, &refErr) {
		t.Fatalf("expected invalid reference for unrouted unit, got %v", err)
	}

	if _, err := env.referrals.AssignMember(ctx, f.ownerID, f.referralID, f.memberID, f.unitID); err != nil {
		t.Fatalf("assign within routed unit: %v", err)
	}
}

func TestRoundTripAppendsOneActivityPerStep(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()
	f := env.sentReferral(t)

	steps := []struct {
		verb string
		run  func() error
	}{
		{refdomain.VerbAssigned, func() error {
			_, err := env.referrals.AssignMember(ctx, f.ownerID, f.referralID, f.memberID, f.unitID)
			return err
		}},
		{refdomain.VerbVersionAdded, func() error {
			_, err := env.reports.CreateVersion(ctx, f.memberID, f.referralID, VersionInput{
				DocumentName: "answer-v1.docx", DocumentKey: "reports/answer-v1.docx", DocumentSize: 1,
			})
			return err
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("step %s: %v", step.verb, err)
		}
	}

	versions, err := env.versionRepo.ListByReport(ctx, env.tx, mustReportID(t, env, f.referralID))
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("expected one version, got %d", len(versions))
	}
	versionID := versions[0].ID

	rest := []struct {
		verb string
		run  func() error
	}{
		{refdomain.VerbValidationRequested, func() error {
			_, err := env.reports.RequestValidation(ctx, f.memberID, f.referralID, versionID, ValidationTargets{}, "")
			return err
		}},
		{refdomain.VerbValidated, func() error {
			_, err := env.reports.Validate(ctx, f.ownerID, f.referralID, versionID, "ok")
			return err
		}},
		{refdomain.VerbAnswered, func() error {
			_, err := env.reports.Publish(ctx, f.ownerID, f.referralID, versionID, "answer")
			return err
		}},
	}
	for _, step := range rest {
		if err := step.run(); err != nil {
			t.Fatalf("step %s: %v", step.verb, err)
		}
	}

	activities, err := env.activityRepo.ListByReferral(ctx, env.tx, f.referralID)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	// created, sent, assigned, version_added, validation_requested,
	// validated, answered: one per step.
	if len(activities) != 7 {
		verbs := make([]string, 0, len(activities))
		for _, a := range activities {
			verbs = append(verbs, a.Verb)
		}
		t.Fatalf("expected 7 activities, got %d: %v", len(activities), verbs)
	}
	seen := map[string]int{}
	for _, a := range activities {
		seen[a.Verb]++
	}
	for _, verb := range []string{
		refdomain.VerbCreated, refdomain.VerbSent, refdomain.VerbAssigned,
		refdomain.VerbVersionAdded, refdomain.VerbValidationRequested,
		refdomain.VerbValidated, refdomain.VerbAnswered,
	} {
		if seen[verb] != 1 {
			t.Fatalf("verb %s recorded %d times", verb, seen[verb])
		}
	}
}

func mustReportID(t *testing.T, env *workflowEnv, referralID uuid.UUID) uuid.UUID {
	t.Helper()
	report, err := env.reportRepo.GetByReferralID(context.Background(), env.tx, referralID)
	if err != nil {
		t.Fatalf("load report: %v", err)
	}
	if report == nil {
		t.Fatal("report missing")
	}
	return report.ID
}
