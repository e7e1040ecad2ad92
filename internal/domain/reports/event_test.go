package reports

import (
	"testing"

	"github.com/google/uuid"
)

func event(verb, state string) ReportEvent {
	return ReportEvent{ID: uuid.New(), Verb: verb, State: state}
}

func TestSupersededByRequestValidation(t *testing.T) {
	t.Parallel()

	prior := event(EventRequestValidation, EventStateActive)
	obsolete := event(EventRequestValidation, EventStateObsolete)
	validated := event(EventVersionValidated, EventStateActive)

	got := SupersededBy(EventRequestValidation, []ReportEvent{prior, obsolete, validated})
	if len(got) != 1 || got[0] != prior.ID {
		t.Fatalf("unexpected superseded set: %v", got)
	}
}

func TestSupersededByRequestChange(t *testing.T) {
	t.Parallel()

	request := event(EventRequestValidation, EventStateActive)
	validated := event(EventVersionValidated, EventStateActive)
	inactive := event(EventVersionValidated, EventStateInactive)
	message := event(EventMessage, EventStateActive)

	got := SupersededBy(EventRequestChange, []ReportEvent{request, validated, inactive, message})
	if len(got) != 2 {
		t.Fatalf("unexpected superseded count: %v", got)
	}
	found := map[uuid.UUID]bool{}
	for _, id := range got {
		found[id] = true
	}
	if !found[request.ID] || !found[validated.ID] {
		t.Fatalf("superseded set missing expected events: %v", got)
	}
}

func TestSupersededByVersionValidatedLeavesValidationsActive(t *testing.T) {
	t.Parallel()

	request := event(EventRequestValidation, EventStateActive)
	validated := event(EventVersionValidated, EventStateActive)

	got := SupersededBy(EventVersionValidated, []ReportEvent{request, validated})
	if len(got) != 1 || got[0] != request.ID {
		t.Fatalf("unexpected superseded set: %v", got)
	}
}

func TestSupersededByEmptyHistory(t *testing.T) {
	t.Parallel()

	if got := SupersededBy(EventRequestValidation, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestStateAfterSupersede(t *testing.T) {
	t.Parallel()

	if got := StateAfterSupersede(EventRequestValidation); got != EventStateObsolete {
		t.Fatalf("request_validation: got=%s", got)
	}
	if got := StateAfterSupersede(EventRequestChange); got != EventStateInactive {
		t.Fatalf("request_change: got=%s", got)
	}
	if got := StateAfterSupersede(EventVersionValidated); got != EventStateInactive {
		t.Fatalf("version_validated: got=%s", got)
	}
}

func TestMetadataCovers(t *testing.T) {
	t.Parallel()

	unitA := uuid.New()
	unitB := uuid.New()

	cases := []struct {
		name   string
		meta   EventMetadata
		unitID uuid.UUID
		role   string
		want   bool
	}{
		{"no targets covers nobody", EventMetadata{}, unitA, "owner", false},
		{"unit target covers its member", EventMetadata{ReceiverUnitIDs: []uuid.UUID{unitA}}, unitA, "member", true},
		{"unit target excludes other units", EventMetadata{ReceiverUnitIDs: []uuid.UUID{unitA}}, unitB, "member", false},
		{"role target covers role holder", EventMetadata{ReceiverRole: "member"}, unitA, "member", true},
		{"role target excludes other roles", EventMetadata{ReceiverRole: "admin"}, unitA, "member", false},
		{"unit and role both required", EventMetadata{ReceiverRole: "member", ReceiverUnitIDs: []uuid.UUID{unitA}}, unitA, "admin", false},
		{"unit and role both match", EventMetadata{ReceiverRole: "member", ReceiverUnitIDs: []uuid.UUID{unitB, unitA}}, unitA, "member", true},
	}
	for _, tc := range cases {
		if got := tc.meta.Covers(tc.unitID, tc.role); got != tc.want {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestActiveValidationRequest(t *testing.T) {
	t.Parallel()

	obsolete := event(EventRequestValidation, EventStateObsolete)
	active := event(EventRequestValidation, EventStateActive)
	validated := event(EventVersionValidated, EventStateActive)

	got := ActiveValidationRequest([]ReportEvent{obsolete, validated, active})
	if got == nil || got.ID != active.ID {
		t.Fatalf("expected the active request, got %+v", got)
	}
	if got := ActiveValidationRequest([]ReportEvent{obsolete, validated}); got != nil {
		t.Fatalf("expected nil without an active request, got %+v", got)
	}
}
