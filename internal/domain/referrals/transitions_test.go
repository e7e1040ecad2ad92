package referrals

import (
	"errors"
	"testing"
)

var allStates = []string{
	StateDraft,
	StateReceived,
	StateAssigned,
	StateProcessing,
	StateInValidation,
	StateAnswered,
	StateClosed,
	StateIncomplete,
}

func TestCanTransitionGuardTable(t *testing.T) {
	t.Parallel()

	allowed := map[string]map[string]bool{
		OpSend: {StateDraft: true},
		OpAssign: {
			StateReceived: true, StateAssigned: true, StateProcessing: true, StateInValidation: true,
		},
		OpUnassign: {
			StateAssigned: true, StateProcessing: true, StateInValidation: true,
		},
		OpAssignUnit: {
			StateReceived: true, StateAssigned: true, StateProcessing: true, StateInValidation: true,
		},
		OpUnassignUnit: {
			StateReceived: true, StateAssigned: true, StateProcessing: true, StateInValidation: true,
		},
		OpAddRequester: {
			StateDraft: true, StateReceived: true, StateAssigned: true,
			StateProcessing: true, StateInValidation: true, StateAnswered: true,
		},
		OpRemoveRequester: {
			StateDraft: true, StateReceived: true, StateAssigned: true,
			StateProcessing: true, StateInValidation: true, StateAnswered: true,
		},
		OpAddObserver: {
			StateDraft: true, StateReceived: true, StateAssigned: true,
			StateProcessing: true, StateInValidation: true, StateAnswered: true,
		},
		OpRemoveObserver: {
			StateDraft: true, StateReceived: true, StateAssigned: true,
			StateProcessing: true, StateInValidation: true, StateAnswered: true,
		},
		OpUpdateUserLink: {
			StateDraft: true, StateReceived: true, StateAssigned: true,
			StateProcessing: true, StateInValidation: true, StateAnswered: true,
		},
		OpChangeUrgencyLevel: {
			StateReceived: true, StateAssigned: true, StateProcessing: true, StateInValidation: true,
		},
		OpClose: {
			StateReceived: true, StateAssigned: true, StateProcessing: true, StateInValidation: true,
		},
		OpSendMessage: {
			StateDraft: true, StateReceived: true, StateAssigned: true,
			StateProcessing: true, StateInValidation: true, StateAnswered: true,
		},
		OpAddVersion: {
			StateReceived: true, StateAssigned: true, StateProcessing: true,
		},
		OpRequestValidation: {
			StateProcessing: true, StateInValidation: true,
		},
		OpPerformValidation: {StateInValidation: true},
		OpPublishReport: {
			StateProcessing: true, StateInValidation: true,
		},
	}

	for op, states := range allowed {
		for _, state := range allStates {
			got := CanTransition(op, state)
			want := states[state]
			if got != want {
				t.Errorf("CanTransition(%s, %s): got=%v want=%v", op, state, got, want)
			}
		}
	}
}

func TestCanTransitionUnknownOp(t *testing.T) {
	t.Parallel()
	for _, state := range allStates {
		if CanTransition("frobnicate", state) {
			t.Fatalf("unknown op allowed from %s", state)
		}
	}
}

func TestGuardTransition(t *testing.T) {
	t.Parallel()

	if err := GuardTransition(OpSend, StateDraft); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := GuardTransition(OpSend, StateClosed)
	if err == nil {
		t.Fatal("expected transition error")
	}
	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("unexpected error type: %T", err)
	}
	if transitionErr.Op != OpSend || transitionErr.State != StateClosed {
		t.Fatalf("unexpected error fields: %+v", transitionErr)
	}
}

func TestAllowedSourceStatesCopies(t *testing.T) {
	t.Parallel()

	states := AllowedSourceStates(OpSend)
	if len(states) != 1 || states[0] != StateDraft {
		t.Fatalf("unexpected guard set: %v", states)
	}
	states[0] = StateClosed
	if !CanTransition(OpSend, StateDraft) {
		t.Fatal("guard table mutated through returned slice")
	}

	if AllowedSourceStates("frobnicate") != nil {
		t.Fatal("expected nil for unknown op")
	}
}
