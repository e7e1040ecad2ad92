package referrals

import "fmt"

// Named lifecycle operations. Each one is guarded by the source-state
// sets below; everything else (role checks, relation invariants) is
// enforced by the services that execute the operation.
const (
	OpSend               = "send"
	OpAssign             = "assign"
	OpUnassign           = "unassign"
	OpAssignUnit         = "assign_unit"
	OpUnassignUnit       = "unassign_unit"
	OpAddRequester       = "add_requester"
	OpRemoveRequester    = "remove_requester"
	OpAddObserver        = "add_observer"
	OpRemoveObserver     = "remove_observer"
	OpUpdateUserLink     = "update_user_link"
	OpChangeUrgencyLevel = "change_urgencylevel"
	OpClose              = "close_referral"
	OpSendMessage        = "send_message"
	OpAddVersion         = "add_version"
	OpRequestValidation  = "request_answer_validation"
	OpPerformValidation  = "perform_answer_validation"
	OpPublishReport      = "publish_report"
)

// allowedSourceStates is the transition guard table. An operation absent
// from the map is never allowed.
var allowedSourceStates = map[string][]string{
	OpSend:               {StateDraft},
	OpAssign:             {StateReceived, StateAssigned, StateProcessing, StateInValidation},
	OpUnassign:           {StateAssigned, StateProcessing, StateInValidation},
	OpAssignUnit:         {StateReceived, StateAssigned, StateProcessing, StateInValidation},
	OpUnassignUnit:       {StateReceived, StateAssigned, StateProcessing, StateInValidation},
	OpAddRequester:       {StateDraft, StateReceived, StateAssigned, StateProcessing, StateInValidation, StateAnswered},
	OpRemoveRequester:    {StateDraft, StateReceived, StateAssigned, StateProcessing, StateInValidation, StateAnswered},
	OpAddObserver:        {StateDraft, StateReceived, StateAssigned, StateProcessing, StateInValidation, StateAnswered},
	OpRemoveObserver:     {StateDraft, StateReceived, StateAssigned, StateProcessing, StateInValidation, StateAnswered},
	OpUpdateUserLink:     {StateDraft, StateReceived, StateAssigned, StateProcessing, StateInValidation, StateAnswered},
	OpChangeUrgencyLevel: {StateReceived, StateAssigned, StateProcessing, StateInValidation},
	OpClose:              {StateReceived, StateAssigned, StateProcessing, StateInValidation},
	OpSendMessage:        {StateDraft, StateReceived, StateAssigned, StateProcessing, StateInValidation, StateAnswered},
	OpAddVersion:         {StateReceived, StateAssigned, StateProcessing},
	OpRequestValidation:  {StateProcessing, StateInValidation},
	OpPerformValidation:  {StateInValidation},
	OpPublishReport:      {StateProcessing, StateInValidation},
}

// CanTransition reports whether op may run on a referral currently in
// the given state.
func CanTransition(op, state string) bool {
	for _, s := range allowedSourceStates[op] {
		if s == state {
			return true
		}
	}
	return false
}

// AllowedSourceStates returns the guard set for op, nil when op is unknown.
func AllowedSourceStates(op string) []string {
	states := allowedSourceStates[op]
	if states == nil {
		return nil
	}
	out := make([]string, len(states))
	copy(out, states)
	return out
}

// TransitionError reports an operation attempted from a state that does
// not permit it. It maps to a 400 at the API boundary.
type TransitionError struct {
	Op    string
	State string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s not allowed from state %s", e.Op, e.State)
}

func NewTransitionError(op, state string) *TransitionError {
	return &TransitionError{Op: op, State: state}
}

// GuardTransition is the single entry point services use before mutating
// a referral.
func GuardTransition(op, state string) error {
	if !CanTransition(op, state) {
		return NewTransitionError(op, state)
	}
	return nil
}

// AuthorizationError reports an actor lacking the role an operation
// requires. It maps to a 403 at the API boundary.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return e.Reason
}

func NewAuthorizationError(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidReferenceError reports a referenced user/unit/urgency/version
// that does not exist. Per API convention it maps to a 400, not a 404,
// because the parent resource was found.
type InvalidReferenceError struct {
	Kind string
	Ref  string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("%s %s does not exist", e.Kind, e.Ref)
}

func NewInvalidReferenceError(kind, ref string) *InvalidReferenceError {
	return &InvalidReferenceError{Kind: kind, Ref: ref}
}

// DuplicateLinkError translates a storage uniqueness violation into a
// domain message.
type DuplicateLinkError struct {
	Detail string
}

func (e *DuplicateLinkError) Error() string {
	return e.Detail
}

func NewDuplicateLinkError(detail string) *DuplicateLinkError {
	return &DuplicateLinkError{Detail: detail}
}

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}
