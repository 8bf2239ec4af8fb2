package workflow

import (
	"fmt"

	"cleanbook/internal/booking"
)

// ValidationError rejects a transition before dispatch: a required field is
// missing or fails a range check. These never reach the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnauthorizedTransitionError means the acting role may not trigger the
// requested edge, or a cleaner-gated edge was attempted by someone other than
// the assigned cleaner.
type UnauthorizedTransitionError struct {
	Role booking.Role
	To   booking.Status
}

func (e *UnauthorizedTransitionError) Error() string {
	return fmt.Sprintf("role %s may not move a booking to %s", e.Role, e.To)
}

// InvalidTransitionError means the booking's current status has no edge to the
// requested status. Submitting against a stale cached status lands here when
// caught locally; the server's own check stays authoritative either way.
type InvalidTransitionError struct {
	From booking.Status
	To   booking.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("no transition from %s to %s", e.From, e.To)
}
