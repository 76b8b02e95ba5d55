package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError reports a state change the entity's transition
// table does not allow from its current state.
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s %s: cannot transition from %q to %q", e.Entity, e.ID, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// StaleStateError reports a precondition that no longer holds because a
// concurrent write got there first. Callers should refetch before retrying.
type StaleStateError struct {
	Entity string
	ID     string
	Detail string
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("%s %s: stale state: %s", e.Entity, e.ID, e.Detail)
}

// ConflictingStateError reports a cross-entity invariant violation, such as
// clearing a room's maintenance status while open tickets reference it.
type ConflictingStateError struct {
	Detail string
}

func (e *ConflictingStateError) Error() string {
	return "conflicting state: " + e.Detail
}

// PartialFailureError reports a compound operation that completed some but
// not all of its writes and whose compensating write also failed. Entities
// names every document left inconsistent, for operator remediation.
type PartialFailureError struct {
	Entities []string
	Detail   string
	Cause    error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("partial failure affecting [%s]: %s: %v",
		strings.Join(e.Entities, ", "), e.Detail, e.Cause)
}

func (e *PartialFailureError) Unwrap() error { return e.Cause }

// NotFoundError reports a document key with no stored document.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
