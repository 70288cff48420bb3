package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyAccepted marks a repeated accept on a settled bargain.
	// The price was written once and stays written; the call is a no-op.
	ErrAlreadyAccepted = errors.New("bargain already accepted")

	// ErrRoundLimitReached is returned when a renter counters past the cap.
	ErrRoundLimitReached = errors.New("negotiation round limit reached")
)

// ValidationError is recoverable input rejection: bad price, bad date,
// illegal round. No state is mutated when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StaleStateError means a transition lost a race: the persisted state moved
// on between read and write. Callers refetch instead of retrying blindly.
type StaleStateError struct {
	Entity string
	ID     string
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("%s %s changed concurrently, refetch required", e.Entity, e.ID)
}

func NewStaleStateError(entity, id string) *StaleStateError {
	return &StaleStateError{Entity: entity, ID: id}
}

func IsStaleState(err error) bool {
	var se *StaleStateError
	return errors.As(err, &se)
}

// InvalidTransitionError reports a negotiation action that is not legal from
// the bargain's current status.
type InvalidTransitionError struct {
	From   BargainStatus
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %s is not legal from bargain status %s", e.Action, e.From)
}

func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}
