package services

import (
	"errors"
	"fmt"
)

// ErrNotAuthorized covers both an unauthenticated caller and a seller
// touching a record they do not own or a return outside the mutable set.
var ErrNotAuthorized = errors.New("not authorized")

// InvalidTransitionError reports a status edge that is not in the legal
// transition table. Entity names which state machine rejected it.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from %s to %s", e.Entity, e.From, e.To)
}

// MissingFieldError reports a payload field required by the requested edge
// that was absent or empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// InvalidQuantityError reports a non-positive restock delta.
type InvalidQuantityError struct {
	Delta int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid restock quantity %d: must be greater than zero", e.Delta)
}

// UpstreamError reports a failed persistence or collaborator call. When it
// happens midway through a multi-step transition, the earlier steps stay
// applied; Step tells the caller how far the operation got.
type UpstreamError struct {
	Step string
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure during %s: %v", e.Step, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
