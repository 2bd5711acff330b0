// Package errs holds the ledger error taxonomy. Domain packages wrap these
// sentinels so callers can match either the specific or the general error.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyPaid         = errors.New("already paid")
	ErrConcurrencyConflict = errors.New("concurrent update, refetch and retry")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvariantViolation  = errors.New("ledger invariant violated")
)

// ValidationError rejects caller input before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is shorthand for a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvariantError reports a defect in generation or ledger logic.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string { return "invariant violation: " + e.Detail }

func (e *InvariantError) Is(target error) bool { return target == ErrInvariantViolation }

func Invariant(format string, args ...any) error {
	return &InvariantError{Detail: fmt.Sprintf(format, args...)}
}
