package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates malformed start parameters. The auction never starts.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvariantViolation indicates an internal contract breach. The run is aborted.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrAlreadyStarted indicates Start was called on a controller that already ran.
	ErrAlreadyStarted = errors.New("auction already started")
	// ErrNotStarted indicates a round was requested before Start.
	ErrNotStarted = errors.New("auction not started")
	// ErrLedgerFrozen indicates an append after the auction closed.
	ErrLedgerFrozen = errors.New("ledger is frozen")
)

// InvariantError describes an internal contract breach.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvariantViolation, e.Op, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

func invariantf(op, format string, args ...any) error {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// InvalidInputf wraps ErrInvalidInput with a formatted detail.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
