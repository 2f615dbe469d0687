package domain

import (
	"errors"
	"fmt"
)

// ValidationError indicates bad input. It is always surfaced before any
// write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError indicates a referenced entity does not exist. Mutations
// abort before any write when a reference cannot be resolved.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// AuthError indicates there is no authenticated user for the request.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Reason
}

// PartialMutationError indicates a multi-step mutation failed after at least
// one write had already been committed. The transaction row is always
// written first, so the ledger history stays authoritative and a
// reconciliation pass will repair the cached aggregates.
type PartialMutationError struct {
	Op   string // mutation that failed, e.g. "add_transaction"
	Step string // write step that failed, e.g. "category"
	Err  error
}

func (e *PartialMutationError) Error() string {
	return fmt.Sprintf("%s partially applied: step %s failed: %v", e.Op, e.Step, e.Err)
}

func (e *PartialMutationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsPartialMutation reports whether err is (or wraps) a PartialMutationError.
func IsPartialMutation(err error) bool {
	var pme *PartialMutationError
	return errors.As(err, &pme)
}
