/*
errors.go - Centralized error types for the leave domain

PURPOSE:
  All domain error kinds in one place. Callers classify with errors.Is
  and the helpers at the bottom; the API layer maps these onto HTTP
  statuses.

ERROR CATEGORIES:
  1. Validation errors - malformed input (dates, matricule, balance)
  2. Workflow errors   - rule rejections, state machine violations
  3. Store errors      - wrapped persistence failures

USAGE:
  if errors.Is(err, leave.ErrStatusNotPending) { ... }

  var rej *leave.RuleRejectedError
  if errors.As(err, &rej) { fmt.Println(rej.Reason) }
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidFormat is returned when a date string is not YYYY-MM-DD.
	ErrInvalidFormat = errors.New("invalid date format (use YYYY-MM-DD)")

	// ErrInvalidPeriod is returned when a period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidMatricule is returned for an empty or too-short matricule.
	ErrInvalidMatricule = errors.New("invalid matricule (minimum 3 characters)")

	// ErrInvalidBalance is returned for a negative or non-integer balance.
	ErrInvalidBalance = errors.New("balance must be a non-negative integer")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRequestNotFound is returned when a referenced request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrUnknownLeaveType is returned by the factory for unmapped type names.
	ErrUnknownLeaveType = errors.New("unknown leave type")

	// ErrRuleRejected is the sentinel behind RuleRejectedError.
	ErrRuleRejected = errors.New("request rejected by leave rules")

	// ErrStatusNotPending is returned when approving or rejecting a request
	// that already reached a terminal status.
	ErrStatusNotPending = errors.New("request is not pending")

	// ErrDuplicateMatricule is returned when the business key already exists.
	ErrDuplicateMatricule = errors.New("matricule already exists")

	// ErrStoreFailure is the sentinel behind StoreError.
	ErrStoreFailure = errors.New("store failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RuleRejectedError reports an inadmissible request together with the
// human-readable reason produced by the leave rule.
type RuleRejectedError struct {
	Type   string
	Reason string
}

func (e *RuleRejectedError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("rejected: %s", e.Reason)
	}
	return fmt.Sprintf("%s request rejected: %s", e.Type, e.Reason)
}

func (e *RuleRejectedError) Unwrap() error { return ErrRuleRejected }

// StoreError wraps an unexpected storage failure so callers can treat all
// persistence faults uniformly without losing the cause.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() []error { return []error{ErrStoreFailure, e.Err} }

// Cause returns the underlying driver error.
func (e *StoreError) Cause() error { return e.Err }

func insufficientBalanceReason(requested, available int) string {
	return fmt.Sprintf("insufficient balance: %d days requested, %d available", requested, available)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// or a business-rule rejection, i.e. anything that is not the store's fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidMatricule) ||
		errors.Is(err, ErrInvalidBalance) ||
		errors.Is(err, ErrUnknownLeaveType) ||
		errors.Is(err, ErrRuleRejected) ||
		errors.Is(err, ErrStatusNotPending) ||
		errors.Is(err, ErrDuplicateMatricule)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}
