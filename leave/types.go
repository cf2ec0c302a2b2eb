/*
Package leave implements the leave management domain.

PURPOSE:
  This package contains the core types and business rules for employee
  leave requests: employee records with an integer day balance, requests
  of five kinds (annual, sick, exceptional, unpaid, parental), and the
  orchestration that validates, persists and approves them.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: payroll record with a non-negative leave balance
  - Request: a leave request with a forward-only approval lifecycle
  - Status: Pending -> Approved | Rejected (terminal, no way back)

SEE ALSO:
  - rules.go: Per-type admissibility and deduction rules
  - service.go: The orchestrator applying those rules
  - store.go: Persistence contracts
*/
package leave

import "time"

// DateFormat is the wire and storage format for all calendar dates.
const DateFormat = "2006-01-02"

// DefaultBalance is the leave balance granted to a new employee when no
// explicit value is provided.
const DefaultBalance = 22

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is a payroll record. Matricule is the unique business key
// (badge number); ID is assigned by the store.
type Employee struct {
	ID        int64
	Matricule string
	Name      string
	Surname   string
	Service   string
	Balance   int // leave days remaining, never negative
}

// Deduct removes days from the balance, enforcing the non-negative
// invariant at the point of mutation.
func (e *Employee) Deduct(days int) error {
	if days > e.Balance {
		return &RuleRejectedError{Reason: insufficientBalanceReason(days, e.Balance)}
	}
	e.Balance -= days
	return nil
}

// Credit adds days to the balance (e.g. yearly grant).
func (e *Employee) Credit(days int) error {
	if days < 0 {
		return ErrInvalidBalance
	}
	e.Balance += days
	return nil
}

// =============================================================================
// LEAVE REQUEST
// =============================================================================

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// ValidStatus reports whether s is one of the three persisted literals.
func ValidStatus(s Status) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Request is a leave request as persisted. Motif is only meaningful for
// exceptional leave and is empty for every other type.
type Request struct {
	ID         int64
	EmployeeID int64
	Start      time.Time
	End        time.Time
	Type       string
	Status     Status
	Comment    string
	Motif      string
}

// RequestRow is a request joined with a snapshot of its employee, as
// returned by the store's single-row lookups and listings.
type RequestRow struct {
	Request
	Employee Employee
}

// Rule reconstructs the polymorphic rule for a stored request.
func (r *Request) Rule() (Rule, error) {
	return NewRule(r.Type, r.Start, r.End, r.Motif)
}
