/*
service.go - Leave orchestrator

PURPOSE:
  Coordinates validators, per-type rules and the store for the whole
  request lifecycle: submit, approve, reject, list, plus employee
  registration. Every operation is all-or-nothing with respect to the
  records it touches.

APPROVAL IS TRANSACTIONAL:
  Approval re-validates the rule against the employee's CURRENT balance
  (it may have changed since submission) and performs the status update
  and the balance deduction inside a single store transaction, so two
  concurrent approvals cannot overdraw the same employee.

ERROR CONTRACT:
  Validation and rule failures come back as the sentinel/structured
  errors in errors.go. Unexpected persistence failures are wrapped in
  StoreError and never panic.

SEE ALSO:
  - rules.go: the per-type rules this service dispatches to
  - store.go: the TxStore contract it is constructed with
*/
package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Service orchestrates leave operations over an explicit store handle.
type Service struct {
	store TxStore
	log   zerolog.Logger
}

// NewService builds the orchestrator. The logger is used for hydration
// warnings and may be zerolog.Nop() in tests.
func NewService(store TxStore, log zerolog.Logger) *Service {
	return &Service{store: store, log: log}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// AddEmployee registers an employee. A negative balance means "use the
// default" (22 days).
func (s *Service) AddEmployee(ctx context.Context, matricule, name, surname, dept string, balance int) (int64, error) {
	if err := ValidateMatricule(matricule); err != nil {
		return 0, err
	}
	if balance < 0 {
		balance = DefaultBalance
	}

	existing, err := s.store.EmployeeByMatricule(ctx, matricule)
	if err != nil {
		return 0, &StoreError{Op: "employee lookup", Err: err}
	}
	if existing != nil {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateMatricule, matricule)
	}

	id, err := s.store.CreateEmployee(ctx, Employee{
		Matricule: matricule,
		Name:      name,
		Surname:   surname,
		Service:   dept,
		Balance:   balance,
	})
	if err != nil {
		if IsClientError(err) {
			return 0, err
		}
		return 0, &StoreError{Op: "employee create", Err: err}
	}
	return id, nil
}

// EmployeeByID returns an employee or ErrEmployeeNotFound.
func (s *Service) EmployeeByID(ctx context.Context, id int64) (*Employee, error) {
	e, err := s.store.EmployeeByID(ctx, id)
	if err != nil {
		return nil, &StoreError{Op: "employee lookup", Err: err}
	}
	if e == nil {
		return nil, ErrEmployeeNotFound
	}
	return e, nil
}

// EmployeeByMatricule returns an employee or ErrEmployeeNotFound.
func (s *Service) EmployeeByMatricule(ctx context.Context, matricule string) (*Employee, error) {
	e, err := s.store.EmployeeByMatricule(ctx, matricule)
	if err != nil {
		return nil, &StoreError{Op: "employee lookup", Err: err}
	}
	if e == nil {
		return nil, ErrEmployeeNotFound
	}
	return e, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, &StoreError{Op: "employee list", Err: err}
	}
	return employees, nil
}

// SetBalance adjusts an employee's balance to an absolute value,
// enforcing the non-negative invariant.
func (s *Service) SetBalance(ctx context.Context, id int64, balance int) error {
	if balance < 0 {
		return ErrInvalidBalance
	}
	if _, err := s.EmployeeByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.UpdateBalance(ctx, id, balance); err != nil {
		return &StoreError{Op: "balance update", Err: err}
	}
	return nil
}

// DeleteEmployee removes an employee record.
func (s *Service) DeleteEmployee(ctx context.Context, id int64) error {
	if err := s.store.DeleteEmployee(ctx, id); err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return err
		}
		return &StoreError{Op: "employee delete", Err: err}
	}
	return nil
}

// =============================================================================
// SUBMISSION
// =============================================================================

// SubmitRequest validates and persists a new pending request from raw
// input, returning the new request id. Motif is only meaningful for
// exceptional leave.
func (s *Service) SubmitRequest(ctx context.Context, employeeID int64, start, end, typeName, comment, motif string) (int64, error) {
	if err := ValidatePeriod(start, end); err != nil {
		return 0, err
	}
	// Already validated above, parse cannot fail.
	startDate, _ := ParseDate(start)
	endDate, _ := ParseDate(end)

	employee, err := s.EmployeeByID(ctx, employeeID)
	if err != nil {
		return 0, err
	}

	rule, err := NewRule(typeName, startDate, endDate, motif)
	if err != nil {
		return 0, err
	}

	if ok, reason := rule.Validate(employee.Balance); !ok {
		return 0, &RuleRejectedError{Type: rule.TypeName(), Reason: reason}
	}

	req := Request{
		EmployeeID: employeeID,
		Start:      startDate,
		End:        endDate,
		Type:       rule.TypeName(),
		Status:     StatusPending,
		Comment:    comment,
	}
	if ex, ok := rule.(ExceptionalRule); ok {
		req.Motif = ex.Motif
	}

	id, err := s.store.CreateRequest(ctx, req)
	if err != nil {
		return 0, &StoreError{Op: "request create", Err: err}
	}
	return id, nil
}

// =============================================================================
// APPROVAL / REJECTION
// =============================================================================

// ApproveRequest moves a pending request to Approved and, for deducting
// types, consumes balance days. Status update and deduction are a single
// transaction; the rule is re-evaluated against the balance read inside
// that transaction.
func (s *Service) ApproveRequest(ctx context.Context, requestID int64) error {
	return s.store.WithTx(ctx, func(tx Store) error {
		row, err := tx.RequestByID(ctx, requestID)
		if err != nil {
			return &StoreError{Op: "request lookup", Err: err}
		}
		if row == nil {
			return ErrRequestNotFound
		}
		if row.Status != StatusPending {
			return fmt.Errorf("%w: already %s", ErrStatusNotPending, row.Status)
		}

		rule, err := row.Rule()
		if err != nil {
			return err
		}

		if ok, reason := rule.Validate(row.Employee.Balance); !ok {
			return &RuleRejectedError{Type: rule.TypeName(), Reason: reason}
		}

		if err := tx.UpdateStatus(ctx, requestID, StatusApproved); err != nil {
			return &StoreError{Op: "status update", Err: err}
		}

		if rule.DeductsFromBalance() {
			if err := tx.DeductBalance(ctx, row.EmployeeID, rule.DeductibleDays()); err != nil {
				return &StoreError{Op: "balance deduction", Err: err}
			}
		}
		return nil
	})
}

// RejectRequest moves a pending request to Rejected. No balance effect.
func (s *Service) RejectRequest(ctx context.Context, requestID int64) error {
	return s.store.WithTx(ctx, func(tx Store) error {
		row, err := tx.RequestByID(ctx, requestID)
		if err != nil {
			return &StoreError{Op: "request lookup", Err: err}
		}
		if row == nil {
			return ErrRequestNotFound
		}
		if row.Status != StatusPending {
			return fmt.Errorf("%w: already %s", ErrStatusNotPending, row.Status)
		}
		if err := tx.UpdateStatus(ctx, requestID, StatusRejected); err != nil {
			return &StoreError{Op: "status update", Err: err}
		}
		return nil
	})
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// HydratedRequest is a stored row together with its reconstructed rule.
type HydratedRequest struct {
	RequestRow
	Rule Rule
}

// RequestByID returns one request with its rule, or ErrRequestNotFound.
// Requests whose stored type no longer maps to a rule come back with a
// nil Rule rather than an error.
func (s *Service) RequestByID(ctx context.Context, id int64) (*HydratedRequest, error) {
	row, err := s.store.RequestByID(ctx, id)
	if err != nil {
		return nil, &StoreError{Op: "request lookup", Err: err}
	}
	if row == nil {
		return nil, ErrRequestNotFound
	}
	hydrated := HydratedRequest{RequestRow: *row}
	if rule, err := row.Rule(); err == nil {
		hydrated.Rule = rule
	}
	return &hydrated, nil
}

// PendingRequests lists pending requests with hydrated rules.
func (s *Service) PendingRequests(ctx context.Context) ([]HydratedRequest, error) {
	return s.RequestsByStatus(ctx, StatusPending)
}

// RequestsByStatus lists requests in a given status with hydrated rules.
func (s *Service) RequestsByStatus(ctx context.Context, status Status) ([]HydratedRequest, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidFormat, status)
	}
	rows, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, &StoreError{Op: "request list", Err: err}
	}
	return s.hydrate(rows), nil
}

// RequestsByEmployee lists an employee's requests with hydrated rules.
func (s *Service) RequestsByEmployee(ctx context.Context, employeeID int64) ([]HydratedRequest, error) {
	rows, err := s.store.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, &StoreError{Op: "request list", Err: err}
	}
	return s.hydrate(rows), nil
}

// AllRequests lists every request with hydrated rules.
func (s *Service) AllRequests(ctx context.Context) ([]HydratedRequest, error) {
	rows, err := s.store.ListAllRequests(ctx)
	if err != nil {
		return nil, &StoreError{Op: "request list", Err: err}
	}
	return s.hydrate(rows), nil
}

// hydrate attaches rules to rows. Rows whose stored type no longer maps
// to a rule are skipped with a warning: historical data integrity cannot
// be enforced retroactively.
func (s *Service) hydrate(rows []RequestRow) []HydratedRequest {
	hydrated := make([]HydratedRequest, 0, len(rows))
	for _, row := range rows {
		rule, err := row.Rule()
		if err != nil {
			s.log.Warn().
				Int64("request_id", row.ID).
				Str("leave_type", row.Type).
				Msg("skipping request with unknown stored leave type")
			continue
		}
		hydrated = append(hydrated, HydratedRequest{RequestRow: row, Rule: rule})
	}
	return hydrated
}
