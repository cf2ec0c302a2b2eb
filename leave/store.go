/*
store.go - Persistence contracts for the leave domain

PURPOSE:
  Defines the interface between the orchestrator and the database. The
  orchestrator receives an explicit Store handle at construction, so
  tests can substitute the in-memory implementation.

KEY INTERFACES:
  EmployeeStore: CRUD over employee records
  RequestStore:  CRUD over leave requests (rows joined with employees)
  Store:         Both of the above
  TxStore:       Store plus WithTx for atomic multi-write operations

ATOMICITY:
  Approving a request mutates two tables (request status + employee
  balance). TxStore.WithTx ensures both writes land or neither does, and
  that the balance re-check happens inside the same transaction.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite
  - store/memory: in-memory for testing
*/
package leave

import "context"

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

type EmployeeStore interface {
	// CreateEmployee persists a new employee and returns its id.
	// Fails with ErrDuplicateMatricule when the business key exists.
	CreateEmployee(ctx context.Context, e Employee) (int64, error)

	// EmployeeByID returns nil when no employee matches.
	EmployeeByID(ctx context.Context, id int64) (*Employee, error)

	// EmployeeByMatricule returns nil when no employee matches.
	EmployeeByMatricule(ctx context.Context, matricule string) (*Employee, error)

	// ListEmployees returns all employees ordered by name, surname.
	ListEmployees(ctx context.Context) ([]Employee, error)

	// UpdateBalance sets an employee's balance to an absolute value.
	UpdateBalance(ctx context.Context, id int64, balance int) error

	// DeductBalance subtracts days from an employee's balance.
	DeductBalance(ctx context.Context, id int64, days int) error

	// DeleteEmployee removes an employee record.
	DeleteEmployee(ctx context.Context, id int64) error
}

// =============================================================================
// REQUEST STORE
// =============================================================================

type RequestStore interface {
	// CreateRequest persists a new request and returns its id.
	CreateRequest(ctx context.Context, r Request) (int64, error)

	// RequestByID returns the request joined with its employee snapshot,
	// or nil when no request matches.
	RequestByID(ctx context.Context, id int64) (*RequestRow, error)

	// ListByEmployee returns an employee's requests, most recent start first.
	ListByEmployee(ctx context.Context, employeeID int64) ([]RequestRow, error)

	// ListByStatus returns requests with the given status, ordered by start.
	ListByStatus(ctx context.Context, status Status) ([]RequestRow, error)

	// ListAllRequests returns every request, most recent start first.
	ListAllRequests(ctx context.Context) ([]RequestRow, error)

	// UpdateStatus sets a request's status.
	UpdateStatus(ctx context.Context, id int64, status Status) error

	// DeleteRequest removes a request record.
	DeleteRequest(ctx context.Context, id int64) error
}

// Store is the full persistence surface the orchestrator needs.
type Store interface {
	EmployeeStore
	RequestStore
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
