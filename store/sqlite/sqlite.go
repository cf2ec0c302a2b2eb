/*
Package sqlite provides the SQLite-backed record store.

PURPOSE:
  Implements leave.TxStore and auth.UserStore over a single SQLite
  database. In production the same patterns apply to PostgreSQL; only
  minor SQL dialect differences.

KEY TABLES:
  employees:      payroll records with the balance CHECK constraint
  leave_requests: requests; reads join the employee snapshot
  users:          accounts with a unique login

INVARIANTS ENFORCED HERE:
  - employees.matricule UNIQUE   -> leave.ErrDuplicateMatricule
  - employees.leave_balance >= 0 -> deduction can never go negative
  - users.login UNIQUE           -> auth.ErrDuplicateLogin

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and WAL mode for better reader
  concurrency. WithTx brackets approve/reject's read-validate-write
  sequence in one database transaction.

USAGE:
  store, err := sqlite.New("./leave.db")  // ":memory:" for tests
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool with versioned migrations.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/leave"
)

// Store implements leave.TxStore and auth.UserStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store at the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: sqlite serializes writers anyway, and ":memory:"
	// databases are per-connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		matricule TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		surname TEXT NOT NULL,
		service TEXT NOT NULL DEFAULT '',
		leave_balance INTEGER NOT NULL DEFAULT 22 CHECK (leave_balance >= 0),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_matricule
		ON employees(matricule);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		comment TEXT NOT NULL DEFAULT '',
		motif TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_employee
		ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON leave_requests(status);
	CREATE INDEX IF NOT EXISTS idx_requests_start
		ON leave_requests(start_date);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		login TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'Employee',
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// querier abstracts *sql.DB and *sql.Tx so the same statements serve both.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// EMPLOYEE STORE (leave.EmployeeStore interface)
// =============================================================================

// CreateEmployee inserts an employee, translating the UNIQUE violation
// on matricule into leave.ErrDuplicateMatricule.
func (s *Store) CreateEmployee(ctx context.Context, e leave.Employee) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createEmployee(ctx, s.db, e)
}

func createEmployee(ctx context.Context, db querier, e leave.Employee) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO employees (matricule, name, surname, service, leave_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Matricule, e.Name, e.Surname, e.Service, e.Balance, now(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, leave.ErrDuplicateMatricule
		}
		return 0, fmt.Errorf("failed to insert employee: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) EmployeeByID(ctx context.Context, id int64) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return employeeByID(ctx, s.db, id)
}

func employeeByID(ctx context.Context, db querier, id int64) (*leave.Employee, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, matricule, name, surname, service, leave_balance
		FROM employees WHERE id = ?`, id)
	return scanEmployee(row)
}

func (s *Store) EmployeeByMatricule(ctx context.Context, matricule string) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return employeeByMatricule(ctx, s.db, matricule)
}

func employeeByMatricule(ctx context.Context, db querier, matricule string) (*leave.Employee, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, matricule, name, surname, service, leave_balance
		FROM employees WHERE matricule = ?`, matricule)
	return scanEmployee(row)
}

func scanEmployee(row *sql.Row) (*leave.Employee, error) {
	var e leave.Employee
	err := row.Scan(&e.ID, &e.Matricule, &e.Name, &e.Surname, &e.Service, &e.Balance)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan employee: %w", err)
	}
	return &e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEmployees(ctx, s.db)
}

func listEmployees(ctx context.Context, db querier) ([]leave.Employee, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, matricule, name, surname, service, leave_balance
		FROM employees ORDER BY name, surname`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []leave.Employee
	for rows.Next() {
		var e leave.Employee
		if err := rows.Scan(&e.ID, &e.Matricule, &e.Name, &e.Surname, &e.Service, &e.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) UpdateBalance(ctx context.Context, id int64, balance int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateBalance(ctx, s.db, id, balance)
}

func updateBalance(ctx context.Context, db querier, id int64, balance int) error {
	res, err := db.ExecContext(ctx,
		`UPDATE employees SET leave_balance = ? WHERE id = ?`, balance, id)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return requireRow(res, leave.ErrEmployeeNotFound)
}

// DeductBalance subtracts days in a single UPDATE. The CHECK constraint
// rejects the statement rather than storing a negative balance.
func (s *Store) DeductBalance(ctx context.Context, id int64, days int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deductBalance(ctx, s.db, id, days)
}

func deductBalance(ctx context.Context, db querier, id int64, days int) error {
	res, err := db.ExecContext(ctx,
		`UPDATE employees SET leave_balance = leave_balance - ? WHERE id = ?`, days, id)
	if err != nil {
		return fmt.Errorf("failed to deduct balance: %w", err)
	}
	return requireRow(res, leave.ErrEmployeeNotFound)
}

func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteEmployee(ctx, s.db, id)
}

func deleteEmployee(ctx context.Context, db querier, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return requireRow(res, leave.ErrEmployeeNotFound)
}

// =============================================================================
// REQUEST STORE (leave.RequestStore interface)
// =============================================================================

const requestColumns = `
	r.id, r.employee_id, r.start_date, r.end_date, r.leave_type, r.status, r.comment, r.motif,
	e.id, e.matricule, e.name, e.surname, e.service, e.leave_balance`

const requestJoin = `
	FROM leave_requests r
	JOIN employees e ON r.employee_id = e.id`

func (s *Store) CreateRequest(ctx context.Context, r leave.Request) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createRequest(ctx, s.db, r)
}

func createRequest(ctx context.Context, db querier, r leave.Request) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO leave_requests (employee_id, start_date, end_date, leave_type, status, comment, motif, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.EmployeeID,
		r.Start.Format(leave.DateFormat),
		r.End.Format(leave.DateFormat),
		r.Type,
		string(r.Status),
		r.Comment,
		r.Motif,
		now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert request: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) RequestByID(ctx context.Context, id int64) (*leave.RequestRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return requestByID(ctx, s.db, id)
}

func requestByID(ctx context.Context, db querier, id int64) (*leave.RequestRow, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+requestColumns+requestJoin+` WHERE r.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query request: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	row, err := scanRequestRow(rows)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID int64) ([]leave.RequestRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRequests(ctx, s.db,
		`SELECT `+requestColumns+requestJoin+` WHERE r.employee_id = ? ORDER BY r.start_date DESC`,
		employeeID)
}

func (s *Store) ListByStatus(ctx context.Context, status leave.Status) ([]leave.RequestRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRequests(ctx, s.db,
		`SELECT `+requestColumns+requestJoin+` WHERE r.status = ? ORDER BY r.start_date`,
		string(status))
}

func (s *Store) ListAllRequests(ctx context.Context) ([]leave.RequestRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRequests(ctx, s.db,
		`SELECT `+requestColumns+requestJoin+` ORDER BY r.start_date DESC`)
}

func queryRequests(ctx context.Context, db querier, query string, args ...any) ([]leave.RequestRow, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var result []leave.RequestRow
	for rows.Next() {
		row, err := scanRequestRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func scanRequestRow(rows *sql.Rows) (leave.RequestRow, error) {
	var (
		row        leave.RequestRow
		start, end string
		status     string
	)
	err := rows.Scan(
		&row.ID, &row.EmployeeID, &start, &end, &row.Type, &status, &row.Comment, &row.Motif,
		&row.Employee.ID, &row.Employee.Matricule, &row.Employee.Name, &row.Employee.Surname,
		&row.Employee.Service, &row.Employee.Balance,
	)
	if err != nil {
		return row, fmt.Errorf("failed to scan request: %w", err)
	}

	row.Status = leave.Status(status)
	if row.Start, err = time.Parse(leave.DateFormat, start); err != nil {
		return row, fmt.Errorf("corrupt start_date %q: %w", start, err)
	}
	if row.End, err = time.Parse(leave.DateFormat, end); err != nil {
		return row, fmt.Errorf("corrupt end_date %q: %w", end, err)
	}
	return row, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status leave.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateStatus(ctx, s.db, id, status)
}

func updateStatus(ctx context.Context, db querier, id int64, status leave.Status) error {
	res, err := db.ExecContext(ctx,
		`UPDATE leave_requests SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return requireRow(res, leave.ErrRequestNotFound)
}

func (s *Store) DeleteRequest(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRequest(ctx, s.db, id)
}

func deleteRequest(ctx context.Context, db querier, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM leave_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	return requireRow(res, leave.ErrRequestNotFound)
}

// =============================================================================
// TRANSACTIONAL STORE (leave.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. An approval's balance
// check, status update and deduction all run against the same *sql.Tx,
// so concurrent approvals serialize on the database.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes the Store surface through an open transaction.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) CreateEmployee(ctx context.Context, e leave.Employee) (int64, error) {
	return createEmployee(ctx, ts.tx, e)
}

func (ts *txStore) EmployeeByID(ctx context.Context, id int64) (*leave.Employee, error) {
	return employeeByID(ctx, ts.tx, id)
}

func (ts *txStore) EmployeeByMatricule(ctx context.Context, matricule string) (*leave.Employee, error) {
	return employeeByMatricule(ctx, ts.tx, matricule)
}

func (ts *txStore) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	return listEmployees(ctx, ts.tx)
}

func (ts *txStore) UpdateBalance(ctx context.Context, id int64, balance int) error {
	return updateBalance(ctx, ts.tx, id, balance)
}

func (ts *txStore) DeductBalance(ctx context.Context, id int64, days int) error {
	return deductBalance(ctx, ts.tx, id, days)
}

func (ts *txStore) DeleteEmployee(ctx context.Context, id int64) error {
	return deleteEmployee(ctx, ts.tx, id)
}

func (ts *txStore) CreateRequest(ctx context.Context, r leave.Request) (int64, error) {
	return createRequest(ctx, ts.tx, r)
}

func (ts *txStore) RequestByID(ctx context.Context, id int64) (*leave.RequestRow, error) {
	return requestByID(ctx, ts.tx, id)
}

func (ts *txStore) ListByEmployee(ctx context.Context, employeeID int64) ([]leave.RequestRow, error) {
	return queryRequests(ctx, ts.tx,
		`SELECT `+requestColumns+requestJoin+` WHERE r.employee_id = ? ORDER BY r.start_date DESC`,
		employeeID)
}

func (ts *txStore) ListByStatus(ctx context.Context, status leave.Status) ([]leave.RequestRow, error) {
	return queryRequests(ctx, ts.tx,
		`SELECT `+requestColumns+requestJoin+` WHERE r.status = ? ORDER BY r.start_date`,
		string(status))
}

func (ts *txStore) ListAllRequests(ctx context.Context) ([]leave.RequestRow, error) {
	return queryRequests(ctx, ts.tx,
		`SELECT `+requestColumns+requestJoin+` ORDER BY r.start_date DESC`)
}

func (ts *txStore) UpdateStatus(ctx context.Context, id int64, status leave.Status) error {
	return updateStatus(ctx, ts.tx, id, status)
}

func (ts *txStore) DeleteRequest(ctx context.Context, id int64) error {
	return deleteRequest(ctx, ts.tx, id)
}

// =============================================================================
// USER STORE (auth.UserStore interface)
// =============================================================================

func (s *Store) CreateUser(ctx context.Context, u auth.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (login, password, role, created_at)
		VALUES (?, ?, ?, ?)`,
		u.Login, u.Password, string(u.Role), now(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, auth.ErrDuplicateLogin
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) UserByLogin(ctx context.Context, login string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, login, password, role FROM users WHERE login = ?`, login)
	return scanUser(row)
}

func (s *Store) UserByID(ctx context.Context, id int64) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, login, password, role FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*auth.User, error) {
	var (
		u    auth.User
		role string
	)
	err := row.Scan(&u.ID, &u.Login, &u.Password, &role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Role = auth.Role(role)
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, login, password, role FROM users ORDER BY login`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		var (
			u    auth.User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Login, &u.Password, &role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Role = auth.Role(role)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateRole(ctx context.Context, id int64, role auth.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return requireRow(res, auth.ErrUserNotFound)
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password = ? WHERE id = ?`, password, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRow(res, auth.ErrUserNotFound)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRow(res, auth.ErrUserNotFound)
}

// =============================================================================
// HELPERS
// =============================================================================

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
