// Package memory provides an in-memory store implementation (for testing/dev).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - implements leave.TxStore and auth.UserStore
// =============================================================================

type Store struct {
	mu sync.RWMutex

	employees map[int64]leave.Employee
	requests  map[int64]leave.Request
	users     map[int64]auth.User

	nextEmployeeID int64
	nextRequestID  int64
	nextUserID     int64
}

func New() *Store {
	return &Store{
		employees:      make(map[int64]leave.Employee),
		requests:       make(map[int64]leave.Request),
		users:          make(map[int64]auth.User),
		nextEmployeeID: 1,
		nextRequestID:  1,
		nextUserID:     1,
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Store) CreateEmployee(_ context.Context, e leave.Employee) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createEmployeeLocked(e)
}

func (m *Store) createEmployeeLocked(e leave.Employee) (int64, error) {
	for _, existing := range m.employees {
		if existing.Matricule == e.Matricule {
			return 0, leave.ErrDuplicateMatricule
		}
	}
	e.ID = m.nextEmployeeID
	m.nextEmployeeID++
	m.employees[e.ID] = e
	return e.ID, nil
}

func (m *Store) EmployeeByID(_ context.Context, id int64) (*leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.employeeByIDLocked(id)
}

func (m *Store) employeeByIDLocked(id int64) (*leave.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Store) EmployeeByMatricule(_ context.Context, matricule string) (*leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.employees {
		if e.Matricule == matricule {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (m *Store) ListEmployees(_ context.Context) ([]leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	employees := make([]leave.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		employees = append(employees, e)
	}
	sort.Slice(employees, func(i, j int) bool {
		if employees[i].Name != employees[j].Name {
			return employees[i].Name < employees[j].Name
		}
		return employees[i].Surname < employees[j].Surname
	})
	return employees, nil
}

func (m *Store) UpdateBalance(_ context.Context, id int64, balance int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateBalanceLocked(id, balance)
}

func (m *Store) updateBalanceLocked(id int64, balance int) error {
	e, ok := m.employees[id]
	if !ok {
		return leave.ErrEmployeeNotFound
	}
	if balance < 0 {
		return leave.ErrInvalidBalance
	}
	e.Balance = balance
	m.employees[id] = e
	return nil
}

func (m *Store) DeductBalance(_ context.Context, id int64, days int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deductBalanceLocked(id, days)
}

func (m *Store) deductBalanceLocked(id int64, days int) error {
	e, ok := m.employees[id]
	if !ok {
		return leave.ErrEmployeeNotFound
	}
	if days > e.Balance {
		// Mirrors the sqlite CHECK constraint.
		return leave.ErrInvalidBalance
	}
	e.Balance -= days
	m.employees[id] = e
	return nil
}

func (m *Store) DeleteEmployee(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return leave.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	return nil
}

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Store) CreateRequest(_ context.Context, r leave.Request) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createRequestLocked(r)
}

func (m *Store) createRequestLocked(r leave.Request) (int64, error) {
	if _, ok := m.employees[r.EmployeeID]; !ok {
		return 0, leave.ErrEmployeeNotFound
	}
	r.ID = m.nextRequestID
	m.nextRequestID++
	m.requests[r.ID] = r
	return r.ID, nil
}

func (m *Store) RequestByID(_ context.Context, id int64) (*leave.RequestRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestByIDLocked(id)
}

func (m *Store) requestByIDLocked(id int64) (*leave.RequestRow, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	e, ok := m.employees[r.EmployeeID]
	if !ok {
		return nil, leave.ErrEmployeeNotFound
	}
	return &leave.RequestRow{Request: r, Employee: e}, nil
}

func (m *Store) ListByEmployee(_ context.Context, employeeID int64) ([]leave.RequestRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.collect(func(r leave.Request) bool { return r.EmployeeID == employeeID })
	// Most recent start first, like the sqlite store.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Start.After(rows[j].Start) })
	return rows, nil
}

func (m *Store) ListByStatus(_ context.Context, status leave.Status) ([]leave.RequestRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.collect(func(r leave.Request) bool { return r.Status == status })
	sort.Slice(rows, func(i, j int) bool { return rows[i].Start.Before(rows[j].Start) })
	return rows, nil
}

func (m *Store) ListAllRequests(_ context.Context) ([]leave.RequestRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.collect(func(leave.Request) bool { return true })
	sort.Slice(rows, func(i, j int) bool { return rows[i].Start.After(rows[j].Start) })
	return rows, nil
}

func (m *Store) collect(match func(leave.Request) bool) []leave.RequestRow {
	var rows []leave.RequestRow
	for _, r := range m.requests {
		if !match(r) {
			continue
		}
		e, ok := m.employees[r.EmployeeID]
		if !ok {
			continue
		}
		rows = append(rows, leave.RequestRow{Request: r, Employee: e})
	}
	return rows
}

func (m *Store) UpdateStatus(_ context.Context, id int64, status leave.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateStatusLocked(id, status)
}

func (m *Store) updateStatusLocked(id int64, status leave.Status) error {
	r, ok := m.requests[id]
	if !ok {
		return leave.ErrRequestNotFound
	}
	r.Status = status
	m.requests[id] = r
	return nil
}

func (m *Store) DeleteRequest(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return leave.ErrRequestNotFound
	}
	delete(m.requests, id)
	return nil
}

// =============================================================================
// TRANSACTIONS - snapshot + rollback on error
// =============================================================================

// WithTx executes fn against a locked view of the store. On error the
// pre-transaction snapshot is restored.
func (m *Store) WithTx(_ context.Context, fn func(leave.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshotLocked()

	if err := fn(&txView{parent: m}); err != nil {
		m.restoreLocked(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	employees map[int64]leave.Employee
	requests  map[int64]leave.Request
}

func (m *Store) snapshotLocked() storeSnapshot {
	employees := make(map[int64]leave.Employee, len(m.employees))
	for k, v := range m.employees {
		employees[k] = v
	}
	requests := make(map[int64]leave.Request, len(m.requests))
	for k, v := range m.requests {
		requests[k] = v
	}
	return storeSnapshot{employees: employees, requests: requests}
}

func (m *Store) restoreLocked(s storeSnapshot) {
	m.employees = s.employees
	m.requests = s.requests
}

// txView exposes the Store surface without re-locking: the parent mutex
// is already held for the duration of WithTx.
type txView struct {
	parent *Store
}

func (tv *txView) CreateEmployee(_ context.Context, e leave.Employee) (int64, error) {
	return tv.parent.createEmployeeLocked(e)
}

func (tv *txView) EmployeeByID(_ context.Context, id int64) (*leave.Employee, error) {
	return tv.parent.employeeByIDLocked(id)
}

func (tv *txView) EmployeeByMatricule(_ context.Context, matricule string) (*leave.Employee, error) {
	for _, e := range tv.parent.employees {
		if e.Matricule == matricule {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (tv *txView) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	employees := make([]leave.Employee, 0, len(tv.parent.employees))
	for _, e := range tv.parent.employees {
		employees = append(employees, e)
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].Name < employees[j].Name
	})
	return employees, nil
}

func (tv *txView) UpdateBalance(_ context.Context, id int64, balance int) error {
	return tv.parent.updateBalanceLocked(id, balance)
}

func (tv *txView) DeductBalance(_ context.Context, id int64, days int) error {
	return tv.parent.deductBalanceLocked(id, days)
}

func (tv *txView) DeleteEmployee(_ context.Context, id int64) error {
	if _, ok := tv.parent.employees[id]; !ok {
		return leave.ErrEmployeeNotFound
	}
	delete(tv.parent.employees, id)
	return nil
}

func (tv *txView) CreateRequest(_ context.Context, r leave.Request) (int64, error) {
	return tv.parent.createRequestLocked(r)
}

func (tv *txView) RequestByID(_ context.Context, id int64) (*leave.RequestRow, error) {
	return tv.parent.requestByIDLocked(id)
}

func (tv *txView) ListByEmployee(_ context.Context, employeeID int64) ([]leave.RequestRow, error) {
	return tv.parent.collect(func(r leave.Request) bool { return r.EmployeeID == employeeID }), nil
}

func (tv *txView) ListByStatus(_ context.Context, status leave.Status) ([]leave.RequestRow, error) {
	return tv.parent.collect(func(r leave.Request) bool { return r.Status == status }), nil
}

func (tv *txView) ListAllRequests(_ context.Context) ([]leave.RequestRow, error) {
	return tv.parent.collect(func(leave.Request) bool { return true }), nil
}

func (tv *txView) UpdateStatus(_ context.Context, id int64, status leave.Status) error {
	return tv.parent.updateStatusLocked(id, status)
}

func (tv *txView) DeleteRequest(_ context.Context, id int64) error {
	if _, ok := tv.parent.requests[id]; !ok {
		return leave.ErrRequestNotFound
	}
	delete(tv.parent.requests, id)
	return nil
}

// =============================================================================
// USERS
// =============================================================================

func (m *Store) CreateUser(_ context.Context, u auth.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Login, u.Login) {
			return 0, auth.ErrDuplicateLogin
		}
	}
	u.ID = m.nextUserID
	m.nextUserID++
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *Store) UserByLogin(_ context.Context, login string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Login == login {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *Store) UserByID(_ context.Context, id int64) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Store) ListUsers(_ context.Context) ([]auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]auth.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Login < users[j].Login })
	return users, nil
}

func (m *Store) UpdateRole(_ context.Context, id int64, role auth.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.Role = role
	m.users[id] = u
	return nil
}

func (m *Store) UpdatePassword(_ context.Context, id int64, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.Password = password
	m.users[id] = u
	return nil
}

func (m *Store) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return auth.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}
