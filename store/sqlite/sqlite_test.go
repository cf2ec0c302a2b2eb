package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createEmployee(t *testing.T, store *sqlite.Store, matricule string, balance int) int64 {
	t.Helper()
	id, err := store.CreateEmployee(context.Background(), leave.Employee{
		Matricule: matricule,
		Name:      "Test",
		Surname:   "Employee",
		Service:   "Engineering",
		Balance:   balance,
	})
	require.NoError(t, err)
	return id
}

func createRequest(t *testing.T, store *sqlite.Store, employeeID int64, start string) int64 {
	t.Helper()
	startDate, err := time.Parse(leave.DateFormat, start)
	require.NoError(t, err)

	id, err := store.CreateRequest(context.Background(), leave.Request{
		EmployeeID: employeeID,
		Start:      startDate,
		End:        startDate.AddDate(0, 0, 2),
		Type:       leave.TypeAnnual,
		Status:     leave.StatusPending,
	})
	require.NoError(t, err)
	return id
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestCreateEmployee_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := createEmployee(t, store, "EMP001", 22)

	e, err := store.EmployeeByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "EMP001", e.Matricule)
	assert.Equal(t, 22, e.Balance)

	byMatricule, err := store.EmployeeByMatricule(ctx, "EMP001")
	require.NoError(t, err)
	require.NotNil(t, byMatricule)
	assert.Equal(t, id, byMatricule.ID)
}

func TestCreateEmployee_DuplicateMatricule(t *testing.T) {
	store := newTestStore(t)
	createEmployee(t, store, "EMP001", 22)

	_, err := store.CreateEmployee(context.Background(), leave.Employee{
		Matricule: "EMP001", Name: "Other", Surname: "Person", Balance: 22,
	})
	assert.ErrorIs(t, err, leave.ErrDuplicateMatricule)
}

func TestEmployeeByID_Missing(t *testing.T) {
	store := newTestStore(t)

	e, err := store.EmployeeByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, e, "missing employee is nil, not an error")
}

func TestDeductBalance_CheckConstraint(t *testing.T) {
	// GIVEN: A balance of 3
	// WHEN: Deducting 4 days
	// THEN: The CHECK constraint rejects the update and the balance survives

	store := newTestStore(t)
	ctx := context.Background()
	id := createEmployee(t, store, "EMP001", 3)

	require.NoError(t, store.DeductBalance(ctx, id, 3))

	err := store.DeductBalance(ctx, id, 1)
	assert.Error(t, err, "deducting below zero must fail")

	e, err := store.EmployeeByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Balance)
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestRequestByID_JoinsEmployeeSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	empID := createEmployee(t, store, "EMP001", 15)
	reqID := createRequest(t, store, empID, "2026-07-06")

	row, err := store.RequestByID(ctx, reqID)
	require.NoError(t, err)
	require.NotNil(t, row)

	assert.Equal(t, empID, row.EmployeeID)
	assert.Equal(t, "EMP001", row.Employee.Matricule)
	assert.Equal(t, 15, row.Employee.Balance)
	assert.Equal(t, leave.StatusPending, row.Status)
	assert.Equal(t, "2026-07-06", row.Start.Format(leave.DateFormat))
}

func TestRequestByID_Missing(t *testing.T) {
	store := newTestStore(t)

	row, err := store.RequestByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestListByEmployee_MostRecentFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	empID := createEmployee(t, store, "EMP001", 22)

	createRequest(t, store, empID, "2026-03-02")
	createRequest(t, store, empID, "2026-09-14")
	createRequest(t, store, empID, "2026-06-01")

	rows, err := store.ListByEmployee(ctx, empID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-09-14", rows[0].Start.Format(leave.DateFormat))
	assert.Equal(t, "2026-03-02", rows[2].Start.Format(leave.DateFormat))
}

func TestListByStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	empID := createEmployee(t, store, "EMP001", 22)

	first := createRequest(t, store, empID, "2026-03-02")
	createRequest(t, store, empID, "2026-06-01")

	require.NoError(t, store.UpdateStatus(ctx, first, leave.StatusApproved))

	pending, err := store.ListByStatus(ctx, leave.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	approved, err := store.ListByStatus(ctx, leave.StatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, first, approved[0].ID)
}

func TestUpdateStatus_Missing(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdateStatus(context.Background(), 42, leave.StatusApproved)
	assert.ErrorIs(t, err, leave.ErrRequestNotFound)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A transaction that updates a status then fails
	// WHEN: The transaction function returns an error
	// THEN: The status update is rolled back

	store := newTestStore(t)
	ctx := context.Background()
	empID := createEmployee(t, store, "EMP001", 22)
	reqID := createRequest(t, store, empID, "2026-07-06")

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx leave.Store) error {
		if err := tx.UpdateStatus(ctx, reqID, leave.StatusApproved); err != nil {
			return err
		}
		if err := tx.DeductBalance(ctx, empID, 3); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	row, err := store.RequestByID(ctx, reqID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, row.Status, "status update must be rolled back")

	e, err := store.EmployeeByID(ctx, empID)
	require.NoError(t, err)
	assert.Equal(t, 22, e.Balance, "deduction must be rolled back")
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	empID := createEmployee(t, store, "EMP001", 22)
	reqID := createRequest(t, store, empID, "2026-07-06")

	err := store.WithTx(ctx, func(tx leave.Store) error {
		row, err := tx.RequestByID(ctx, reqID)
		if err != nil {
			return err
		}
		if err := tx.UpdateStatus(ctx, row.ID, leave.StatusApproved); err != nil {
			return err
		}
		return tx.DeductBalance(ctx, empID, 3)
	})
	require.NoError(t, err)

	row, err := store.RequestByID(ctx, reqID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, row.Status)

	e, err := store.EmployeeByID(ctx, empID)
	require.NoError(t, err)
	assert.Equal(t, 19, e.Balance)
}

// =============================================================================
// USERS
// =============================================================================

func TestCreateUser_DuplicateLogin(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, auth.User{Login: "alice", Password: "pw", Role: auth.RoleHR})
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, auth.User{Login: "alice", Password: "other", Role: auth.RoleEmployee})
	assert.ErrorIs(t, err, auth.ErrDuplicateLogin)
}

func TestUserByLogin_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateUser(ctx, auth.User{Login: "alice", Password: "pw", Role: auth.RoleHR})
	require.NoError(t, err)

	u, err := store.UserByLogin(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, auth.RoleHR, u.Role)

	missing, err := store.UserByLogin(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdatePassword_And_Role(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateUser(ctx, auth.User{Login: "alice", Password: "old", Role: auth.RoleEmployee})
	require.NoError(t, err)

	require.NoError(t, store.UpdatePassword(ctx, id, "new"))
	require.NoError(t, store.UpdateRole(ctx, id, auth.RoleHR))

	u, err := store.UserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", u.Password)
	assert.Equal(t, auth.RoleHR, u.Role)

	assert.ErrorIs(t, store.UpdatePassword(ctx, 42, "x"), auth.ErrUserNotFound)
}
