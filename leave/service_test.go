package leave_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) *leave.Service {
	t.Helper()
	return leave.NewService(memory.New(), zerolog.Nop())
}

func addEmployee(t *testing.T, svc *leave.Service, matricule string, balance int) int64 {
	t.Helper()
	id, err := svc.AddEmployee(context.Background(), matricule, "Test", "Employee", "Engineering", balance)
	require.NoError(t, err)
	return id
}

// =============================================================================
// EMPLOYEE REGISTRATION
// =============================================================================

func TestAddEmployee_DefaultBalance(t *testing.T) {
	// GIVEN: No explicit starting balance
	// THEN: The employee starts with the default allowance

	svc := newTestService(t)
	id := addEmployee(t, svc, "EMP001", -1)

	e, err := svc.EmployeeByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, leave.DefaultBalance, e.Balance)
}

func TestAddEmployee_ExplicitBalance(t *testing.T) {
	svc := newTestService(t)
	id := addEmployee(t, svc, "EMP001", 5)

	e, err := svc.EmployeeByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 5, e.Balance)
}

func TestAddEmployee_DuplicateMatricule(t *testing.T) {
	svc := newTestService(t)
	addEmployee(t, svc, "EMP001", -1)

	_, err := svc.AddEmployee(context.Background(), "EMP001", "Other", "Person", "Finance", -1)
	assert.ErrorIs(t, err, leave.ErrDuplicateMatricule)
}

func TestAddEmployee_InvalidMatricule(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AddEmployee(context.Background(), "A", "Test", "Employee", "Engineering", -1)
	assert.ErrorIs(t, err, leave.ErrInvalidMatricule)
}

func TestEmployeeByID_Missing(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.EmployeeByID(context.Background(), 42)
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmitRequest_Pending(t *testing.T) {
	// GIVEN: An employee with the default balance
	// WHEN: Submitting a valid annual request
	// THEN: The request lands in Pending and the balance is untouched

	svc := newTestService(t)
	ctx := context.Background()
	empID := addEmployee(t, svc, "EMP001", -1)

	id, err := svc.SubmitRequest(ctx, empID, "2026-07-06", "2026-07-10", leave.TypeAnnual, "summer", "")
	require.NoError(t, err)

	row, err := svc.RequestByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, row.Request.Status)
	assert.Equal(t, 5, row.Rule.Days())

	e, err := svc.EmployeeByID(ctx, empID)
	require.NoError(t, err)
	assert.Equal(t, leave.DefaultBalance, e.Balance, "submission must not deduct")
}

func TestSubmitRequest_ReversedPeriod(t *testing.T) {
	svc := newTestService(t)
	empID := addEmployee(t, svc, "EMP001", -1)

	_, err := svc.SubmitRequest(context.Background(), empID, "2026-07-10", "2026-07-06", leave.TypeAnnual, "", "")
	assert.ErrorIs(t, err, leave.ErrInvalidPeriod)
}

func TestSubmitRequest_UnknownType(t *testing.T) {
	svc := newTestService(t)
	empID := addEmployee(t, svc, "EMP001", -1)

	_, err := svc.SubmitRequest(context.Background(), empID, "2026-07-06", "2026-07-10", "sabbatical", "", "")
	assert.ErrorIs(t, err, leave.ErrUnknownLeaveType)
}

func TestSubmitRequest_UnknownEmployee(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.SubmitRequest(context.Background(), 42, "2026-07-06", "2026-07-10", leave.TypeAnnual, "", "")
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

func TestSubmitRequest_AnnualOverBalance_Rejected(t *testing.T) {
	// GIVEN: A balance of 3 days
	// WHEN: Submitting 5 days of annual leave
	// THEN: Rejected at submission; nothing is stored

	svc := newTestService(t)
	ctx := context.Background()
	empID := addEmployee(t, svc, "EMP001", 3)

	_, err := svc.SubmitRequest(ctx, empID, "2026-07-06", "2026-07-10", leave.TypeAnnual, "", "")
	assert.ErrorIs(t, err, leave.ErrRuleRejected)

	var rejected *leave.RuleRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, leave.TypeAnnual, rejected.Type)

	requests, err := svc.RequestsByEmployee(ctx, empID)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestSubmitRequest_SickWithZeroBalance(t *testing.T) {
	svc := newTestService(t)
	empID := addEmployee(t, svc, "EMP001", 0)

	_, err := svc.SubmitRequest(context.Background(), empID, "2026-07-06", "2026-07-10", leave.TypeSick, "", "")
	assert.NoError(t, err, "sick leave must not depend on balance")
}

func TestSubmitRequest_ExceptionalKeepsMotif(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	empID := addEmployee(t, svc, "EMP001", -1)

	id, err := svc.SubmitRequest(ctx, empID, "2026-07-06", "2026-07-08", leave.TypeExceptional, "", "Birth")
	require.NoError(t, err)

	row, err := svc.RequestByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "birth", row.Request.Motif, "motif is stored lower-cased")
}

// =============================================================================
// APPROVAL / REJECTION
// =============================================================================

func TestApproveRequest_DeductsAnnual(t *testing.T) {
	// GIVEN: A pending 5-day annual request and a balance of 22
	// WHEN: Approving
	// THEN: Status is Approved and the balance drops to 17

	svc := newTestService(t)
	ctx := context.Background()
	empID := addEmployee(t, svc, "EMP001", -1)

	id, err := svc.SubmitRequest(ctx, empID, "2026-07-06", "2026-07-10", leave.TypeAnnual, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.ApproveRequest(ctx, id))

	row, err := svc.RequestByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, row.Request.Status)

	e, err := svc.EmployeeByID(ctx, empID)
	require.NoError(t, err)
	assert.Equal(t, leave.DefaultBalance-5, e.Balance)
}

func TestApproveRequest_SickLeavesBalanceAlone(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	empID := addEmployee(t, svc, "EMP001", 10)

	id, err := svc.SubmitRequest(ctx, empID, "2026-07-06", "2026-07-10", leave.TypeSick, "", "")
	require.NoError(t, err)
	require.NoError(t, svc.ApproveRequest(ctx, id))

	e, err := svc.EmployeeByID(ctx, empID)
	require.NoError(t, err)
	assert.Equal(t, 10, e.Balance)
}

func TestApproveRequest_NotPending(t *testing.T) {
	// GIVEN: An already approved request
	// WHEN: Approving or rejecting it again
	// THEN: StatusNotPending; the balance is deducted exactly once

	svc := newTestService(t)
	ctx := context.Background()
	empID := addEmployee(t, svc, "EMP001", -1)

	id, err := svc.SubmitRequest(ctx, empID, "2026-07-06", "2026-07-10", leave.TypeAnnual, "", "")
	require.NoError(t, err)
	require.NoError(t, svc.ApproveRequest(ctx, id))

	assert.ErrorIs(t, svc.ApproveRequest(ctx, id), leave.ErrStatusNotPending)
	assert.ErrorIs(t, svc.RejectRequest(ctx, id), leave.ErrStatusNotPending)

	e, err := svc.EmployeeByID(ctx, empID)
	require.NoError(t, err)
	assert.Equal(t, leave.DefaultBalance-5, e.Balance, "only the first approval deducts")
}

func TestApproveRequest_RevalidatesCurrentBalance(t *testing.T) {
	// GIVEN: A request valid at submission
	// WHEN: The balance shrinks before approval
	// THEN: Approval is refused and nothing changes

	svc := newTestService(t)
	ctx := context.Background()
	empID := addEmployee(t, svc, "EMP001", 10)

	id, err := svc.SubmitRequest(ctx, empID, "2026-07-06", "2026-07-10", leave.TypeAnnual, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.SetBalance(ctx, empID, 2))

	err = svc.ApproveRequest(ctx, id)
	assert.ErrorIs(t, err, leave.ErrRuleRejected)

	row, err := svc.RequestByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, row.Request.Status, "failed approval must not change status")

	e, err := svc.EmployeeByID(ctx, empID)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Balance)
}

func TestRejectRequest(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	empID := addEmployee(t, svc, "EMP001", -1)

	id, err := svc.SubmitRequest(ctx, empID, "2026-07-06", "2026-07-10", leave.TypeAnnual, "", "")
	require.NoError(t, err)
	require.NoError(t, svc.RejectRequest(ctx, id))

	row, err := svc.RequestByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, row.Request.Status)

	e, err := svc.EmployeeByID(ctx, empID)
	require.NoError(t, err)
	assert.Equal(t, leave.DefaultBalance, e.Balance, "rejection never touches the balance")

	// Rejected is terminal: a later approval attempt must fail.
	assert.ErrorIs(t, svc.ApproveRequest(ctx, id), leave.ErrStatusNotPending)
}

func TestApproveRequest_Missing(t *testing.T) {
	svc := newTestService(t)
	assert.ErrorIs(t, svc.ApproveRequest(context.Background(), 42), leave.ErrRequestNotFound)
	assert.ErrorIs(t, svc.RejectRequest(context.Background(), 42), leave.ErrRequestNotFound)
}

// =============================================================================
// LISTINGS
// =============================================================================

func TestPendingRequests(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	empID := addEmployee(t, svc, "EMP001", -1)

	first, err := svc.SubmitRequest(ctx, empID, "2026-07-06", "2026-07-07", leave.TypeAnnual, "", "")
	require.NoError(t, err)
	second, err := svc.SubmitRequest(ctx, empID, "2026-08-03", "2026-08-04", leave.TypeUnpaid, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.ApproveRequest(ctx, first))

	pending, err := svc.PendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second, pending[0].ID)
}

func TestRequestsByStatus_UnknownStatus(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.RequestsByStatus(context.Background(), "Frozen")
	assert.ErrorIs(t, err, leave.ErrInvalidFormat)
}

func TestRequestsByEmployee_Isolated(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := addEmployee(t, svc, "EMP001", -1)
	bruno := addEmployee(t, svc, "EMP002", -1)

	_, err := svc.SubmitRequest(ctx, alice, "2026-07-06", "2026-07-07", leave.TypeAnnual, "", "")
	require.NoError(t, err)

	mine, err := svc.RequestsByEmployee(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := svc.RequestsByEmployee(ctx, bruno)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

// =============================================================================
// BALANCE ADMINISTRATION
// =============================================================================

func TestSetBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	empID := addEmployee(t, svc, "EMP001", -1)

	require.NoError(t, svc.SetBalance(ctx, empID, 30))

	e, err := svc.EmployeeByID(ctx, empID)
	require.NoError(t, err)
	assert.Equal(t, 30, e.Balance)
}

func TestSetBalance_Negative(t *testing.T) {
	svc := newTestService(t)
	empID := addEmployee(t, svc, "EMP001", -1)
	assert.ErrorIs(t, svc.SetBalance(context.Background(), empID, -1), leave.ErrInvalidBalance)
}
