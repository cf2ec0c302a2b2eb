package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestAuthService(t *testing.T) *auth.Service {
	t.Helper()
	return auth.NewService(memory.New())
}

func addUser(t *testing.T, svc *auth.Service, login, password string, role auth.Role) int64 {
	t.Helper()
	id, err := svc.CreateUser(context.Background(), login, password, role)
	require.NoError(t, err)
	return id
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

func TestAuthenticate_Success(t *testing.T) {
	svc := newTestAuthService(t)
	addUser(t, svc, "alice", "s3cret", auth.RoleHR)

	u, err := svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleHR, u.Role)
	assert.True(t, u.IsHR())
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	// The error must not reveal whether the login or the password
	// was wrong.
	svc := newTestAuthService(t)
	addUser(t, svc, "alice", "s3cret", auth.RoleEmployee)

	_, err := svc.Authenticate(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody", "s3cret")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthenticate_EmptyCredentials(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Authenticate(context.Background(), "", "s3cret")
	assert.ErrorIs(t, err, auth.ErrEmptyCredentials)

	_, err = svc.Authenticate(context.Background(), "alice", "")
	assert.ErrorIs(t, err, auth.ErrEmptyCredentials)
}

// =============================================================================
// ACCOUNT MANAGEMENT
// =============================================================================

func TestCreateUser_DuplicateLogin(t *testing.T) {
	svc := newTestAuthService(t)
	addUser(t, svc, "alice", "s3cret", auth.RoleEmployee)

	_, err := svc.CreateUser(context.Background(), "alice", "other", auth.RoleHR)
	assert.ErrorIs(t, err, auth.ErrDuplicateLogin)
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.CreateUser(context.Background(), "alice", "s3cret", "Manager")
	assert.ErrorIs(t, err, auth.ErrInvalidRole)
}

func TestHasHRAccess(t *testing.T) {
	svc := newTestAuthService(t)

	assert.True(t, svc.HasHRAccess(&auth.User{Role: auth.RoleHR}))
	assert.False(t, svc.HasHRAccess(&auth.User{Role: auth.RoleEmployee}))
	assert.False(t, svc.HasHRAccess(nil))
}

func TestUpdateRole(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()
	id := addUser(t, svc, "alice", "s3cret", auth.RoleEmployee)

	require.NoError(t, svc.UpdateRole(ctx, id, auth.RoleHR))

	u, err := svc.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.True(t, u.IsHR())
}

func TestUpdateRole_Invalid(t *testing.T) {
	svc := newTestAuthService(t)
	id := addUser(t, svc, "alice", "s3cret", auth.RoleEmployee)

	assert.ErrorIs(t, svc.UpdateRole(context.Background(), id, "Manager"), auth.ErrInvalidRole)
	assert.ErrorIs(t, svc.UpdateRole(context.Background(), 42, auth.RoleHR), auth.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	// GIVEN: A known account
	// WHEN: Changing the password with the correct old one
	// THEN: Only the new password authenticates

	svc := newTestAuthService(t)
	ctx := context.Background()
	id := addUser(t, svc, "alice", "old", auth.RoleEmployee)

	require.NoError(t, svc.ChangePassword(ctx, id, "old", "new"))

	_, err := svc.Authenticate(ctx, "alice", "old")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "alice", "new")
	assert.NoError(t, err)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	svc := newTestAuthService(t)
	id := addUser(t, svc, "alice", "old", auth.RoleEmployee)

	err := svc.ChangePassword(context.Background(), id, "wrong", "new")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestDeleteUser(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()
	id := addUser(t, svc, "alice", "s3cret", auth.RoleEmployee)

	require.NoError(t, svc.DeleteUser(ctx, id))

	_, err := svc.Authenticate(ctx, "alice", "s3cret")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	assert.ErrorIs(t, svc.DeleteUser(ctx, id), auth.ErrUserNotFound)
}

func TestListUsers_OrderedByLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()
	addUser(t, svc, "zoe", "pw", auth.RoleEmployee)
	addUser(t, svc, "alice", "pw", auth.RoleHR)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Login)
	assert.Equal(t, "zoe", users[1].Login)
}
