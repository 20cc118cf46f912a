package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func adminPrincipal(role identity.Role) *identity.Principal {
	return &identity.Principal{ID: uuid.New(), Role: role}
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	in := CreateUserInput{Name: "Sam", Email: "Sam@Example.com", Password: "long-enough-pw", Role: "approver"}

	t.Run("admin creates a user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		resp, err := NewUserService(repo, nil, nil, nil).Create(ctx, adminPrincipal(identity.RoleAdmin), in)
		require.NoError(t, err)
		assert.Equal(t, "sam@example.com", resp.Email)
		assert.Equal(t, "approver", resp.Role)
		assert.True(t, resp.Active)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Create", ctx, mock.Anything).
			Return(shared.NewDomainError(shared.CodeAlreadyExists, "A user with this email already exists"))

		_, err := NewUserService(repo, nil, nil, nil).Create(ctx, adminPrincipal(identity.RoleAdmin), in)
		assert.Equal(t, shared.CodeAlreadyExists, shared.CodeOf(err))
	})

	t.Run("unknown role", func(t *testing.T) {
		bad := in
		bad.Role = "owner"
		_, err := NewUserService(new(MockUserRepository), nil, nil, nil).Create(ctx, adminPrincipal(identity.RoleAdmin), bad)
		assert.Equal(t, shared.CodeBadRequest, shared.CodeOf(err))
	})

	t.Run("admin cannot mint a super-admin", func(t *testing.T) {
		bad := in
		bad.Role = "super-admin"
		_, err := NewUserService(new(MockUserRepository), nil, nil, nil).Create(ctx, adminPrincipal(identity.RoleAdmin), bad)
		assert.Equal(t, shared.CodeForbidden, shared.CodeOf(err))
	})

	t.Run("approver is forbidden", func(t *testing.T) {
		_, err := NewUserService(new(MockUserRepository), nil, nil, nil).Create(ctx, adminPrincipal(identity.RoleApprover), in)
		assert.Equal(t, shared.CodeForbidden, shared.CodeOf(err))
	})
}

func TestUserService_ChangeRole(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and bumps the version", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, identity.RoleEmployee)
		repo.On("FindByID", ctx, user.ID).Return(user, nil)
		repo.On("Update", ctx, user).Return(nil)

		resp, err := NewUserService(repo, nil, nil, nil).ChangeRole(ctx, adminPrincipal(identity.RoleAdmin), user.ID, ChangeRoleInput{Role: "Approver"})
		require.NoError(t, err)
		assert.Equal(t, "approver", resp.Role)
		assert.Equal(t, 2, resp.Version)
		repo.AssertExpectations(t)
	})

	t.Run("same role is a no-op", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, identity.RoleEmployee)
		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		resp, err := NewUserService(repo, nil, nil, nil).ChangeRole(ctx, adminPrincipal(identity.RoleAdmin), user.ID, ChangeRoleInput{Role: "employee"})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Version)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("admin cannot demote a super-admin", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, identity.RoleSuperAdmin)
		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err := NewUserService(repo, nil, nil, nil).ChangeRole(ctx, adminPrincipal(identity.RoleAdmin), user.ID, ChangeRoleInput{Role: "employee"})
		assert.Equal(t, shared.CodeForbidden, shared.CodeOf(err))
	})

	t.Run("missing user", func(t *testing.T) {
		repo := new(MockUserRepository)
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.NewNotFoundError("User"))

		_, err := NewUserService(repo, nil, nil, nil).ChangeRole(ctx, adminPrincipal(identity.RoleSuperAdmin), id, ChangeRoleInput{Role: "admin"})
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	user := newTestUser(t, identity.RoleApprover)
	role := identity.RoleApprover
	repo.On("FindAll", ctx, identity.UserFilter{Role: &role, Page: 1, PageSize: shared.DefaultPageSize}).
		Return([]*identity.User{user}, int64(1), nil)

	resp, err := NewUserService(repo, nil, nil, nil).List(ctx, adminPrincipal(identity.RoleAdmin), ListUsersQuery{Role: "approver"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "approver", resp.Items[0].Role)

	_, err = NewUserService(repo, nil, nil, nil).List(ctx, adminPrincipal(identity.RoleAdmin), ListUsersQuery{Role: "owner"})
	assert.Equal(t, shared.CodeBadRequest, shared.CodeOf(err))
}
