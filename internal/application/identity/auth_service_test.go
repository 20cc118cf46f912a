package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/procura/backend/internal/infrastructure/auth"
	"github.com/procura/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]identity.UserSummary, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]identity.UserSummary), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

// failingBlacklist always errors
type failingBlacklist struct{}

func (failingBlacklist) AddToBlacklist(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (failingBlacklist) IsBlacklisted(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

const testPassword = "correct-horse-battery"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-at-least-32-characters",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "procura-test",
	})
}

func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Dana Reyes", "dana@example.com", testPassword, role, "Design")
	require.NoError(t, err)
	user.ClearDomainEvents()
	return user
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	jwtService := newTestJWTService()

	t.Run("issues tokens carrying the role", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, identity.RoleApprover)
		repo.On("FindByEmail", ctx, "dana@example.com").Return(user, nil)
		service := NewAuthService(repo, jwtService, nil, zap.NewNop())

		resp, err := service.Login(ctx, LoginInput{Email: "dana@example.com", Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)
		require.NotNil(t, resp.User)
		assert.Equal(t, "approver", resp.User.Role)

		p, _, err := jwtService.Verify(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, p.ID)
		assert.Equal(t, identity.RoleApprover, p.Role)
		assert.Equal(t, "Dana Reyes", p.Name)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", ctx, "dana@example.com").Return(newTestUser(t, identity.RoleEmployee), nil)

		_, err := NewAuthService(repo, jwtService, nil, nil).Login(ctx, LoginInput{Email: "dana@example.com", Password: "nope-nope"})
		assert.Equal(t, shared.CodeInvalidCredentials, shared.CodeOf(err))
	})

	t.Run("unknown email looks like a wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.NewNotFoundError("User"))

		_, err := NewAuthService(repo, jwtService, nil, nil).Login(ctx, LoginInput{Email: "ghost@example.com", Password: testPassword})
		assert.Equal(t, shared.CodeInvalidCredentials, shared.CodeOf(err))
	})

	t.Run("inactive account", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, identity.RoleEmployee)
		user.Active = false
		repo.On("FindByEmail", ctx, "dana@example.com").Return(user, nil)

		_, err := NewAuthService(repo, jwtService, nil, nil).Login(ctx, LoginInput{Email: "dana@example.com", Password: testPassword})
		assert.Equal(t, shared.CodeInvalidCredentials, shared.CodeOf(err))
	})

	t.Run("store failure is not masked", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", ctx, "dana@example.com").Return(nil, shared.NewStoreError(errors.New("timeout")))

		_, err := NewAuthService(repo, jwtService, nil, nil).Login(ctx, LoginInput{Email: "dana@example.com", Password: testPassword})
		assert.Equal(t, shared.CodeStoreError, shared.CodeOf(err))
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	jwtService := newTestJWTService()

	t.Run("new access token carries the current role and the old refresh token is revoked", func(t *testing.T) {
		repo := new(MockUserRepository)
		blacklist := auth.NewInMemoryTokenBlacklist()
		user := newTestUser(t, identity.RoleEmployee)
		pair, err := jwtService.GenerateTokenPair(user.Principal())
		require.NoError(t, err)

		require.NoError(t, user.ChangeRole(identity.RoleApprover, uuid.New()))
		repo.On("FindByID", ctx, user.ID).Return(user, nil)
		service := NewAuthService(repo, jwtService, blacklist, nil)

		resp, err := service.Refresh(ctx, RefreshInput{RefreshToken: pair.RefreshToken})
		require.NoError(t, err)
		p, _, err := jwtService.Verify(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, identity.RoleApprover, p.Role)

		_, err = service.Refresh(ctx, RefreshInput{RefreshToken: pair.RefreshToken})
		assert.Equal(t, shared.CodeUnauthenticated, shared.CodeOf(err))
		assert.Equal(t, "Token has been revoked", err.Error())
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		user := newTestUser(t, identity.RoleEmployee)
		pair, err := jwtService.GenerateTokenPair(user.Principal())
		require.NoError(t, err)

		_, err = NewAuthService(new(MockUserRepository), jwtService, nil, nil).Refresh(ctx, RefreshInput{RefreshToken: pair.AccessToken})
		assert.Equal(t, shared.CodeUnauthenticated, shared.CodeOf(err))
	})

	t.Run("deactivated user", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, identity.RoleEmployee)
		pair, err := jwtService.GenerateTokenPair(user.Principal())
		require.NoError(t, err)
		user.Active = false
		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err = NewAuthService(repo, jwtService, nil, nil).Refresh(ctx, RefreshInput{RefreshToken: pair.RefreshToken})
		assert.Equal(t, shared.CodeUnauthenticated, shared.CodeOf(err))
	})

	t.Run("blacklist outage fails open", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, identity.RoleEmployee)
		pair, err := jwtService.GenerateTokenPair(user.Principal())
		require.NoError(t, err)
		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err = NewAuthService(repo, jwtService, failingBlacklist{}, nil).Refresh(ctx, RefreshInput{RefreshToken: pair.RefreshToken})
		assert.NoError(t, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	jwtService := newTestJWTService()
	blacklist := auth.NewInMemoryTokenBlacklist()
	user := newTestUser(t, identity.RoleEmployee)
	pair, err := jwtService.GenerateTokenPair(user.Principal())
	require.NoError(t, err)
	_, claims, err := jwtService.Verify(pair.AccessToken)
	require.NoError(t, err)
	refreshClaims, err := jwtService.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	service := NewAuthService(new(MockUserRepository), jwtService, blacklist, nil)
	require.NoError(t, service.Logout(ctx, claims, LogoutInput{RefreshToken: pair.RefreshToken}))

	revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = blacklist.IsBlacklisted(ctx, refreshClaims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.Equal(t, shared.CodeUnauthenticated, shared.CodeOf(service.Logout(ctx, nil, LogoutInput{})))
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	user := newTestUser(t, identity.RoleAdmin)
	repo.On("FindByID", ctx, user.ID).Return(user, nil)
	service := NewAuthService(repo, newTestJWTService(), nil, nil)

	p := user.Principal()
	resp, err := service.Me(ctx, &p)
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", resp.Email)
	assert.Equal(t, "admin", resp.Role)

	_, err = service.Me(ctx, nil)
	assert.Equal(t, shared.CodeUnauthenticated, shared.CodeOf(err))
}
