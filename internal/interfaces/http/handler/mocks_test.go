package handler

import (
	"context"

	"github.com/google/uuid"
	identityapp "github.com/procura/backend/internal/application/identity"
	procurementapp "github.com/procura/backend/internal/application/procurement"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/infrastructure/auth"
	"github.com/procura/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/mock"
)

type MockRequestCommands struct {
	mock.Mock
}

func (m *MockRequestCommands) response(args mock.Arguments) (*procurementapp.RequestResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.RequestResponse), args.Error(1)
}

func (m *MockRequestCommands) Create(ctx context.Context, p *identity.Principal, in procurementapp.RequestInput) (*procurementapp.RequestResponse, error) {
	return m.response(m.Called(ctx, p, in))
}

func (m *MockRequestCommands) Edit(ctx context.Context, p *identity.Principal, id uuid.UUID, in procurementapp.RequestInput) (*procurementapp.RequestResponse, error) {
	return m.response(m.Called(ctx, p, id, in))
}

func (m *MockRequestCommands) Decide(ctx context.Context, p *identity.Principal, id uuid.UUID, in procurementapp.DecisionInput) (*procurementapp.RequestResponse, error) {
	return m.response(m.Called(ctx, p, id, in))
}

func (m *MockRequestCommands) RequestClarification(ctx context.Context, p *identity.Principal, id uuid.UUID, in procurementapp.ClarificationInput) (*procurementapp.RequestResponse, error) {
	return m.response(m.Called(ctx, p, id, in))
}

func (m *MockRequestCommands) Reply(ctx context.Context, p *identity.Principal, id uuid.UUID, in procurementapp.ReplyInput) (*procurementapp.RequestResponse, error) {
	return m.response(m.Called(ctx, p, id, in))
}

func (m *MockRequestCommands) Withdraw(ctx context.Context, p *identity.Principal, id uuid.UUID) (*procurementapp.RequestResponse, error) {
	return m.response(m.Called(ctx, p, id))
}

func (m *MockRequestCommands) Delete(ctx context.Context, p *identity.Principal, id uuid.UUID) error {
	return m.Called(ctx, p, id).Error(0)
}

type MockRequestQueries struct {
	mock.Mock
}

func (m *MockRequestQueries) List(ctx context.Context, p *identity.Principal, q procurementapp.ListRequestsQuery) (*procurementapp.RequestListResponse, error) {
	args := m.Called(ctx, p, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.RequestListResponse), args.Error(1)
}

func (m *MockRequestQueries) Get(ctx context.Context, p *identity.Principal, id uuid.UUID) (*procurementapp.RequestResponse, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.RequestResponse), args.Error(1)
}

func (m *MockRequestQueries) Stats(ctx context.Context, p *identity.Principal, q procurementapp.ListRequestsQuery) (*procurementapp.RequestStatsResponse, error) {
	args := m.Called(ctx, p, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.RequestStatsResponse), args.Error(1)
}

type MockUploadURLIssuer struct {
	mock.Mock
}

func (m *MockUploadURLIssuer) CreateUploadURL(ctx context.Context, p *identity.Principal, in procurementapp.UploadURLInput) (*procurementapp.UploadURLResponse, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.UploadURLResponse), args.Error(1)
}

type MockVendorManager struct {
	mock.Mock
}

func (m *MockVendorManager) vendor(args mock.Arguments) (*procurementapp.VendorResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.VendorResponse), args.Error(1)
}

func (m *MockVendorManager) Create(ctx context.Context, p *identity.Principal, in procurementapp.VendorInput) (*procurementapp.VendorResponse, error) {
	return m.vendor(m.Called(ctx, p, in))
}

func (m *MockVendorManager) Update(ctx context.Context, p *identity.Principal, id uuid.UUID, in procurementapp.VendorInput) (*procurementapp.VendorResponse, error) {
	return m.vendor(m.Called(ctx, p, id, in))
}

func (m *MockVendorManager) Deactivate(ctx context.Context, p *identity.Principal, id uuid.UUID) (*procurementapp.VendorResponse, error) {
	return m.vendor(m.Called(ctx, p, id))
}

func (m *MockVendorManager) Get(ctx context.Context, p *identity.Principal, id uuid.UUID) (*procurementapp.VendorResponse, error) {
	return m.vendor(m.Called(ctx, p, id))
}

func (m *MockVendorManager) List(ctx context.Context, p *identity.Principal, q procurementapp.ListVendorsQuery) (*procurementapp.VendorListResponse, error) {
	args := m.Called(ctx, p, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.VendorListResponse), args.Error(1)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, in identityapp.LoginInput) (*identityapp.TokenResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.TokenResponse), args.Error(1)
}

func (m *MockAuthenticator) Refresh(ctx context.Context, in identityapp.RefreshInput) (*identityapp.TokenResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.TokenResponse), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context, claims *auth.Claims, in identityapp.LogoutInput) error {
	return m.Called(ctx, claims, in).Error(0)
}

func (m *MockAuthenticator) Me(ctx context.Context, p *identity.Principal) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.UserResponse), args.Error(1)
}

type MockUserAdmin struct {
	mock.Mock
}

func (m *MockUserAdmin) Create(ctx context.Context, p *identity.Principal, in identityapp.CreateUserInput) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.UserResponse), args.Error(1)
}

func (m *MockUserAdmin) List(ctx context.Context, p *identity.Principal, q identityapp.ListUsersQuery) (*identityapp.UserListResponse, error) {
	args := m.Called(ctx, p, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.UserListResponse), args.Error(1)
}

func (m *MockUserAdmin) ChangeRole(ctx context.Context, p *identity.Principal, id uuid.UUID, in identityapp.ChangeRoleInput) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, p, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.UserResponse), args.Error(1)
}

type stubDatabaseCheck struct {
	pingErr error
	stats   persistence.ConnectionStats
}

func (s stubDatabaseCheck) PingContext(context.Context) error { return s.pingErr }

func (s stubDatabaseCheck) Stats() (persistence.ConnectionStats, error) { return s.stats, nil }
