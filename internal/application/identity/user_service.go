package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService manages login identities. Every operation needs an admin role.
type UserService struct {
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	guard          *Guard
	logger         *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, eventPublisher shared.EventPublisher, guard *Guard, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = NewGuard(logger)
	}
	return &UserService{
		userRepo:       userRepo,
		eventPublisher: eventPublisher,
		guard:          guard,
		logger:         logger.Named("user_service"),
	}
}

// Create adds a user with the given role
func (s *UserService) Create(ctx context.Context, p *identity.Principal, in CreateUserInput) (*UserResponse, error) {
	if err := s.guard.Require(ctx, p, identity.AdminRoles, "create_user"); err != nil {
		return nil, err
	}
	role, ok := identity.ParseRole(in.Role)
	if !ok {
		return nil, shared.NewBadRequestError("Invalid role: " + in.Role)
	}
	if role == identity.RoleSuperAdmin && p.Role != identity.RoleSuperAdmin {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Only a super-admin can grant the super-admin role")
	}

	user, err := identity.NewUser(in.Name, in.Email, in.Password, role, in.Department)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
		zap.String("actor_id", p.ID.String()),
	)
	s.publishEvents(ctx, user)
	resp := ToUserResponse(user)
	return &resp, nil
}

// List returns users ordered by name
func (s *UserService) List(ctx context.Context, p *identity.Principal, q ListUsersQuery) (*UserListResponse, error) {
	if err := s.guard.Require(ctx, p, identity.AdminRoles, "list_users"); err != nil {
		return nil, err
	}
	page, pageSize := shared.NormalizePage(q.Page, q.PageSize)
	filter := identity.UserFilter{Keyword: q.Keyword, Page: page, PageSize: pageSize}
	if q.Role != "" {
		role, ok := identity.ParseRole(q.Role)
		if !ok {
			return nil, shared.NewBadRequestError("Invalid role: " + q.Role)
		}
		filter.Role = &role
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = ToUserResponse(u)
	}
	return &UserListResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// ChangeRole assigns a new role. Tokens already issued keep the old role
// until the user logs in or refreshes.
func (s *UserService) ChangeRole(ctx context.Context, p *identity.Principal, id uuid.UUID, in ChangeRoleInput) (*UserResponse, error) {
	if err := s.guard.Require(ctx, p, identity.AdminRoles, "change_role"); err != nil {
		return nil, err
	}
	role, ok := identity.ParseRole(in.Role)
	if !ok {
		return nil, shared.NewBadRequestError("Invalid role: " + in.Role)
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != identity.RoleSuperAdmin && (role == identity.RoleSuperAdmin || user.Role == identity.RoleSuperAdmin) {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Only a super-admin can change super-admin roles")
	}

	oldRole := user.Role
	if err := user.ChangeRole(role, p.ID); err != nil {
		return nil, err
	}
	if oldRole != role {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("User role changed",
			zap.String("user_id", user.ID.String()),
			zap.String("old_role", oldRole.String()),
			zap.String("new_role", role.String()),
			zap.String("actor_id", p.ID.String()),
		)
		s.publishEvents(ctx, user)
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *UserService) publishEvents(ctx context.Context, user *identity.User) {
	events := user.GetDomainEvents()
	user.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish user events", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}
