package identity

import (
	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/shared"
)

// AggregateTypeUser is the aggregate type for user events
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated     = "user.created"
	EventTypeUserRoleChanged = "user.role_changed"
)

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID, uuid.Nil),
		Email:           user.Email,
		Role:            user.Role,
	}
}

// UserRoleChangedEvent is published when an admin changes a user's role
type UserRoleChangedEvent struct {
	shared.BaseDomainEvent
	OldRole Role `json:"old_role"`
	NewRole Role `json:"new_role"`
}

// NewUserRoleChangedEvent creates a new UserRoleChangedEvent
func NewUserRoleChangedEvent(user *User, oldRole Role, actorID uuid.UUID) *UserRoleChangedEvent {
	return &UserRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleChanged, AggregateTypeUser, user.ID, actorID),
		OldRole:         oldRole,
		NewRole:         user.Role,
	}
}
