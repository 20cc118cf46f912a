package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create persists a new user. Fails with ALREADY_EXISTS on a duplicate email.
	Create(ctx context.Context, user *User) error

	// Update persists changes to an existing user, checking its version
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindSummaries returns the display identity of each known id, keyed by id.
	// Unknown ids are absent from the result.
	FindSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]UserSummary, error)

	// FindAll returns users ordered by name with the total count
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	Role     *Role
	Keyword  string
	Page     int
	PageSize int
}
