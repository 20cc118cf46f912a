package identity

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// User is a login identity. Its role is copied into issued tokens.
type User struct {
	shared.BaseAggregateRoot
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	Active       bool
}

// NewUser creates an active user with a hashed password
func NewUser(name, email, password string, role Role, department string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewBadRequestError("Name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewBadRequestError("Name cannot exceed 200 characters")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewBadRequestError("Invalid role: " + string(role))
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		PasswordHash:      string(hash),
		Role:              role,
		Department:        strings.TrimSpace(department),
		Active:            true,
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

// VerifyPassword reports whether password matches the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangeRole assigns a new role. Tokens already issued keep the old role
// until they expire or are refreshed.
func (u *User) ChangeRole(role Role, actorID uuid.UUID) error {
	if !role.IsValid() {
		return shared.NewBadRequestError("Invalid role: " + string(role))
	}
	if u.Role == role {
		return nil
	}
	old := u.Role
	u.Role = role
	u.Touch()
	u.IncrementVersion()
	u.AddDomainEvent(NewUserRoleChangedEvent(u, old, actorID))
	return nil
}

// UserSummary is the minimal identity shown next to a request
type UserSummary struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Principal returns the identity a credential issued to this user carries
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", shared.NewBadRequestError("Email cannot be empty")
	}
	if len(email) > 200 {
		return "", shared.NewBadRequestError("Email cannot exceed 200 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", shared.NewBadRequestError("Invalid email format")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewBadRequestError("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewBadRequestError("Password cannot exceed 72 characters")
	}
	return nil
}
