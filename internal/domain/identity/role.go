package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the single role carried by a principal
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleApprover   Role = "approver"
	RoleAdmin      Role = "admin"
	RoleRequester  Role = "requester"
	RoleSuperAdmin Role = "super-admin"
)

// AllRoles returns every known role
func AllRoles() []Role {
	return []Role{RoleEmployee, RoleApprover, RoleAdmin, RoleRequester, RoleSuperAdmin}
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleApprover, RoleAdmin, RoleRequester, RoleSuperAdmin:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole normalizes and validates a role name
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// RoleSet is an allowed-role set checked by the guard
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether r is in the set
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Roles returns the members of the set as strings, for logging
func (s RoleSet) Roles() []string {
	out := make([]string, 0, len(s))
	for _, r := range AllRoles() {
		if s.Contains(r) {
			out = append(out, r.String())
		}
	}
	return out
}

var (
	// ReviewerRoles may approve, reject or ask for clarification
	ReviewerRoles = NewRoleSet(RoleApprover, RoleAdmin, RoleSuperAdmin)
	// AdminRoles may delete requests and manage vendors and users
	AdminRoles = NewRoleSet(RoleAdmin, RoleSuperAdmin)
)

// Principal is a verified caller identity.
//
// The role is the one embedded in the credential at issuance time. It is not
// re-read from the user store per call, so a role change only takes effect
// once the user obtains a new token.
type Principal struct {
	ID    uuid.UUID
	Role  Role
	Name  string
	Email string
}

// IsEmployee reports whether the principal's views are scoped to its own requests
func (p *Principal) IsEmployee() bool {
	return p != nil && p.Role == RoleEmployee
}
