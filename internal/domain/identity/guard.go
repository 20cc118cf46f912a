package identity

import (
	"fmt"

	"github.com/procura/backend/internal/domain/shared"
)

// Authorize permits the principal when its role is in allowed.
// A nil or roleless principal is always forbidden.
func Authorize(p *Principal, allowed RoleSet) error {
	if p == nil || p.Role == "" {
		return shared.ErrForbidden
	}
	if !allowed.Contains(p.Role) {
		return shared.NewDomainError(shared.CodeForbidden,
			fmt.Sprintf("Role '%s' is not allowed to perform this action", p.Role))
	}
	return nil
}
