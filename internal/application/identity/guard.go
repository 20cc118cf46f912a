package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/procura/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Guard wraps identity.Authorize and records every denial
type Guard struct {
	logger *zap.Logger
}

// NewGuard creates a Guard logging denials to log
func NewGuard(log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{logger: log.Named("guard")}
}

// Require fails with UNAUTHENTICATED for a nil principal and FORBIDDEN when
// the principal's role is not in allowed. The denial is logged at Warn.
func (g *Guard) Require(ctx context.Context, p *identity.Principal, allowed identity.RoleSet, action string) error {
	if p == nil {
		return shared.ErrUnauthenticated
	}
	if err := identity.Authorize(p, allowed); err != nil {
		g.logger.Warn("Role guard denied action",
			zap.String("action", action),
			zap.String("principal_id", p.ID.String()),
			zap.String("role", p.Role.String()),
			zap.Strings("allowed_roles", allowed.Roles()),
			zap.String("request_id", logger.GetRequestID(ctx)),
		)
		return err
	}
	return nil
}

// RequireAuthenticated fails with UNAUTHENTICATED for a nil principal
func RequireAuthenticated(p *identity.Principal) error {
	if p == nil || p.ID == uuid.Nil || p.Role == "" {
		return shared.ErrUnauthenticated
	}
	return nil
}
