package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/infrastructure/logger"
	"github.com/procura/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RequireRoles rejects callers whose role is not in allowed before the
// handler runs. It must be mounted after the JWT middleware.
func RequireRoles(allowed identity.RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if err := identity.Authorize(p, allowed); err != nil {
			fields := []zap.Field{
				zap.String("route", c.FullPath()),
				zap.Strings("allowed", allowed.Roles()),
			}
			if p != nil {
				fields = append(fields, zap.String("principal_id", p.ID.String()), zap.String("principal_role", p.Role.String()))
			}
			logger.GetGinLogger(c).Warn("Role guard denied request", fields...)

			status := http.StatusUnauthorized
			code := dto.ErrCodeUnauthenticated
			msg := "Authentication required"
			if p != nil {
				status = http.StatusForbidden
				code = dto.ErrCodeForbidden
				msg = err.Error()
			}
			c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, msg, c.GetString(logger.GinRequestIDKey)))
			return
		}
		c.Next()
	}
}
