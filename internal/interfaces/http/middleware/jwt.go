package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/procura/backend/internal/infrastructure/auth"
	"github.com/procura/backend/internal/infrastructure/logger"
	"github.com/procura/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey    = "jwt_claims"
	JWTPrincipalKey = "jwt_principal"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// Verifier turns a raw bearer token into a principal. *auth.JWTService implements it.
type Verifier interface {
	Verify(raw string) (*identity.Principal, *auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// Verifier is required for token validation
	Verifier Verifier
	// TokenBlacklist is optional for checking revoked tokens
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(verifier Verifier) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		Verifier: verifier,
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(verifier Verifier) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(verifier))
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config.
// On success the principal and claims are stored on the gin context and the
// request logger is enriched with the caller's id and role.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthenticated(c, log, "Authorization token is required")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthenticated(c, log, "Invalid authorization header format")
			return
		}

		principal, claims, err := cfg.Verifier.Verify(strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix)))
		if err != nil {
			abortUnauthenticated(c, log, err.Error())
			return
		}

		if cfg.TokenBlacklist != nil && claims.ID != "" {
			blacklisted, err := cfg.TokenBlacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// Fail open: the token itself is valid
				log.Error("Failed to check token blacklist",
					zap.String("jti", claims.ID),
					zap.Error(err))
			} else if blacklisted {
				abortUnauthenticated(c, log, auth.UnauthenticatedError(auth.ErrTokenBlacklisted).Message)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTPrincipalKey, principal)

		ctx, _ := logger.WithPrincipal(c.Request.Context(), logger.GetGinLogger(c), claims.UserID, claims.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, log *zap.Logger, message string) {
	log.Warn("JWT authentication failed",
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.FromDomainCode(shared.CodeUnauthenticated), message, c.GetString(logger.GinRequestIDKey)))
}

// GetPrincipal retrieves the verified principal from gin.Context
func GetPrincipal(c *gin.Context) *identity.Principal {
	if v, exists := c.Get(JWTPrincipalKey); exists {
		if p, ok := v.(*identity.Principal); ok {
			return p
		}
	}
	return nil
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}
