package identity

import (
	"context"

	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/procura/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// TokenIssuer issues and validates the credentials handed to clients
type TokenIssuer interface {
	GenerateTokenPair(p identity.Principal) (*auth.TokenPair, error)
	ValidateRefreshToken(token string) (*auth.Claims, error)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo  identity.UserRepository
	tokens    TokenIssuer
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service. A nil blacklist
// makes logout a no-op and refresh tokens reusable until they expire.
func NewAuthService(
	userRepo identity.UserRepository,
	tokens TokenIssuer,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    logger.Named("auth_service"),
	}
}

// Login checks email and password and issues a token pair carrying the
// user's current role.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if shared.CodeOf(err) == shared.CodeNotFound {
			s.logger.Warn("Login for unknown email", zap.String("ip", input.IP))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		s.logger.Warn("Login attempt for inactive account", zap.String("user_id", user.ID.String()))
		return nil, shared.ErrInvalidCredentials
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt",
			zap.String("user_id", user.ID.String()),
			zap.String("ip", input.IP),
		)
		return nil, shared.ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(user.Principal())
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to generate authentication tokens")
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
	)
	return toTokenResponse(pair, user), nil
}

// Refresh exchanges a refresh token for a new pair. The user is re-read so
// the new access token carries the current role. The old refresh token is
// revoked.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (*TokenResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Debug("Refresh token rejected", zap.Error(err))
		return nil, auth.UnauthenticatedError(err)
	}
	if s.revoked(ctx, claims.ID) {
		return nil, auth.UnauthenticatedError(auth.ErrTokenBlacklisted)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, auth.UnauthenticatedError(auth.ErrInvalidClaims)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if shared.CodeOf(err) == shared.CodeNotFound {
			return nil, shared.NewDomainError(shared.CodeUnauthenticated, "User no longer exists")
		}
		return nil, err
	}
	if !user.Active {
		return nil, shared.NewDomainError(shared.CodeUnauthenticated, "Account is no longer active")
	}

	pair, err := s.tokens.GenerateTokenPair(user.Principal())
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to generate authentication tokens")
	}
	s.revoke(ctx, claims.ID, claims)

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))
	return toTokenResponse(pair, nil), nil
}

// Logout revokes the access token described by claims and, when supplied,
// the matching refresh token.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, input LogoutInput) error {
	if claims == nil {
		return shared.ErrUnauthenticated
	}
	s.revoke(ctx, claims.ID, claims)

	if input.RefreshToken != "" {
		refresh, err := s.tokens.ValidateRefreshToken(input.RefreshToken)
		if err == nil && refresh.UserID == claims.UserID {
			s.revoke(ctx, refresh.ID, refresh)
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Me returns the stored profile of the caller
func (s *AuthService) Me(ctx context.Context, p *identity.Principal) (*UserResponse, error) {
	if err := RequireAuthenticated(p); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *AuthService) revoke(ctx context.Context, jti string, claims *auth.Claims) {
	if s.blacklist == nil || jti == "" {
		return
	}
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return
	}
	if err := s.blacklist.AddToBlacklist(ctx, jti, ttl); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("jti", jti), zap.Error(err))
	}
}

// revoked reports false when the blacklist cannot be reached
func (s *AuthService) revoked(ctx context.Context, jti string) bool {
	if s.blacklist == nil || jti == "" {
		return false
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		s.logger.Warn("Token blacklist unavailable", zap.Error(err))
		return false
	}
	return revoked
}
