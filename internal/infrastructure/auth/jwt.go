// Package auth issues and verifies the bearer credentials that carry a
// caller's identity and role.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/procura/backend/internal/infrastructure/config"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Token validation errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrTokenBlacklisted = errors.New("token has been revoked")
)

// Claims are the JWT claims. Role is captured at issuance and is the role
// the verifier reports for the token's whole lifetime.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string    `json:"user_id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// TokenPair represents an access and refresh token pair
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// JWTService signs and verifies tokens with HS256. The secrets are copied
// in at construction and never change afterwards.
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
}

// NewJWTService creates a new JWT service. The refresh secret falls back to
// the access secret when unset.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     []byte(refreshSecret),
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
	}
}

// GenerateTokenPair issues an access token embedding the principal's role
// and a refresh token carrying only the user id.
func (s *JWTService) GenerateTokenPair(p identity.Principal) (*TokenPair, error) {
	now := time.Now()

	accessClaims := &Claims{
		RegisteredClaims: s.registered(p.ID, now, s.accessExpiration),
		UserID:           p.ID.String(),
		Name:             p.Name,
		Email:            p.Email,
		Role:             p.Role.String(),
		TokenType:        TokenTypeAccess,
	}
	accessToken, err := sign(accessClaims, s.accessSecret)
	if err != nil {
		return nil, err
	}

	refreshClaims := &Claims{
		RegisteredClaims: s.registered(p.ID, now, s.refreshExpiration),
		UserID:           p.ID.String(),
		TokenType:        TokenTypeRefresh,
	}
	refreshToken, err := sign(refreshClaims, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(s.accessExpiration),
		RefreshTokenExpiresAt: now.Add(s.refreshExpiration),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) registered(userID uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func sign(claims *Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.validateToken(tokenString, s.accessSecret, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	if _, ok := identity.ParseRole(claims.Role); !ok {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, s.refreshSecret, TokenTypeRefresh)
}

func (s *JWTService) validateToken(tokenString string, secret []byte, expectedType TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != expectedType {
		return nil, ErrInvalidTokenType
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Verify is the credential verifier: it turns a raw bearer token into the
// principal embedded at issuance. It does not consult the user store, so a
// role changed after issuance is only seen once the caller re-authenticates.
// Every failure is an UNAUTHENTICATED domain error.
func (s *JWTService) Verify(raw string) (*identity.Principal, *Claims, error) {
	if raw == "" {
		return nil, nil, shared.NewDomainError(shared.CodeUnauthenticated, "Authorization token is required")
	}
	claims, err := s.ValidateAccessToken(raw)
	if err != nil {
		return nil, nil, UnauthenticatedError(err)
	}
	return claims.Principal(), claims, nil
}

// UnauthenticatedError maps a token validation error to an UNAUTHENTICATED domain error
func UnauthenticatedError(err error) *shared.DomainError {
	msg := "Invalid token"
	switch {
	case errors.Is(err, ErrExpiredToken):
		msg = "Token has expired"
	case errors.Is(err, ErrTokenNotYetValid):
		msg = "Token is not yet valid"
	case errors.Is(err, ErrInvalidTokenType):
		msg = "Invalid token type"
	case errors.Is(err, ErrTokenBlacklisted):
		msg = "Token has been revoked"
	}
	return shared.NewDomainError(shared.CodeUnauthenticated, msg)
}

// Principal builds the principal described by validated claims
func (c *Claims) Principal() *identity.Principal {
	role, _ := identity.ParseRole(c.Role)
	id, _ := uuid.Parse(c.UserID)
	return &identity.Principal{
		ID:    id,
		Role:  role,
		Name:  c.Name,
		Email: c.Email,
	}
}

// GetUserUUID extracts and parses the user ID from claims
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetRemainingTTL returns the remaining time until the token expires
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}
