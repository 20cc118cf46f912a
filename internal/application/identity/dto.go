package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/infrastructure/auth"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,max=72"`
	IP       string `json:"-"` // client IP for login logging
}

// RefreshInput carries the refresh token to exchange
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutInput revokes the presented access token and, when given, the refresh token
type LogoutInput struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is a freshly issued token pair
type TokenResponse struct {
	AccessToken           string        `json:"accessToken"`
	RefreshToken          string        `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time     `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time     `json:"refreshTokenExpiresAt"`
	TokenType             string        `json:"tokenType"`
	User                  *UserResponse `json:"user,omitempty"`
}

func toTokenResponse(pair *auth.TokenPair, user *identity.User) *TokenResponse {
	resp := &TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
	if user != nil {
		u := ToUserResponse(user)
		resp.User = &u
	}
	return resp
}

// CreateUserInput is the admin payload for a new login
type CreateUserInput struct {
	Name       string `json:"name" binding:"required,max=200"`
	Email      string `json:"email" binding:"required,email,max=200"`
	Password   string `json:"password" binding:"required,min=8,max=72"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department" binding:"max=100"`
}

// ChangeRoleInput assigns a new role to a user
type ChangeRoleInput struct {
	Role string `json:"role" binding:"required"`
}

// ListUsersQuery filters the user list
type ListUsersQuery struct {
	Role     string `form:"role"`
	Keyword  string `form:"keyword" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1"`
}

// UserResponse represents a user in API responses. The password hash never leaves the service.
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	Active     bool      `json:"active"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role.String(),
		Department: u.Department,
		Active:     u.Active,
		Version:    u.Version,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserListResponse is one page of users
type UserListResponse struct {
	Items    []UserResponse `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}
