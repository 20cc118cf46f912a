package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	identityapp "github.com/procura/backend/internal/application/identity"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/infrastructure/auth"
	"github.com/procura/backend/internal/interfaces/http/middleware"
)

// Authenticator is the auth service as seen by the HTTP layer
type Authenticator interface {
	Login(ctx context.Context, in identityapp.LoginInput) (*identityapp.TokenResponse, error)
	Refresh(ctx context.Context, in identityapp.RefreshInput) (*identityapp.TokenResponse, error)
	Logout(ctx context.Context, claims *auth.Claims, in identityapp.LogoutInput) error
	Me(ctx context.Context, p *identity.Principal) (*identityapp.UserResponse, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in identityapp.LoginInput
	if !h.BindJSON(c, &in) {
		return
	}
	in.IP = c.ClientIP()

	resp, err := h.authService.Login(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var in identityapp.RefreshInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.authService.Refresh(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout handles POST /auth/logout. The body is optional; when it names the
// refresh token that token is revoked as well.
func (h *AuthHandler) Logout(c *gin.Context) {
	var in identityapp.LogoutInput
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &in) {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), middleware.GetJWTClaims(c), in); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	resp, err := h.authService.Me(c.Request.Context(), principal(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
