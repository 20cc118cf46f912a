package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/procura/backend/internal/application/identity"
	"github.com/procura/backend/internal/domain/identity"
)

// UserAdmin is the user management service as seen by the HTTP layer
type UserAdmin interface {
	Create(ctx context.Context, p *identity.Principal, in identityapp.CreateUserInput) (*identityapp.UserResponse, error)
	List(ctx context.Context, p *identity.Principal, q identityapp.ListUsersQuery) (*identityapp.UserListResponse, error)
	ChangeRole(ctx context.Context, p *identity.Principal, id uuid.UUID, in identityapp.ChangeRoleInput) (*identityapp.UserResponse, error)
}

// UserHandler serves /users
type UserHandler struct {
	BaseHandler
	users UserAdmin
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserAdmin) *UserHandler {
	return &UserHandler{users: users}
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var in identityapp.CreateUserInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.users.Create(c.Request.Context(), principal(c), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	var q identityapp.ListUsersQuery
	if !h.BindQuery(c, &q) {
		return
	}
	resp, err := h.users.List(c.Request.Context(), principal(c), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangeRole handles PUT /users/:id/role. The new role reaches the user's
// token at their next login or refresh.
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var in identityapp.ChangeRoleInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.users.ChangeRole(c.Request.Context(), principal(c), pathID(c), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
