package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	procurementapp "github.com/procura/backend/internal/application/procurement"
	"github.com/procura/backend/internal/domain/identity"
)

// VendorManager is the vendor service as seen by the HTTP layer
type VendorManager interface {
	Create(ctx context.Context, p *identity.Principal, in procurementapp.VendorInput) (*procurementapp.VendorResponse, error)
	Update(ctx context.Context, p *identity.Principal, id uuid.UUID, in procurementapp.VendorInput) (*procurementapp.VendorResponse, error)
	Deactivate(ctx context.Context, p *identity.Principal, id uuid.UUID) (*procurementapp.VendorResponse, error)
	Get(ctx context.Context, p *identity.Principal, id uuid.UUID) (*procurementapp.VendorResponse, error)
	List(ctx context.Context, p *identity.Principal, q procurementapp.ListVendorsQuery) (*procurementapp.VendorListResponse, error)
}

// VendorHandler serves /vendors
type VendorHandler struct {
	BaseHandler
	vendors VendorManager
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(vendors VendorManager) *VendorHandler {
	return &VendorHandler{vendors: vendors}
}

// List handles GET /vendors
func (h *VendorHandler) List(c *gin.Context) {
	var q procurementapp.ListVendorsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	resp, err := h.vendors.List(c.Request.Context(), principal(c), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get handles GET /vendors/:id
func (h *VendorHandler) Get(c *gin.Context) {
	resp, err := h.vendors.Get(c.Request.Context(), principal(c), pathID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create handles POST /vendors
func (h *VendorHandler) Create(c *gin.Context) {
	var in procurementapp.VendorInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.vendors.Create(c.Request.Context(), principal(c), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update handles PUT /vendors/:id
func (h *VendorHandler) Update(c *gin.Context) {
	var in procurementapp.VendorInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.vendors.Update(c.Request.Context(), principal(c), pathID(c), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate handles DELETE /vendors/:id. Vendors are never removed since
// existing requests may reference them.
func (h *VendorHandler) Deactivate(c *gin.Context) {
	resp, err := h.vendors.Deactivate(c.Request.Context(), principal(c), pathID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
