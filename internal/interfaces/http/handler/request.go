package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	procurementapp "github.com/procura/backend/internal/application/procurement"
	"github.com/procura/backend/internal/domain/identity"
)

// RequestCommands is the workflow engine as seen by the HTTP layer
type RequestCommands interface {
	Create(ctx context.Context, p *identity.Principal, in procurementapp.RequestInput) (*procurementapp.RequestResponse, error)
	Edit(ctx context.Context, p *identity.Principal, id uuid.UUID, in procurementapp.RequestInput) (*procurementapp.RequestResponse, error)
	Decide(ctx context.Context, p *identity.Principal, id uuid.UUID, in procurementapp.DecisionInput) (*procurementapp.RequestResponse, error)
	RequestClarification(ctx context.Context, p *identity.Principal, id uuid.UUID, in procurementapp.ClarificationInput) (*procurementapp.RequestResponse, error)
	Reply(ctx context.Context, p *identity.Principal, id uuid.UUID, in procurementapp.ReplyInput) (*procurementapp.RequestResponse, error)
	Withdraw(ctx context.Context, p *identity.Principal, id uuid.UUID) (*procurementapp.RequestResponse, error)
	Delete(ctx context.Context, p *identity.Principal, id uuid.UUID) error
}

// RequestQueries is the read side
type RequestQueries interface {
	List(ctx context.Context, p *identity.Principal, q procurementapp.ListRequestsQuery) (*procurementapp.RequestListResponse, error)
	Get(ctx context.Context, p *identity.Principal, id uuid.UUID) (*procurementapp.RequestResponse, error)
	Stats(ctx context.Context, p *identity.Principal, q procurementapp.ListRequestsQuery) (*procurementapp.RequestStatsResponse, error)
}

// UploadURLIssuer hands out presigned attachment upload targets
type UploadURLIssuer interface {
	CreateUploadURL(ctx context.Context, p *identity.Principal, in procurementapp.UploadURLInput) (*procurementapp.UploadURLResponse, error)
}

// RequestHandler serves /requests
type RequestHandler struct {
	BaseHandler
	commands    RequestCommands
	queries     RequestQueries
	attachments UploadURLIssuer
}

// NewRequestHandler creates a new RequestHandler
func NewRequestHandler(commands RequestCommands, queries RequestQueries, attachments UploadURLIssuer) *RequestHandler {
	return &RequestHandler{
		commands:    commands,
		queries:     queries,
		attachments: attachments,
	}
}

// Create handles POST /requests
func (h *RequestHandler) Create(c *gin.Context) {
	var in procurementapp.RequestInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.commands.Create(c.Request.Context(), principal(c), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /requests
func (h *RequestHandler) List(c *gin.Context) {
	var q procurementapp.ListRequestsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	resp, err := h.queries.List(c.Request.Context(), principal(c), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Stats handles GET /requests/stats. It takes the same filters as List.
func (h *RequestHandler) Stats(c *gin.Context) {
	var q procurementapp.ListRequestsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	resp, err := h.queries.Stats(c.Request.Context(), principal(c), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get handles GET /requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	resp, err := h.queries.Get(c.Request.Context(), principal(c), pathID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Edit handles PUT /requests/:id
func (h *RequestHandler) Edit(c *gin.Context) {
	var in procurementapp.RequestInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.commands.Edit(c.Request.Context(), principal(c), pathID(c), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Decide handles PUT /requests/:id/status
func (h *RequestHandler) Decide(c *gin.Context) {
	var in procurementapp.DecisionInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.commands.Decide(c.Request.Context(), principal(c), pathID(c), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RequestClarification handles PUT /requests/:id/clarify
func (h *RequestHandler) RequestClarification(c *gin.Context) {
	var in procurementapp.ClarificationInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.commands.RequestClarification(c.Request.Context(), principal(c), pathID(c), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reply handles PUT /requests/:id/reply
func (h *RequestHandler) Reply(c *gin.Context) {
	var in procurementapp.ReplyInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.commands.Reply(c.Request.Context(), principal(c), pathID(c), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Withdraw handles PUT /requests/:id/withdraw
func (h *RequestHandler) Withdraw(c *gin.Context) {
	resp, err := h.commands.Withdraw(c.Request.Context(), principal(c), pathID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /requests/:id
func (h *RequestHandler) Delete(c *gin.Context) {
	if err := h.commands.Delete(c.Request.Context(), principal(c), pathID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateUploadURL handles POST /requests/attachments/upload-url
func (h *RequestHandler) CreateUploadURL(c *gin.Context) {
	var in procurementapp.UploadURLInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.attachments.CreateUploadURL(c.Request.Context(), principal(c), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
