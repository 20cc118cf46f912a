package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/procurement"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Request DTOs
// =============================================================================

// ProposedVendorInput is an unlisted vendor suggested by the requester
type ProposedVendorInput struct {
	Name         string `json:"name"`
	Website      string `json:"website"`
	ContactEmail string `json:"contactEmail"`
}

// RequestInput is the payload of create and edit. An edit replaces every field.
// Field rules are enforced by the workflow after the existence, ownership and
// state checks, so the input carries no binding rules.
type RequestInput struct {
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Cost           *decimal.Decimal     `json:"cost"`
	Department     string               `json:"department"`
	VendorID       *uuid.UUID           `json:"vendorId"`
	IsNewVendor    bool                 `json:"isNewVendor"`
	ProposedVendor *ProposedVendorInput `json:"proposedVendor"`
	CostPerLicense *decimal.Decimal     `json:"costPerLicense"`
	NumLicenses    int                  `json:"numLicenses"`
	Attachments    []string             `json:"attachments"`
}

// toDetails converts the payload to domain details. Cost is required; the
// per-license fields default to zero.
func (in RequestInput) toDetails() (procurement.RequestDetails, error) {
	if in.Cost == nil {
		return procurement.RequestDetails{}, shared.NewBadRequestError("Cost is required")
	}
	d := procurement.RequestDetails{
		Title:          in.Title,
		Description:    in.Description,
		Cost:           *in.Cost,
		Department:     procurement.Department(in.Department),
		VendorID:       in.VendorID,
		IsNewVendor:    in.IsNewVendor,
		CostPerLicense: decimal.Zero,
		NumLicenses:    in.NumLicenses,
		Attachments:    in.Attachments,
	}
	if in.CostPerLicense != nil {
		d.CostPerLicense = *in.CostPerLicense
	}
	if in.ProposedVendor != nil {
		d.ProposedVendor = &procurement.ProposedVendor{
			Name:         in.ProposedVendor.Name,
			Website:      in.ProposedVendor.Website,
			ContactEmail: in.ProposedVendor.ContactEmail,
		}
	}
	return d, nil
}

// referencedVendor returns the vendor id that must exist, or nil
func (in RequestInput) referencedVendor() *uuid.UUID {
	if in.IsNewVendor || in.VendorID == nil || *in.VendorID == uuid.Nil {
		return nil
	}
	return in.VendorID
}

// DecisionInput approves or rejects a request. The status is validated by
// the workflow after the state check so a terminal request reports its state.
type DecisionInput struct {
	Status string `json:"status"`
}

// ClarificationInput carries the reviewer's question
type ClarificationInput struct {
	Notes string `json:"notes"`
}

// ReplyInput carries the requester's answer
type ReplyInput struct {
	Reply string `json:"reply"`
}

// ListRequestsQuery is the list and stats filter as received on the query
// string. Department and status values outside their enums are not rejected;
// they match no request.
type ListRequestsQuery struct {
	Department string `form:"department"`
	Status     string `form:"status"`
	MinCost    string `form:"minCost"`
	MaxCost    string `form:"maxCost"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1"`
}

// UserSummaryResponse is the requester identity shown next to a request
type UserSummaryResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ProposedVendorResponse mirrors ProposedVendorInput
type ProposedVendorResponse struct {
	Name         string `json:"name"`
	Website      string `json:"website"`
	ContactEmail string `json:"contactEmail"`
}

// RequestResponse represents a request in API responses
type RequestResponse struct {
	ID             uuid.UUID               `json:"id"`
	Title          string                  `json:"title"`
	Description    string                  `json:"description"`
	Cost           decimal.Decimal         `json:"cost"`
	Department     string                  `json:"department"`
	Requester      UserSummaryResponse     `json:"requester"`
	VendorID       *uuid.UUID              `json:"vendorId,omitempty"`
	IsNewVendor    bool                    `json:"isNewVendor"`
	ProposedVendor *ProposedVendorResponse `json:"proposedVendor,omitempty"`
	CostPerLicense decimal.Decimal         `json:"costPerLicense"`
	NumLicenses    int                     `json:"numLicenses"`
	Attachments    []string                `json:"attachments"`
	Status         string                  `json:"status"`
	ReviewerNotes  string                  `json:"reviewerNotes"`
	RequesterReply string                  `json:"requesterReply"`
	ApprovalDate   *time.Time              `json:"approvalDate,omitempty"`
	Version        int                     `json:"version"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

// ToRequestResponse converts a domain request, populating the requester from
// summaries. An unknown requester keeps only its id.
func ToRequestResponse(r *procurement.Request, summaries map[uuid.UUID]identity.UserSummary) RequestResponse {
	requester := UserSummaryResponse{ID: r.RequesterID}
	if s, ok := summaries[r.RequesterID]; ok {
		requester.Name = s.Name
		requester.Email = s.Email
	}

	attachments := r.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	resp := RequestResponse{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		Cost:           r.Cost,
		Department:     r.Department.String(),
		Requester:      requester,
		VendorID:       r.VendorID,
		IsNewVendor:    r.IsNewVendor,
		CostPerLicense: r.CostPerLicense,
		NumLicenses:    r.NumLicenses,
		Attachments:    attachments,
		Status:         r.Status.String(),
		ReviewerNotes:  r.ReviewerNotes,
		RequesterReply: r.RequesterReply,
		ApprovalDate:   r.ApprovalDate,
		Version:        r.Version,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if pv := r.ProposedVendor; pv != nil {
		resp.ProposedVendor = &ProposedVendorResponse{
			Name:         pv.Name,
			Website:      pv.Website,
			ContactEmail: pv.ContactEmail,
		}
	}
	return resp
}

// RequestListResponse is one page of requests
type RequestListResponse struct {
	Items      []RequestResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// RequestStatsResponse summarizes the requests visible to the caller
type RequestStatsResponse struct {
	Total         int64            `json:"total"`
	ByStatus      map[string]int64 `json:"byStatus"`
	ApprovedSpend decimal.Decimal  `json:"approvedSpend"`
}

// =============================================================================
// Vendor DTOs
// =============================================================================

// VendorInput is the payload of vendor create and update
type VendorInput struct {
	Name         string `json:"name" binding:"required,max=200"`
	Website      string `json:"website" binding:"omitempty,url,max=500"`
	ContactEmail string `json:"contactEmail" binding:"omitempty,email,max=200"`
	Category     string `json:"category" binding:"max=100"`
}

func (in VendorInput) toDetails() procurement.VendorDetails {
	return procurement.VendorDetails{
		Name:         in.Name,
		Website:      in.Website,
		ContactEmail: in.ContactEmail,
		Category:     in.Category,
	}
}

// ListVendorsQuery filters the vendor list
type ListVendorsQuery struct {
	Keyword    string `form:"keyword" binding:"max=100"`
	ActiveOnly bool   `form:"active"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1"`
}

// VendorResponse represents a vendor in API responses
type VendorResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Website      string    `json:"website"`
	ContactEmail string    `json:"contactEmail"`
	Category     string    `json:"category"`
	Active       bool      `json:"active"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToVendorResponse converts a domain vendor
func ToVendorResponse(v *procurement.Vendor) VendorResponse {
	return VendorResponse{
		ID:           v.ID,
		Name:         v.Name,
		Website:      v.Website,
		ContactEmail: v.ContactEmail,
		Category:     v.Category,
		Active:       v.Active,
		Version:      v.Version,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

// VendorListResponse is one page of vendors
type VendorListResponse struct {
	Items    []VendorResponse `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// =============================================================================
// Attachment DTOs
// =============================================================================

// UploadURLInput asks for a presigned upload URL
type UploadURLInput struct {
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required,max=100"`
}

// UploadURLResponse is a presigned PUT target. Key goes into the request's attachments.
type UploadURLResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}
