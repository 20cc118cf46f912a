package procurement

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	maxAttachments       = 10
	maxAttachmentLength  = 512
	maxConversationText  = 5000
)

// ProposedVendor is a vendor suggested by the requester that is not yet on file
type ProposedVendor struct {
	Name         string
	Website      string
	ContactEmail string
}

// RequestDetails are the requester-owned fields of a request, supplied on
// create and replaced wholesale on edit.
type RequestDetails struct {
	Title          string
	Description    string
	Cost           decimal.Decimal
	Department     Department
	VendorID       *uuid.UUID
	IsNewVendor    bool
	ProposedVendor *ProposedVendor
	CostPerLicense decimal.Decimal
	NumLicenses    int
	Attachments    []string
}

// Request is one purchase ask moving through the approval workflow.
// It is the aggregate root; all status changes go through its methods.
type Request struct {
	shared.BaseAggregateRoot
	Title          string
	Description    string
	Cost           decimal.Decimal
	Department     Department
	RequesterID    uuid.UUID
	VendorID       *uuid.UUID
	IsNewVendor    bool
	ProposedVendor *ProposedVendor
	CostPerLicense decimal.Decimal
	NumLicenses    int
	Attachments    []string
	Status         RequestStatus
	ReviewerNotes  string
	RequesterReply string
	// ApprovalDate is set on entry into Approved and never cleared
	ApprovalDate *time.Time
}

// NewRequest creates a Pending request owned by requesterID
func NewRequest(requesterID uuid.UUID, details RequestDetails) (*Request, error) {
	if requesterID == uuid.Nil {
		return nil, shared.NewBadRequestError("Requester cannot be empty")
	}
	normalized, err := normalizeDetails(details)
	if err != nil {
		return nil, err
	}

	r := &Request{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RequesterID:       requesterID,
		Status:            RequestStatusPending,
	}
	r.applyDetails(normalized)

	r.AddDomainEvent(NewRequestCreatedEvent(r))
	return r, nil
}

// IsOwnedBy reports whether actorID is the requester
func (r *Request) IsOwnedBy(actorID uuid.UUID) bool {
	return r.RequesterID == actorID
}

// EnsureEditable checks ownership then status for an edit, without
// validating or applying a payload.
func (r *Request) EnsureEditable(actorID uuid.UUID) error {
	if !r.IsOwnedBy(actorID) {
		return shared.NewDomainError(shared.CodeUnauthorized, "Only the requester can edit this request")
	}
	if !r.Status.CanEdit() {
		return shared.NewInvalidTransitionError("edit", r.Status.String())
	}
	return nil
}

// Edit replaces the requester-owned details. Only the owner may edit, and
// only while the request is Pending.
func (r *Request) Edit(actorID uuid.UUID, details RequestDetails) error {
	if err := r.EnsureEditable(actorID); err != nil {
		return err
	}
	normalized, err := normalizeDetails(details)
	if err != nil {
		return err
	}

	r.applyDetails(normalized)
	r.Touch()
	r.IncrementVersion()

	r.AddDomainEvent(NewRequestUpdatedEvent(r, actorID))
	return nil
}

// Decide approves or rejects the request. Approval stamps ApprovalDate.
func (r *Request) Decide(actorID uuid.UUID, target RequestStatus) error {
	if !r.Status.CanDecide() {
		return shared.NewInvalidTransitionError("approve or reject", r.Status.String())
	}
	if target != RequestStatusApproved && target != RequestStatusRejected {
		return shared.NewBadRequestError(
			fmt.Sprintf("Status must be '%s' or '%s'", RequestStatusApproved, RequestStatusRejected))
	}

	from := r.Status
	r.Status = target
	if target == RequestStatusApproved {
		now := time.Now()
		r.ApprovalDate = &now
	}
	r.Touch()
	r.IncrementVersion()

	r.AddDomainEvent(NewRequestDecidedEvent(r, from, actorID))
	return nil
}

// RequestClarification sends the request back to the requester with a
// question. Any earlier reply is cleared so it cannot be read as an answer
// to the new question.
func (r *Request) RequestClarification(actorID uuid.UUID, notes string) error {
	if !r.Status.CanRequestClarification() {
		return shared.NewInvalidTransitionError("request clarification for", r.Status.String())
	}
	notes, err := requireText("Reviewer notes", notes)
	if err != nil {
		return err
	}

	from := r.Status
	r.Status = RequestStatusClarificationNeeded
	r.ReviewerNotes = notes
	r.RequesterReply = ""
	r.Touch()
	r.IncrementVersion()

	r.AddDomainEvent(NewRequestClarificationRequestedEvent(r, from, actorID))
	return nil
}

// Reply answers an outstanding clarification and moves the request to In Review
func (r *Request) Reply(actorID uuid.UUID, reply string) error {
	if !r.IsOwnedBy(actorID) {
		return shared.NewDomainError(shared.CodeUnauthorized, "Only the requester can reply to this request")
	}
	if !r.Status.CanReply() {
		return shared.NewInvalidTransitionError("reply to", r.Status.String())
	}
	reply, err := requireText("Reply", reply)
	if err != nil {
		return err
	}

	r.RequesterReply = reply
	r.Status = RequestStatusInReview
	r.Touch()
	r.IncrementVersion()

	r.AddDomainEvent(NewRequestRepliedEvent(r, actorID))
	return nil
}

// Withdraw lets the requester abandon a request that is still open
func (r *Request) Withdraw(actorID uuid.UUID) error {
	if !r.IsOwnedBy(actorID) {
		return shared.NewDomainError(shared.CodeUnauthorized, "Only the requester can withdraw this request")
	}
	if !r.Status.CanWithdraw() {
		return shared.NewInvalidTransitionError("withdraw", r.Status.String())
	}

	from := r.Status
	r.Status = RequestStatusWithdrawn
	r.Touch()
	r.IncrementVersion()

	r.AddDomainEvent(NewRequestWithdrawnEvent(r, from, actorID))
	return nil
}

// MarkDeleted records the deletion event. The repository removes the row.
func (r *Request) MarkDeleted(actorID uuid.UUID) {
	r.AddDomainEvent(NewRequestDeletedEvent(r, actorID))
}

// IsApproved returns true if the request is approved
func (r *Request) IsApproved() bool {
	return r.Status == RequestStatusApproved
}

func (r *Request) applyDetails(d RequestDetails) {
	r.Title = d.Title
	r.Description = d.Description
	r.Cost = d.Cost
	r.Department = d.Department
	r.VendorID = d.VendorID
	r.IsNewVendor = d.IsNewVendor
	r.ProposedVendor = d.ProposedVendor
	r.CostPerLicense = d.CostPerLicense
	r.NumLicenses = d.NumLicenses
	r.Attachments = d.Attachments
}

// normalizeDetails validates details and returns a trimmed copy
func normalizeDetails(d RequestDetails) (RequestDetails, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return d, shared.NewBadRequestError("Title is required")
	}
	if len(title) > maxTitleLength {
		return d, shared.NewBadRequestError(fmt.Sprintf("Title cannot exceed %d characters", maxTitleLength))
	}
	description := strings.TrimSpace(d.Description)
	if description == "" {
		return d, shared.NewBadRequestError("Description is required")
	}
	if len(description) > maxDescriptionLength {
		return d, shared.NewBadRequestError(fmt.Sprintf("Description cannot exceed %d characters", maxDescriptionLength))
	}
	if d.Cost.IsNegative() {
		return d, shared.NewBadRequestError("Cost cannot be negative")
	}
	if !d.Department.IsValid() {
		return d, shared.NewBadRequestError(fmt.Sprintf("Invalid department: '%s'", d.Department))
	}
	if d.CostPerLicense.IsNegative() {
		return d, shared.NewBadRequestError("Cost per license cannot be negative")
	}
	if d.NumLicenses < 0 {
		return d, shared.NewBadRequestError("Number of licenses cannot be negative")
	}

	out := RequestDetails{
		Title:          title,
		Description:    description,
		Cost:           d.Cost,
		Department:     d.Department,
		IsNewVendor:    d.IsNewVendor,
		CostPerLicense: d.CostPerLicense,
		NumLicenses:    d.NumLicenses,
	}

	if d.IsNewVendor {
		pv, err := normalizeProposedVendor(d.ProposedVendor)
		if err != nil {
			return d, err
		}
		out.ProposedVendor = pv
	} else if d.VendorID != nil && *d.VendorID != uuid.Nil {
		id := *d.VendorID
		out.VendorID = &id
	}

	attachments, err := normalizeAttachments(d.Attachments)
	if err != nil {
		return d, err
	}
	out.Attachments = attachments

	return out, nil
}

func normalizeProposedVendor(pv *ProposedVendor) (*ProposedVendor, error) {
	if pv == nil || strings.TrimSpace(pv.Name) == "" {
		return nil, shared.NewBadRequestError("Proposed vendor name is required for a new vendor")
	}
	out := &ProposedVendor{
		Name:         strings.TrimSpace(pv.Name),
		Website:      strings.TrimSpace(pv.Website),
		ContactEmail: strings.ToLower(strings.TrimSpace(pv.ContactEmail)),
	}
	if out.Website != "" {
		u, err := url.Parse(out.Website)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, shared.NewBadRequestError("Proposed vendor website must be an http(s) URL")
		}
	}
	if out.ContactEmail != "" {
		if _, err := mail.ParseAddress(out.ContactEmail); err != nil {
			return nil, shared.NewBadRequestError("Proposed vendor contact email is invalid")
		}
	}
	return out, nil
}

func normalizeAttachments(paths []string) ([]string, error) {
	if len(paths) > maxAttachments {
		return nil, shared.NewBadRequestError(fmt.Sprintf("A request cannot have more than %d attachments", maxAttachments))
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, shared.NewBadRequestError("Attachment path cannot be empty")
		}
		if len(p) > maxAttachmentLength {
			return nil, shared.NewBadRequestError(fmt.Sprintf("Attachment path cannot exceed %d characters", maxAttachmentLength))
		}
		out = append(out, p)
	}
	return out, nil
}

// requireText rejects blank text. The text itself is stored as given.
func requireText(field, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", shared.NewBadRequestError(field + " cannot be empty")
	}
	if len(text) > maxConversationText {
		return "", shared.NewBadRequestError(fmt.Sprintf("%s cannot exceed %d characters", field, maxConversationText))
	}
	return text, nil
}
