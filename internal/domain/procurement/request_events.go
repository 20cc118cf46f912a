package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeRequest is the aggregate type for request events
const AggregateTypeRequest = "PurchaseRequest"

// Event type constants
const (
	EventTypeRequestCreated                = "request.created"
	EventTypeRequestUpdated                = "request.updated"
	EventTypeRequestClarificationRequested = "request.clarification_requested"
	EventTypeRequestReplied                = "request.replied"
	EventTypeRequestApproved               = "request.approved"
	EventTypeRequestRejected               = "request.rejected"
	EventTypeRequestWithdrawn              = "request.withdrawn"
	EventTypeRequestDeleted                = "request.deleted"
)

// RequestCreatedEvent is raised when a requester submits a new request
type RequestCreatedEvent struct {
	shared.BaseDomainEvent
	Title       string          `json:"title"`
	Cost        decimal.Decimal `json:"cost"`
	Department  Department      `json:"department"`
	RequesterID uuid.UUID       `json:"requester_id"`
}

// NewRequestCreatedEvent creates a new RequestCreatedEvent
func NewRequestCreatedEvent(r *Request) *RequestCreatedEvent {
	return &RequestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestCreated, AggregateTypeRequest, r.ID, r.RequesterID),
		Title:           r.Title,
		Cost:            r.Cost,
		Department:      r.Department,
		RequesterID:     r.RequesterID,
	}
}

// RequestUpdatedEvent is raised when the requester edits a Pending request
type RequestUpdatedEvent struct {
	shared.BaseDomainEvent
	Title string          `json:"title"`
	Cost  decimal.Decimal `json:"cost"`
}

// NewRequestUpdatedEvent creates a new RequestUpdatedEvent
func NewRequestUpdatedEvent(r *Request, actorID uuid.UUID) *RequestUpdatedEvent {
	return &RequestUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestUpdated, AggregateTypeRequest, r.ID, actorID),
		Title:           r.Title,
		Cost:            r.Cost,
	}
}

// RequestClarificationRequestedEvent is raised when a reviewer asks the requester a question
type RequestClarificationRequestedEvent struct {
	shared.BaseDomainEvent
	FromStatus    RequestStatus `json:"from_status"`
	ReviewerNotes string        `json:"reviewer_notes"`
	RequesterID   uuid.UUID     `json:"requester_id"`
}

// NewRequestClarificationRequestedEvent creates a new RequestClarificationRequestedEvent
func NewRequestClarificationRequestedEvent(r *Request, from RequestStatus, actorID uuid.UUID) *RequestClarificationRequestedEvent {
	return &RequestClarificationRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestClarificationRequested, AggregateTypeRequest, r.ID, actorID),
		FromStatus:      from,
		ReviewerNotes:   r.ReviewerNotes,
		RequesterID:     r.RequesterID,
	}
}

// RequestRepliedEvent is raised when the requester answers a clarification
type RequestRepliedEvent struct {
	shared.BaseDomainEvent
	RequesterReply string `json:"requester_reply"`
}

// NewRequestRepliedEvent creates a new RequestRepliedEvent
func NewRequestRepliedEvent(r *Request, actorID uuid.UUID) *RequestRepliedEvent {
	return &RequestRepliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestReplied, AggregateTypeRequest, r.ID, actorID),
		RequesterReply:  r.RequesterReply,
	}
}

// RequestDecidedEvent is raised on approval or rejection. Its event type is
// request.approved or request.rejected.
type RequestDecidedEvent struct {
	shared.BaseDomainEvent
	FromStatus   RequestStatus   `json:"from_status"`
	Decision     RequestStatus   `json:"decision"`
	ApprovalDate *time.Time      `json:"approval_date,omitempty"`
	RequesterID  uuid.UUID       `json:"requester_id"`
	Cost         decimal.Decimal `json:"cost"`
	Department   Department      `json:"department"`
}

// NewRequestDecidedEvent creates a new RequestDecidedEvent
func NewRequestDecidedEvent(r *Request, from RequestStatus, actorID uuid.UUID) *RequestDecidedEvent {
	eventType := EventTypeRequestRejected
	if r.Status == RequestStatusApproved {
		eventType = EventTypeRequestApproved
	}
	return &RequestDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeRequest, r.ID, actorID),
		FromStatus:      from,
		Decision:        r.Status,
		ApprovalDate:    r.ApprovalDate,
		RequesterID:     r.RequesterID,
		Cost:            r.Cost,
		Department:      r.Department,
	}
}

// RequestWithdrawnEvent is raised when the requester withdraws a request
type RequestWithdrawnEvent struct {
	shared.BaseDomainEvent
	FromStatus RequestStatus `json:"from_status"`
}

// NewRequestWithdrawnEvent creates a new RequestWithdrawnEvent
func NewRequestWithdrawnEvent(r *Request, from RequestStatus, actorID uuid.UUID) *RequestWithdrawnEvent {
	return &RequestWithdrawnEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestWithdrawn, AggregateTypeRequest, r.ID, actorID),
		FromStatus:      from,
	}
}

// RequestDeletedEvent is raised when an admin removes a request
type RequestDeletedEvent struct {
	shared.BaseDomainEvent
	Title       string        `json:"title"`
	Status      RequestStatus `json:"status"`
	RequesterID uuid.UUID     `json:"requester_id"`
}

// NewRequestDeletedEvent creates a new RequestDeletedEvent
func NewRequestDeletedEvent(r *Request, actorID uuid.UUID) *RequestDeletedEvent {
	return &RequestDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestDeleted, AggregateTypeRequest, r.ID, actorID),
		Title:           r.Title,
		Status:          r.Status,
		RequesterID:     r.RequesterID,
	}
}
