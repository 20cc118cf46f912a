package procurement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	identityapp "github.com/procura/backend/internal/application/identity"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/procurement"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/procura/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const requestServiceName = "RequestService"

// UserSummaryFinder resolves requester display identities
type UserSummaryFinder interface {
	FindSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]identity.UserSummary, error)
}

// RequestService is the request workflow engine. Every mutation runs the
// same sequence: role guard, load, ownership, state, payload, persist, publish.
type RequestService struct {
	requestRepo    procurement.RequestRepository
	vendorRepo     procurement.VendorRepository
	users          UserSummaryFinder
	eventPublisher shared.EventPublisher
	guard          *identityapp.Guard
	logger         *zap.Logger
}

// NewRequestService creates a new RequestService. A nil publisher disables events.
func NewRequestService(
	requestRepo procurement.RequestRepository,
	vendorRepo procurement.VendorRepository,
	users UserSummaryFinder,
	eventPublisher shared.EventPublisher,
	guard *identityapp.Guard,
	logger *zap.Logger,
) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = identityapp.NewGuard(logger)
	}
	return &RequestService{
		requestRepo:    requestRepo,
		vendorRepo:     vendorRepo,
		users:          users,
		eventPublisher: eventPublisher,
		guard:          guard,
		logger:         logger.Named("request_service"),
	}
}

// Create submits a new Pending request owned by the caller
func (s *RequestService) Create(ctx context.Context, p *identity.Principal, in RequestInput) (*RequestResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, requestServiceName, "Create")
	defer span.End()

	if err := identityapp.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	details, err := in.toDetails()
	if err != nil {
		return nil, err
	}
	if err := s.checkVendor(ctx, in); err != nil {
		return nil, err
	}

	request, err := procurement.NewRequest(p.ID, details)
	if err != nil {
		return nil, err
	}
	labels := telemetry.OperationLabels("create", map[string]string{
		telemetry.ProfilingLabelDepartment: request.Department.String(),
	})
	telemetry.WithProfilingLabels(ctx, labels, func(ctx context.Context) {
		err = s.requestRepo.Create(ctx, request)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logStoreError(ctx, "create", request.ID, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRequestID, request.ID.String(), telemetry.SpanAttrDepartment, request.Department.String())

	s.logger.Info("Request created",
		zap.String("request_id", request.ID.String()),
		zap.String("requester_id", p.ID.String()),
		zap.String("department", request.Department.String()),
	)
	s.publishEvents(ctx, request)
	return s.respond(ctx, request)
}

// Edit replaces the details of a Pending request. Owner only.
func (s *RequestService) Edit(ctx context.Context, p *identity.Principal, id uuid.UUID, in RequestInput) (*RequestResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, requestServiceName, "Edit",
		telemetry.WithAttribute(telemetry.SpanAttrRequestID, id.String()))
	defer span.End()

	if err := identityapp.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := request.EnsureEditable(p.ID); err != nil {
		return nil, err
	}
	details, err := in.toDetails()
	if err != nil {
		return nil, err
	}
	if err := s.checkVendor(ctx, in); err != nil {
		return nil, err
	}
	if err := request.Edit(p.ID, details); err != nil {
		return nil, err
	}
	return s.save(ctx, "edit", request)
}

// Decide approves or rejects a Pending or In Review request. Reviewer roles only.
func (s *RequestService) Decide(ctx context.Context, p *identity.Principal, id uuid.UUID, in DecisionInput) (*RequestResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, requestServiceName, "Decide",
		telemetry.WithAttribute(telemetry.SpanAttrRequestID, id.String()))
	defer span.End()

	if err := s.guard.Require(ctx, p, identity.ReviewerRoles, "decide"); err != nil {
		return nil, err
	}
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := request.Decide(p.ID, procurement.RequestStatus(in.Status)); err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRequestStatus, request.Status.String())
	return s.save(ctx, "decide", request)
}

// RequestClarification sends the request back to its requester with a question.
// Reviewer roles only.
func (s *RequestService) RequestClarification(ctx context.Context, p *identity.Principal, id uuid.UUID, in ClarificationInput) (*RequestResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, requestServiceName, "RequestClarification",
		telemetry.WithAttribute(telemetry.SpanAttrRequestID, id.String()))
	defer span.End()

	if err := s.guard.Require(ctx, p, identity.ReviewerRoles, "request_clarification"); err != nil {
		return nil, err
	}
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := request.RequestClarification(p.ID, in.Notes); err != nil {
		return nil, err
	}
	return s.save(ctx, "request_clarification", request)
}

// Reply answers an outstanding clarification. Owner only.
func (s *RequestService) Reply(ctx context.Context, p *identity.Principal, id uuid.UUID, in ReplyInput) (*RequestResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, requestServiceName, "Reply",
		telemetry.WithAttribute(telemetry.SpanAttrRequestID, id.String()))
	defer span.End()

	if err := identityapp.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := request.Reply(p.ID, in.Reply); err != nil {
		return nil, err
	}
	return s.save(ctx, "reply", request)
}

// Withdraw abandons an open request. Owner only.
func (s *RequestService) Withdraw(ctx context.Context, p *identity.Principal, id uuid.UUID) (*RequestResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, requestServiceName, "Withdraw",
		telemetry.WithAttribute(telemetry.SpanAttrRequestID, id.String()))
	defer span.End()

	if err := identityapp.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := request.Withdraw(p.ID); err != nil {
		return nil, err
	}
	return s.save(ctx, "withdraw", request)
}

// Delete permanently removes a request in any status. Admin roles only.
func (s *RequestService) Delete(ctx context.Context, p *identity.Principal, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, requestServiceName, "Delete",
		telemetry.WithAttribute(telemetry.SpanAttrRequestID, id.String()))
	defer span.End()

	if err := s.guard.Require(ctx, p, identity.AdminRoles, "delete"); err != nil {
		return err
	}
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	request.MarkDeleted(p.ID)
	if err := s.requestRepo.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		s.logStoreError(ctx, "delete", id, err)
		return err
	}

	s.logger.Info("Request deleted",
		zap.String("request_id", id.String()),
		zap.String("actor_id", p.ID.String()),
	)
	s.publishEvents(ctx, request)
	return nil
}

// save persists a mutated request, publishes its events and builds the response
func (s *RequestService) save(ctx context.Context, action string, request *procurement.Request) (*RequestResponse, error) {
	var err error
	labels := telemetry.OperationLabels(action, map[string]string{
		telemetry.ProfilingLabelDepartment: request.Department.String(),
	})
	telemetry.WithProfilingLabels(ctx, labels, func(ctx context.Context) {
		err = s.requestRepo.Update(ctx, request)
	})
	if err != nil {
		s.logStoreError(ctx, action, request.ID, err)
		return nil, err
	}
	s.publishEvents(ctx, request)
	return s.respond(ctx, request)
}

// checkVendor requires a referenced vendor to exist and be active
func (s *RequestService) checkVendor(ctx context.Context, in RequestInput) error {
	vendorID := in.referencedVendor()
	if vendorID == nil {
		return nil
	}
	vendor, err := s.vendorRepo.FindByID(ctx, *vendorID)
	if err != nil {
		if shared.CodeOf(err) == shared.CodeNotFound {
			return shared.NewBadRequestError("Vendor does not exist")
		}
		return err
	}
	if !vendor.Active {
		return shared.NewBadRequestError("Vendor is inactive")
	}
	return nil
}

// publishEvents hands the request's pending events to the bus. Failures are
// logged only; the mutation is already persisted.
func (s *RequestService) publishEvents(ctx context.Context, request *procurement.Request) {
	events := request.GetDomainEvents()
	request.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish request events",
			zap.String("request_id", request.ID.String()),
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
	}
}

func (s *RequestService) respond(ctx context.Context, request *procurement.Request) (*RequestResponse, error) {
	summaries := lookupRequesters(ctx, s.users, s.logger, []*procurement.Request{request})
	resp := ToRequestResponse(request, summaries)
	return &resp, nil
}

func (s *RequestService) logStoreError(ctx context.Context, action string, id uuid.UUID, err error) {
	if shared.CodeOf(err) != shared.CodeStoreError {
		return
	}
	s.logger.Error("Request store failure",
		zap.String("action", action),
		zap.String("request_id", id.String()),
		zap.Error(errorCause(err)),
	)
}

// lookupRequesters loads the requester summaries of requests. A failed lookup
// is logged and yields id-only requesters rather than failing the read.
func lookupRequesters(ctx context.Context, users UserSummaryFinder, log *zap.Logger, requests []*procurement.Request) map[uuid.UUID]identity.UserSummary {
	if users == nil || len(requests) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(requests))
	ids := make([]uuid.UUID, 0, len(requests))
	for _, r := range requests {
		if _, ok := seen[r.RequesterID]; ok {
			continue
		}
		seen[r.RequesterID] = struct{}{}
		ids = append(ids, r.RequesterID)
	}
	summaries, err := users.FindSummaries(ctx, ids)
	if err != nil {
		log.Warn("Failed to load requester summaries", zap.Int("count", len(ids)), zap.Error(err))
		return nil
	}
	return summaries
}

// errorCause returns the driver error wrapped by a StoreError, or err itself
func errorCause(err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) && de.Unwrap() != nil {
		return de.Unwrap()
	}
	return err
}
