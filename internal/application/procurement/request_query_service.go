package procurement

import (
	"context"

	"github.com/google/uuid"
	identityapp "github.com/procura/backend/internal/application/identity"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/procurement"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/procura/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const queryServiceName = "RequestQueryService"

// RequestQueryService lists and reads requests. Employees only ever see
// their own requests; every other role sees all of them.
type RequestQueryService struct {
	requestRepo     procurement.RequestRepository
	users           UserSummaryFinder
	maxCostSentinel decimal.Decimal
	logger          *zap.Logger
}

// NewRequestQueryService creates a new RequestQueryService. A non-positive
// sentinel falls back to procurement.DefaultMaxCostSentinel.
func NewRequestQueryService(
	requestRepo procurement.RequestRepository,
	users UserSummaryFinder,
	maxCostSentinel decimal.Decimal,
	logger *zap.Logger,
) *RequestQueryService {
	if !maxCostSentinel.IsPositive() {
		maxCostSentinel = procurement.DefaultMaxCostSentinel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestQueryService{
		requestRepo:     requestRepo,
		users:           users,
		maxCostSentinel: maxCostSentinel,
		logger:          logger.Named("request_query"),
	}
}

// List returns the requests matching the query, newest first
func (s *RequestQueryService) List(ctx context.Context, p *identity.Principal, q ListRequestsQuery) (*RequestListResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, queryServiceName, "List")
	defer span.End()

	if err := identityapp.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	filter := s.BuildFilter(p, q)

	requests, total, err := s.requestRepo.FindAll(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrResultCount, len(requests))

	summaries := lookupRequesters(ctx, s.users, s.logger, requests)
	items := make([]RequestResponse, len(requests))
	for i, r := range requests {
		items[i] = ToRequestResponse(r, summaries)
	}

	pageNum, pageSize := filter.Page, filter.PageSize
	if !filter.IsPaged() {
		pageNum, pageSize = 1, len(items)
	}
	page := shared.NewPaginated(items, total, pageNum, pageSize)
	return &RequestListResponse{
		Items:      page.Items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Get returns one request. An employee asking for another user's request
// fails with UNAUTHORIZED.
func (s *RequestQueryService) Get(ctx context.Context, p *identity.Principal, id uuid.UUID) (*RequestResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, queryServiceName, "Get",
		telemetry.WithAttribute(telemetry.SpanAttrRequestID, id.String()))
	defer span.End()

	if err := identityapp.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsEmployee() && !request.IsOwnedBy(p.ID) {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Not authorized to view this request")
	}

	summaries := lookupRequesters(ctx, s.users, s.logger, []*procurement.Request{request})
	resp := ToRequestResponse(request, summaries)
	return &resp, nil
}

// Stats counts the visible requests per status and sums the approved spend.
// It is scoped exactly like List; pagination is ignored.
func (s *RequestQueryService) Stats(ctx context.Context, p *identity.Principal, q ListRequestsQuery) (*RequestStatsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, queryServiceName, "Stats")
	defer span.End()

	if err := identityapp.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	stats, err := s.requestRepo.Stats(ctx, s.BuildFilter(p, q))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	byStatus := make(map[string]int64, len(stats.ByStatus))
	for _, status := range procurement.AllRequestStatuses() {
		byStatus[status.String()] = stats.ByStatus[status]
	}
	return &RequestStatsResponse{
		Total:         stats.Total,
		ByStatus:      byStatus,
		ApprovedSpend: stats.ApprovedSpend,
	}, nil
}

// BuildFilter turns the query into a store filter. "All" and empty values do
// not filter, and the cost range is dropped when it spans [0, sentinel]. An
// employee is always restricted to its own requests on top of the rest.
// Without page or page_size every match is returned.
func (s *RequestQueryService) BuildFilter(p *identity.Principal, q ListRequestsQuery) procurement.RequestFilter {
	filter := procurement.RequestFilter{
		Department: procurement.ParseDepartmentFilter(q.Department),
		Status:     procurement.ParseStatusFilter(q.Status),
		CostRange:  procurement.ParseCostRange(q.MinCost, q.MaxCost, s.maxCostSentinel),
	}
	if q.Page > 0 || q.PageSize > 0 {
		filter.Page, filter.PageSize = shared.NormalizePage(q.Page, q.PageSize)
	}
	if p.IsEmployee() {
		filter.RestrictToRequester(p.ID)
	}
	return filter
}
