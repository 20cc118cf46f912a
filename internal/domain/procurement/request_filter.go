package procurement

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FilterAll is the sentinel value that disables a department or status filter
const FilterAll = "All"

// DefaultMaxCostSentinel is the upper bound of the unrestricted cost range
var DefaultMaxCostSentinel = decimal.NewFromInt(1_000_000)

// CostRange is an inclusive cost bound
type CostRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// RequestFilter is the predicate used to list requests. Nil fields do not
// filter. A zero PageSize returns every match.
type RequestFilter struct {
	Department  *Department
	Status      *RequestStatus
	CostRange   *CostRange
	RequesterID *uuid.UUID
	Page        int
	PageSize    int
}

// IsPaged reports whether the filter limits the result to one page
func (f RequestFilter) IsPaged() bool {
	return f.PageSize > 0
}

// RestrictToRequester adds a requester condition on top of the other filters
func (f *RequestFilter) RestrictToRequester(id uuid.UUID) {
	f.RequesterID = &id
}

// ParseDepartmentFilter returns nil for an empty or "All" value
func ParseDepartmentFilter(raw string) *Department {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == FilterAll {
		return nil
	}
	d := Department(raw)
	return &d
}

// ParseStatusFilter returns nil for an empty or "All" value
func ParseStatusFilter(raw string) *RequestStatus {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == FilterAll {
		return nil
	}
	s := RequestStatus(raw)
	return &s
}

// ParseCostRange returns a range only when both bounds parse as numbers and
// the range is narrower than [0, sentinel]. A caller sending exactly
// min=0&max=sentinel gets no cost filter at all.
func ParseCostRange(minRaw, maxRaw string, sentinel decimal.Decimal) *CostRange {
	minCost, err := decimal.NewFromString(strings.TrimSpace(minRaw))
	if err != nil {
		return nil
	}
	maxCost, err := decimal.NewFromString(strings.TrimSpace(maxRaw))
	if err != nil {
		return nil
	}
	if !minCost.IsPositive() && !maxCost.LessThan(sentinel) {
		return nil
	}
	return &CostRange{Min: minCost, Max: maxCost}
}

// RequestStats summarizes a filtered set of requests
type RequestStats struct {
	Total         int64
	ByStatus      map[RequestStatus]int64
	ApprovedSpend decimal.Decimal
}

// NewRequestStats returns stats with every status present at zero
func NewRequestStats() *RequestStats {
	byStatus := make(map[RequestStatus]int64, len(AllRequestStatuses()))
	for _, s := range AllRequestStatuses() {
		byStatus[s] = 0
	}
	return &RequestStats{ByStatus: byStatus, ApprovedSpend: decimal.Zero}
}
