package telemetry

import (
	"context"

	"github.com/procura/backend/internal/domain/procurement"
	"github.com/procura/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
)

// WorkflowMetrics counts request lifecycle events. It subscribes to the
// event bus, so it only sees changes that were persisted.
type WorkflowMetrics struct {
	transitions   *Counter
	created       *Counter
	approvedSpend *FloatCounter
}

// NewWorkflowMetrics creates the workflow instruments on meter
func NewWorkflowMetrics(meter metric.Meter) (*WorkflowMetrics, error) {
	transitions, err := NewCounter(meter,
		"procura_request_events_total",
		"Purchase request lifecycle events by type",
		"{event}")
	if err != nil {
		return nil, err
	}
	created, err := NewCounter(meter,
		"procura_requests_created_total",
		"Purchase requests submitted by department",
		"{request}")
	if err != nil {
		return nil, err
	}
	approvedSpend, err := NewFloatCounter(meter,
		"procura_approved_spend_total",
		"Total cost of approved purchase requests by department",
		"{currency}")
	if err != nil {
		return nil, err
	}
	return &WorkflowMetrics{
		transitions:   transitions,
		created:       created,
		approvedSpend: approvedSpend,
	}, nil
}

// Handle implements shared.EventHandler
func (m *WorkflowMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.transitions.Inc(ctx, AttrEventType.String(event.EventType()))

	switch e := event.(type) {
	case *procurement.RequestCreatedEvent:
		m.created.Inc(ctx, AttrDepartment.String(string(e.Department)))
	case *procurement.RequestDecidedEvent:
		if e.Decision == procurement.RequestStatusApproved {
			amount, _ := e.Cost.Float64()
			m.approvedSpend.Add(ctx, amount, AttrDepartment.String(string(e.Department)))
		}
	}
	return nil
}

// EventTypes implements shared.EventHandler. Empty means every event.
func (m *WorkflowMetrics) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*WorkflowMetrics)(nil)
