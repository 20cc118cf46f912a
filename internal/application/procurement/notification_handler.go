package procurement

import (
	"context"

	"github.com/procura/backend/internal/domain/procurement"
	"github.com/procura/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NotificationHandler turns workflow events into notifications for the
// requester or the reviewers. Delivery is a structured log record.
type NotificationHandler struct {
	logger *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{logger: logger.Named("notifications")}
}

// EventTypes returns the request events that notify someone
func (h *NotificationHandler) EventTypes() []string {
	return []string{
		procurement.EventTypeRequestCreated,
		procurement.EventTypeRequestClarificationRequested,
		procurement.EventTypeRequestReplied,
		procurement.EventTypeRequestApproved,
		procurement.EventTypeRequestRejected,
		procurement.EventTypeRequestWithdrawn,
	}
}

// Handle logs who should be told about event
func (h *NotificationHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("request_id", event.AggregateID().String()),
		zap.String("actor_id", event.ActorID().String()),
	}

	switch e := event.(type) {
	case *procurement.RequestCreatedEvent:
		h.logger.Info("Notify reviewers",
			append(fields, zap.String("title", e.Title), zap.String("department", e.Department.String()))...)
	case *procurement.RequestRepliedEvent:
		h.logger.Info("Notify reviewers", fields...)
	case *procurement.RequestWithdrawnEvent:
		h.logger.Info("Notify reviewers", append(fields, zap.String("from_status", e.FromStatus.String()))...)
	case *procurement.RequestClarificationRequestedEvent:
		h.logger.Info("Notify requester",
			append(fields, zap.String("requester_id", e.RequesterID.String()), zap.String("reviewer_notes", e.ReviewerNotes))...)
	case *procurement.RequestDecidedEvent:
		h.logger.Info("Notify requester",
			append(fields, zap.String("requester_id", e.RequesterID.String()), zap.String("decision", e.Decision.String()))...)
	default:
		h.logger.Debug("No notification for event", fields...)
	}
	return nil
}
