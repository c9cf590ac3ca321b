package transfer

import (
	"context"
	"fmt"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"go.uber.org/zap"
)

// NotificationHandler forwards committed transfer events to a Notifier.
// Delivery failures are logged; the transfer itself is already committed.
type NotificationHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewNotificationHandler creates a handler for transfer notifications
func NewNotificationHandler(notifier Notifier, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return transfer.NotifiableEventTypes()
}

// Handle queues a notification for the event
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	transferEvent, ok := event.(*transfer.TransferEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", "*transfer.TransferEvent"),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	id, err := h.notifier.Notify(ctx, transferEvent)
	if err != nil {
		h.logger.Warn("transfer notification not sent",
			zap.String("event_type", transferEvent.EventType()),
			zap.String("transfer_id", transferEvent.AggregateID().String()),
			zap.Error(err),
		)
		return nil
	}

	fields := []zap.Field{
		zap.String("event_type", transferEvent.EventType()),
		zap.String("transfer_id", transferEvent.AggregateID().String()),
	}
	if id != nil {
		fields = append(fields, zap.String("delivery_id", *id))
	}
	h.logger.Debug("transfer notification queued", fields...)
	return nil
}

var _ shared.EventHandler = (*NotificationHandler)(nil)
