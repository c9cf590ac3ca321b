package transfer

import (
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeTransfer is the aggregate type for transfer events
const AggregateTypeTransfer = "StockTransfer"

// Event type constants
const (
	EventTypeTransferCreated       = "transfer.created"
	EventTypeTransferUpdated       = "transfer.updated"
	EventTypeTransferStatusChanged = "transfer.status_changed"
	EventTypeTransferCompleted     = "transfer.completed"
	EventTypeTransferDeleted       = "transfer.deleted"
)

// TransferEvent is the payload shared by all transfer events
type TransferEvent struct {
	shared.EventHeader
	RefNo                 string          `json:"ref_no"`
	OriginLocationID      uuid.UUID       `json:"origin_location_id"`
	DestinationLocationID uuid.UUID       `json:"destination_location_id"`
	PreviousStatus        Status          `json:"previous_status,omitempty"`
	Status                Status          `json:"status"`
	LineCount             int             `json:"line_count"`
	FinalTotal            decimal.Decimal `json:"final_total"`
	ActorID               uuid.UUID       `json:"actor_id"`
}

func newTransferEvent(eventType string, p *Pair, previous Status, actorID uuid.UUID) *TransferEvent {
	return &TransferEvent{
		EventHeader:       shared.NewEventHeader(eventType, AggregateTypeTransfer, p.Sell.ID, p.Sell.TenantID),
		RefNo:                 p.Sell.RefNo,
		OriginLocationID:      p.Sell.LocationID,
		DestinationLocationID: p.Purchase.LocationID,
		PreviousStatus:        previous,
		Status:                p.Status(),
		LineCount:             len(p.Sell.SellLines),
		FinalTotal:            p.Sell.FinalTotal,
		ActorID:               actorID,
	}
}

// NotifiableEventTypes are the events that trigger an outbound notification
func NotifiableEventTypes() []string {
	return []string{EventTypeTransferCreated, EventTypeTransferCompleted, EventTypeTransferDeleted}
}
