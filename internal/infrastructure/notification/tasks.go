package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/erp/stocktransfer/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

const (
	// TaskTypeTransferNotify is the task type for transfer notifications.
	TaskTypeTransferNotify = "transfer:notify"
	// DefaultQueue is used when no queue name is configured.
	DefaultQueue = "notifications"
)

// TransferNotifyPayload is the queued form of a transfer event.
type TransferNotifyPayload struct {
	EventID               uuid.UUID       `json:"event_id"`
	EventType             string          `json:"event_type"`
	OccurredAt            time.Time       `json:"occurred_at"`
	TenantID              uuid.UUID       `json:"tenant_id"`
	TransferID            uuid.UUID       `json:"transfer_id"`
	RefNo                 string          `json:"ref_no"`
	OriginLocationID      uuid.UUID       `json:"origin_location_id"`
	DestinationLocationID uuid.UUID       `json:"destination_location_id"`
	PreviousStatus        string          `json:"previous_status,omitempty"`
	Status                string          `json:"status"`
	LineCount             int             `json:"line_count"`
	FinalTotal            decimal.Decimal `json:"final_total"`
	ActorID               uuid.UUID       `json:"actor_id"`
}

// PayloadFromEvent flattens a transfer event into a task payload.
func PayloadFromEvent(event *transfer.TransferEvent) TransferNotifyPayload {
	return TransferNotifyPayload{
		EventID:               event.EventID(),
		EventType:             event.EventType(),
		OccurredAt:            event.OccurredAt(),
		TenantID:              event.TenantID(),
		TransferID:            event.AggregateID(),
		RefNo:                 event.RefNo,
		OriginLocationID:      event.OriginLocationID,
		DestinationLocationID: event.DestinationLocationID,
		PreviousStatus:        string(event.PreviousStatus),
		Status:                string(event.Status),
		LineCount:             event.LineCount,
		FinalTotal:            event.FinalTotal,
		ActorID:               event.ActorID,
	}
}

// NewTransferNotifyTask constructs an asynq task for payload.
func NewTransferNotifyTask(payload TransferNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal transfer notify payload: %w", err)
	}
	return asynq.NewTask(TaskTypeTransferNotify, data), nil
}

// RedisClientOpt converts the redis settings into asynq connection options.
func RedisClientOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func queueName(q string) string {
	if q == "" {
		return DefaultQueue
	}
	return q
}
