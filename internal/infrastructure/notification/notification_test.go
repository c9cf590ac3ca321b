package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/erp/stocktransfer/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newEvent() *transfer.TransferEvent {
	tenantID := uuid.New()
	return &transfer.TransferEvent{
		EventHeader:       shared.NewEventHeader(transfer.EventTypeTransferCompleted, transfer.AggregateTypeTransfer, uuid.New(), tenantID),
		RefNo:                 "ST2026/0001",
		OriginLocationID:      uuid.New(),
		DestinationLocationID: uuid.New(),
		PreviousStatus:        transfer.StatusInTransit,
		Status:                transfer.StatusCompleted,
		LineCount:             2,
		FinalTotal:            decimal.RequireFromString("125.50"),
		ActorID:               uuid.New(),
	}
}

func TestAsynqNotifier_Notify(t *testing.T) {
	mr := miniredis.RunT(t)
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	notifier := NewAsynqNotifier(client, "", 3)
	t.Cleanup(func() { _ = notifier.Close() })

	event := newEvent()
	ctx := context.Background()

	id, err := notifier.Notify(ctx, event)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, event.EventID().String(), *id)

	again, err := notifier.Notify(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, *id, *again)

	pending, err := mr.List("asynq:{" + DefaultQueue + "}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1, "duplicate publish queues one task")
}

func TestAsynqNotifier_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewAsynqNotifier(client, "notifications", 0).Notify(context.Background(), newEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), TaskTypeTransferNotify)
}

func TestPayloadFromEvent(t *testing.T) {
	event := newEvent()
	p := PayloadFromEvent(event)

	assert.Equal(t, event.EventID(), p.EventID)
	assert.Equal(t, event.AggregateID(), p.TransferID)
	assert.Equal(t, event.TenantID(), p.TenantID)
	assert.Equal(t, "in_transit", p.PreviousStatus)
	assert.Equal(t, "completed", p.Status)
	assert.True(t, p.FinalTotal.Equal(decimal.RequireFromString("125.5")))
}

func TestHandler_ProcessTask(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	h := NewHandler(store, zap.New(core))

	task, err := NewTransferNotifyTask(PayloadFromEvent(newEvent()))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, h.ProcessTask(ctx, task))
	require.NoError(t, h.ProcessTask(ctx, task))

	delivered := logs.FilterMessage("transfer notification delivered").All()
	require.Len(t, delivered, 1, "redelivery is deduplicated")
	assert.Equal(t, "ST2026/0001", delivered[0].ContextMap()["ref_no"])
	assert.Equal(t, "125.5000", delivered[0].ContextMap()["final_total"])
}

func TestHandler_BadPayloadSkipsRetry(t *testing.T) {
	h := NewHandler(nil, nil)
	err := h.ProcessTask(context.Background(), asynq.NewTask(TaskTypeTransferNotify, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandler_CancelledContextReleasesClaim(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	h := NewHandler(store, nil)

	payload := PayloadFromEvent(newEvent())
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, h.ProcessTask(ctx, asynq.NewTask(TaskTypeTransferNotify, data)), context.Canceled)

	claimed, err := store.IsProcessed(context.Background(), "notify:"+payload.EventID.String())
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestNewWorker_RequiresHandler(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "localhost:0"}})
	require.Error(t, err)
}
