package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const dedupTTL = 24 * time.Hour

// Handler delivers transfer notifications pulled off the queue. Delivery is
// a structured log line until a real channel is configured.
type Handler struct {
	store  shared.IdempotencyStore
	logger *zap.Logger
}

// NewHandler constructs a task handler. store may be nil to disable
// redelivery deduplication.
func NewHandler(store shared.IdempotencyStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// ProcessTask implements asynq.Handler.
func (h *Handler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload TransferNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}

	key := "notify:" + payload.EventID.String()
	claimed := false
	if h.store != nil {
		ok, err := h.store.MarkProcessed(ctx, key, dedupTTL)
		if err != nil {
			h.logger.Warn("notification dedup unavailable", zap.String("event_id", payload.EventID.String()), zap.Error(err))
		} else if !ok {
			h.logger.Debug("notification already delivered", zap.String("event_id", payload.EventID.String()))
			return nil
		}
		claimed = ok
	}

	if err := h.deliver(ctx, payload); err != nil {
		if claimed {
			_ = h.store.Release(context.WithoutCancel(ctx), key)
		}
		return err
	}
	return nil
}

func (h *Handler) deliver(ctx context.Context, p TransferNotifyPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.logger.Info("transfer notification delivered",
		zap.String("event_id", p.EventID.String()),
		zap.String("event_type", p.EventType),
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("transfer_id", p.TransferID.String()),
		zap.String("ref_no", p.RefNo),
		zap.String("status", p.Status),
		zap.Int("line_count", p.LineCount),
		zap.String("final_total", p.FinalTotal.StringFixed(4)),
	)
	return nil
}

// WorkerConfig collects what the worker needs to start.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Concurrency int
	Queue       string
	Handler     *Handler
	Logger      *zap.Logger
}

// Worker wraps the asynq server that drains the notification queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewWorker constructs a Worker.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Handler == nil {
		return nil, errors.New("notification worker: handler is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{queueName(cfg.Queue): 1},
		Logger:      cfg.Logger.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			cfg.Logger.Error("notification task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})
	mux := asynq.NewServeMux()
	mux.Handle(TaskTypeTransferNotify, cfg.Handler)

	return &Worker{server: srv, mux: mux, logger: cfg.Logger}, nil
}

// Run processes tasks until ctx is cancelled or the server fails.
func (w *Worker) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()

	select {
	case <-ctx.Done():
		w.logger.Info("stopping notification worker")
		w.server.Shutdown()
		return nil
	case err := <-errCh:
		return err
	}
}
