package notification

import (
	"context"
	"errors"
	"fmt"

	apptransfer "github.com/erp/stocktransfer/internal/application/transfer"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/hibiken/asynq"
)

// AsynqNotifier queues transfer notifications for the worker.
type AsynqNotifier struct {
	client   *asynq.Client
	queue    string
	maxRetry int
}

// NewAsynqNotifier constructs a notifier that enqueues onto queue.
func NewAsynqNotifier(client *asynq.Client, queue string, maxRetry int) *AsynqNotifier {
	return &AsynqNotifier{client: client, queue: queueName(queue), maxRetry: maxRetry}
}

// Notify enqueues a transfer:notify task keyed by the event id, so a repeated
// publish of one event queues a single task. It returns the task id.
func (n *AsynqNotifier) Notify(ctx context.Context, event *transfer.TransferEvent) (*string, error) {
	task, err := NewTransferNotifyTask(PayloadFromEvent(event))
	if err != nil {
		return nil, err
	}

	taskID := event.EventID().String()
	opts := []asynq.Option{asynq.Queue(n.queue), asynq.TaskID(taskID)}
	if n.maxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(n.maxRetry))
	}

	info, err := n.client.EnqueueContext(ctx, task, opts...)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict):
		return &taskID, nil
	case err != nil:
		return nil, fmt.Errorf("enqueue %s: %w", TaskTypeTransferNotify, err)
	}
	return &info.ID, nil
}

// Close releases the underlying client.
func (n *AsynqNotifier) Close() error {
	return n.client.Close()
}

var _ apptransfer.Notifier = (*AsynqNotifier)(nil)
