package telemetry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const transferMeterName = "stocktransfer/transfer"

// TransferMetrics records transfer outcomes and unit-of-work retries.
type TransferMetrics struct {
	completions metric.Int64Counter
	lines       metric.Int64Counter
	shortfalls  metric.Int64Counter
	retries     metric.Int64Counter
	conflicts   metric.Int64Counter
}

// NewTransferMetrics creates the transfer instruments on meter.
func NewTransferMetrics(meter metric.Meter) (*TransferMetrics, error) {
	m := &TransferMetrics{}
	var err error

	if m.completions, err = meter.Int64Counter("transfer.completions",
		metric.WithDescription("Transfers moved to completed"),
		metric.WithUnit("{transfer}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create transfer.completions counter: %w", err)
	}
	if m.lines, err = meter.Int64Counter("transfer.completed_lines",
		metric.WithDescription("Sell lines moved by completed transfers"),
		metric.WithUnit("{line}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create transfer.completed_lines counter: %w", err)
	}
	if m.shortfalls, err = meter.Int64Counter("transfer.mapping_shortfalls",
		metric.WithDescription("Completions whose supply could not cover every sold quantity"),
		metric.WithUnit("{transfer}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create transfer.mapping_shortfalls counter: %w", err)
	}
	if m.retries, err = meter.Int64Counter("transfer.uow_retries",
		metric.WithDescription("Units of work re-run after an optimistic lock failure"),
		metric.WithUnit("{retry}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create transfer.uow_retries counter: %w", err)
	}
	if m.conflicts, err = meter.Int64Counter("transfer.uow_conflicts",
		metric.WithDescription("Units of work that exhausted their retries"),
		metric.WithUnit("{conflict}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create transfer.uow_conflicts counter: %w", err)
	}
	return m, nil
}

// RecordCompletion counts one completed transfer and its moved lines.
func (m *TransferMetrics) RecordCompletion(ctx context.Context, tenantID uuid.UUID, lines int) {
	attrs := metric.WithAttributes(attribute.String("tenant_id", tenantID.String()))
	m.completions.Add(ctx, 1, attrs)
	m.lines.Add(ctx, int64(lines), attrs)
}

// RecordShortfall counts a completion that left sold quantity unmapped.
func (m *TransferMetrics) RecordShortfall(ctx context.Context, tenantID uuid.UUID) {
	m.shortfalls.Add(ctx, 1, metric.WithAttributes(attribute.String("tenant_id", tenantID.String())))
}

// RecordRetry counts a retried unit of work.
func (m *TransferMetrics) RecordRetry(ctx context.Context, attempt int) {
	m.retries.Add(ctx, 1, metric.WithAttributes(attribute.Int("attempt", attempt)))
}

// RecordConflict counts a unit of work that gave up.
func (m *TransferMetrics) RecordConflict(ctx context.Context) {
	m.conflicts.Add(ctx, 1)
}
