package ledger

import (
	"context"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
)

// QuantityFilter narrows a stock query
type QuantityFilter struct {
	shared.Filter
	LocationID  *uuid.UUID
	VariationID *uuid.UUID
	ProductID   *uuid.UUID
}

// QuantityRepository persists ledger rows
type QuantityRepository interface {
	// FindByKey returns shared.ErrNotFound when the row does not exist
	FindByKey(ctx context.Context, key Key) (*VariationLocationQuantity, error)

	// Create inserts a new row; a concurrent insert of the same key surfaces as
	// an optimistic lock failure
	Create(ctx context.Context, q *VariationLocationQuantity) error

	// SaveWithLock writes quantity and cost if the stored version matches
	// q.Version, then bumps q.Version
	SaveWithLock(ctx context.Context, q *VariationLocationQuantity) error

	// List returns rows matching the filter and the total count
	List(ctx context.Context, tenantID uuid.UUID, filter QuantityFilter) ([]VariationLocationQuantity, int64, error)
}

// MovementRepository appends stock movements
type MovementRepository interface {
	Create(ctx context.Context, m *StockMovement) error
	FindBySource(ctx context.Context, tenantID, transactionID uuid.UUID) ([]StockMovement, error)
}
