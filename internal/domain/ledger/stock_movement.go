package ledger

import (
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementReason explains a ledger change
type MovementReason string

const (
	ReasonTransferOut      MovementReason = "transfer_out"
	ReasonTransferIn       MovementReason = "transfer_in"
	ReasonTransferReversal MovementReason = "transfer_reversal"
	ReasonStockReceipt     MovementReason = "stock_receipt"
)

// StockMovement is an append-only record of one ledger change
type StockMovement struct {
	shared.BaseEntity
	TenantID            uuid.UUID
	ProductID           uuid.UUID
	VariationID         uuid.UUID
	LocationID          uuid.UUID
	Delta               decimal.Decimal
	BalanceBefore       decimal.Decimal
	BalanceAfter        decimal.Decimal
	UnitCost            decimal.Decimal
	Reason              MovementReason
	SourceTransactionID *uuid.UUID
	ActorID             *uuid.UUID
}

// NewStockMovement records a change from before to the row's current balance
func NewStockMovement(row *VariationLocationQuantity, before decimal.Decimal, reason MovementReason, source, actor *uuid.UUID) *StockMovement {
	return &StockMovement{
		BaseEntity:          shared.NewBaseEntity(),
		TenantID:            row.TenantID,
		ProductID:           row.ProductID,
		VariationID:         row.VariationID,
		LocationID:          row.LocationID,
		Delta:               row.Quantity.Sub(before),
		BalanceBefore:       before,
		BalanceAfter:        row.Quantity,
		UnitCost:            row.AverageCost,
		Reason:              reason,
		SourceTransactionID: source,
		ActorID:             actor,
	}
}
