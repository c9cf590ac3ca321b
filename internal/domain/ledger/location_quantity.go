package ledger

import (
	"fmt"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Key identifies one ledger row
type Key struct {
	TenantID    uuid.UUID
	ProductID   uuid.UUID
	VariationID uuid.UUID
	LocationID  uuid.UUID
}

// String returns a compact representation for logs
func (k Key) String() string {
	return fmt.Sprintf("%s/%s@%s", k.ProductID, k.VariationID, k.LocationID)
}

// VariationLocationQuantity is the on-hand quantity of a variation at a location
type VariationLocationQuantity struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	ProductID   uuid.UUID
	VariationID uuid.UUID
	LocationID  uuid.UUID
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
	Version     int
}

// NewVariationLocationQuantity creates an empty ledger row
func NewVariationLocationQuantity(key Key) *VariationLocationQuantity {
	return &VariationLocationQuantity{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    key.TenantID,
		ProductID:   key.ProductID,
		VariationID: key.VariationID,
		LocationID:  key.LocationID,
		Quantity:    decimal.Zero,
		AverageCost: decimal.Zero,
		Version:     1,
	}
}

// Key returns the row key
func (q *VariationLocationQuantity) Key() Key {
	return Key{TenantID: q.TenantID, ProductID: q.ProductID, VariationID: q.VariationID, LocationID: q.LocationID}
}

// Decrease removes qty. Without allowOverselling the balance may not go negative.
func (q *VariationLocationQuantity) Decrease(qty decimal.Decimal, allowOverselling bool) error {
	if !qty.IsPositive() {
		return shared.NewDomainError(shared.CodeValidation, "decrease quantity must be positive")
	}
	next := q.Quantity.Sub(qty)
	if next.IsNegative() && !allowOverselling {
		return NewInsufficientStockError(q.Key(), q.Quantity, qty)
	}
	q.Quantity = next
	q.Touch()
	return nil
}

// Increase adds qty
func (q *VariationLocationQuantity) Increase(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError(shared.CodeValidation, "increase quantity must be positive")
	}
	q.Quantity = q.Quantity.Add(qty)
	q.Touch()
	return nil
}

// NewInsufficientStockError builds an INSUFFICIENT_STOCK error for a ledger row
func NewInsufficientStockError(key Key, available, requested decimal.Decimal) *shared.DomainError {
	return shared.NewDomainError(shared.CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for variation %s at location %s: available %s, requested %s",
			key.VariationID, key.LocationID, available.String(), requested.String()))
}
