package transfer

import (
	"fmt"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseLine is a supply line. Its quantity is in base units and
// QuantitySold tracks how much has been allocated to sell lines.
type PurchaseLine struct {
	shared.TenantEntity
	TransactionID uuid.UUID
	ProductID     uuid.UUID
	VariationID   uuid.UUID
	Quantity      decimal.Decimal
	PurchasePrice decimal.Decimal
	QuantitySold  decimal.Decimal
	LotNumber     string
	MfgDate       *time.Time
	ExpDate       *time.Time
	SubUnitID     *uuid.UUID
	Version       int
}

// NewPurchaseLine creates an empty purchase line for a transaction
func NewPurchaseLine(tenantID, transactionID uuid.UUID) PurchaseLine {
	return PurchaseLine{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		TransactionID: transactionID,
		Quantity:      decimal.Zero,
		PurchasePrice: decimal.Zero,
		QuantitySold:  decimal.Zero,
		Version:       1,
	}
}

// ApplyTransferLine fills the line from the matching sell-side input.
// Quantity is converted to base units and the price divided accordingly.
// When the input references a lot, its lot metadata is copied.
func (l *PurchaseLine) ApplyTransferLine(in LineInput, lot *PurchaseLine) {
	m := in.multiplier()
	l.ProductID = in.ProductID
	l.VariationID = in.VariationID
	l.Quantity = in.Quantity.Mul(m)
	l.PurchasePrice = in.UnitPrice.Div(m).Round(4)
	l.SubUnitID = in.SubUnitID
	if lot != nil {
		l.LotNumber = lot.LotNumber
		l.MfgDate = lot.MfgDate
		l.ExpDate = lot.ExpDate
	} else {
		l.LotNumber = ""
		l.MfgDate = nil
		l.ExpDate = nil
	}
	l.Touch()
}

// Available returns the unallocated quantity
func (l *PurchaseLine) Available() decimal.Decimal {
	return l.Quantity.Sub(l.QuantitySold)
}

// IsConsumed reports whether any of this line has been allocated downstream
func (l *PurchaseLine) IsConsumed() bool {
	return l.QuantitySold.IsPositive()
}

// Allocate records qty as sold from this line
func (l *PurchaseLine) Allocate(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return NewValidationError("allocation quantity must be positive")
	}
	if qty.GreaterThan(l.Available()) {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("purchase line %s has %s available, %s requested", l.ID, l.Available(), qty))
	}
	l.QuantitySold = l.QuantitySold.Add(qty)
	l.Touch()
	return nil
}

// Release returns qty previously allocated from this line
func (l *PurchaseLine) Release(qty decimal.Decimal) {
	l.QuantitySold = l.QuantitySold.Sub(qty)
	if l.QuantitySold.IsNegative() {
		l.QuantitySold = decimal.Zero
	}
	l.Touch()
}

// LineTotal returns quantity times purchase price
func (l *PurchaseLine) LineTotal() decimal.Decimal {
	return l.Quantity.Mul(l.PurchasePrice)
}
