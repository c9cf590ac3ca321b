package transfer

import (
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellLine is an outbound line on a sell_transfer
type SellLine struct {
	shared.TenantEntity
	TransactionID      uuid.UUID
	ProductID          uuid.UUID
	VariationID        uuid.UUID
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	LotNoLineID        *uuid.UUID
	SubUnitID          *uuid.UUID
	BaseUnitMultiplier decimal.Decimal
	EnableStock        bool
}

// NewSellLine creates a sell line from validated input
func NewSellLine(tenantID, transactionID uuid.UUID, in LineInput) SellLine {
	line := SellLine{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		TransactionID: transactionID,
	}
	line.Apply(in)
	return line
}

// Apply copies input values onto an existing line, keeping its identity
func (l *SellLine) Apply(in LineInput) {
	l.ProductID = in.ProductID
	l.VariationID = in.VariationID
	l.Quantity = in.Quantity
	l.UnitPrice = in.UnitPrice
	l.LotNoLineID = in.LotNoLineID
	l.SubUnitID = in.SubUnitID
	l.BaseUnitMultiplier = in.multiplier()
	l.EnableStock = in.EnableStock
	l.Touch()
}

// Multiplier returns the base unit multiplier, defaulting to 1
func (l *SellLine) Multiplier() decimal.Decimal {
	if l.BaseUnitMultiplier.IsPositive() {
		return l.BaseUnitMultiplier
	}
	return decimal.NewFromInt(1)
}

// BaseQuantity returns the quantity in base units
func (l *SellLine) BaseQuantity() decimal.Decimal {
	return l.Quantity.Mul(l.Multiplier())
}

// LineTotal returns quantity times unit price
func (l *SellLine) LineTotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}
