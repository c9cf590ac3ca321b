package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptLineInput is one line of incoming supply
type ReceiptLineInput struct {
	ProductID     uuid.UUID `validate:"required"`
	VariationID   uuid.UUID `validate:"required"`
	Quantity      decimal.Decimal
	PurchasePrice decimal.Decimal
	LotNumber     string `validate:"max=64"`
	MfgDate       *time.Time
	ExpDate       *time.Time
}

// ReceiptInput describes a stock receipt at a single location
type ReceiptInput struct {
	LocationID      uuid.UUID          `validate:"required"`
	RefNo           string             `validate:"max=64"`
	TransactionDate time.Time          `validate:"required"`
	AdditionalNotes string             `validate:"max=2000"`
	Lines           []ReceiptLineInput `validate:"required,min=1,dive"`
}

// Validate checks the receipt shape and its quantities
func (in ReceiptInput) Validate() error {
	if err := inputValidator().Struct(in); err != nil {
		return toValidationError(err)
	}
	for i, l := range in.Lines {
		if !l.Quantity.IsPositive() {
			return NewValidationError("line %d: quantity must be positive", i+1)
		}
		if l.PurchasePrice.IsNegative() {
			return NewValidationError("line %d: purchase price cannot be negative", i+1)
		}
		if l.MfgDate != nil && l.ExpDate != nil && l.ExpDate.Before(*l.MfgDate) {
			return NewValidationError("line %d: expiry date is before manufacturing date", i+1)
		}
	}
	return nil
}

// NewReceipt builds a received purchase transaction. Receipts are complete
// on creation; their supply is available to allocation immediately.
func NewReceipt(tenantID, actorID uuid.UUID, in ReceiptInput) (*Transaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx := NewTransaction(tenantID, actorID, KindPurchase, in.LocationID, StatusCompleted, in.RefNo, in.TransactionDate)
	tx.AdditionalNotes = in.AdditionalNotes
	for _, l := range in.Lines {
		line := NewPurchaseLine(tenantID, tx.ID)
		line.ProductID = l.ProductID
		line.VariationID = l.VariationID
		line.Quantity = l.Quantity
		line.PurchasePrice = l.PurchasePrice
		line.LotNumber = l.LotNumber
		line.MfgDate = l.MfgDate
		line.ExpDate = l.ExpDate
		tx.PurchaseLines = append(tx.PurchaseLines, line)
	}
	tx.RecalculateTotals()
	return tx, nil
}
