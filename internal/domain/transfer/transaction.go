package transfer

import (
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the transaction type
type Kind string

const (
	KindSellTransfer     Kind = "sell_transfer"
	KindPurchaseTransfer Kind = "purchase_transfer"
	KindPurchase         Kind = "purchase"
	KindOpeningStock     Kind = "opening_stock"
)

// SupplyKinds are the transaction kinds whose lines can be allocated against
func SupplyKinds() []Kind {
	return []Kind{KindPurchase, KindPurchaseTransfer, KindOpeningStock}
}

// IsPurchaseSide reports whether transactions of this kind carry purchase lines
func (k Kind) IsPurchaseSide() bool {
	return k != KindSellTransfer
}

// Transaction is one side of a transfer, or a stock receipt.
// It is the aggregate root for its lines.
type Transaction struct {
	shared.TenantAggregateRoot
	Kind             Kind
	LocationID       uuid.UUID
	TransferParentID *uuid.UUID
	Status           string
	RefNo            string
	TransactionDate  time.Time
	ShippingCharges  decimal.Decimal
	TotalBeforeTax   decimal.Decimal
	FinalTotal       decimal.Decimal
	AdditionalNotes  string
	SellLines        []SellLine
	PurchaseLines    []PurchaseLine
}

// NewTransaction creates a transaction header without lines
func NewTransaction(tenantID, createdBy uuid.UUID, kind Kind, locationID uuid.UUID, status Status, refNo string, date time.Time) *Transaction {
	return &Transaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, createdBy),
		Kind:                kind,
		LocationID:          locationID,
		Status:              status.StoredValue(kind),
		RefNo:               refNo,
		TransactionDate:     date,
		ShippingCharges:     decimal.Zero,
		TotalBeforeTax:      decimal.Zero,
		FinalTotal:          decimal.Zero,
	}
}

// TransferStatus returns the transfer-level status
func (t *Transaction) TransferStatus() Status {
	return StatusFromStored(t.Status)
}

// SetTransferStatus stores the side-specific status value
func (t *Transaction) SetTransferStatus(s Status) {
	t.Status = s.StoredValue(t.Kind)
	t.Touch()
}

// RecalculateTotals recomputes totals from the current lines
func (t *Transaction) RecalculateTotals() {
	total := decimal.Zero
	if t.Kind.IsPurchaseSide() {
		for i := range t.PurchaseLines {
			total = total.Add(t.PurchaseLines[i].LineTotal())
		}
	} else {
		for i := range t.SellLines {
			total = total.Add(t.SellLines[i].LineTotal())
		}
	}
	t.TotalBeforeTax = total.Round(4)
	t.FinalTotal = total.Add(t.ShippingCharges).Round(4)
}

// EditDeadline returns the last moment the transaction may be edited.
// A zero editDays means no deadline.
func (t *Transaction) EditDeadline(editDays int) (time.Time, bool) {
	if editDays <= 0 {
		return time.Time{}, false
	}
	return t.TransactionDate.AddDate(0, 0, editDays), true
}

// SellLineIDs returns the IDs of all sell lines
func (t *Transaction) SellLineIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.SellLines))
	for i := range t.SellLines {
		ids = append(ids, t.SellLines[i].ID)
	}
	return ids
}

// PurchaseLineIDs returns the IDs of all purchase lines
func (t *Transaction) PurchaseLineIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.PurchaseLines))
	for i := range t.PurchaseLines {
		ids = append(ids, t.PurchaseLines[i].ID)
	}
	return ids
}
