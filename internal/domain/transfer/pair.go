package transfer

import (
	"fmt"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
)

// Pair is a sell_transfer at the origin coupled with its purchase_transfer
// at the destination. Both sides are loaded, saved and deleted together.
type Pair struct {
	Sell     *Transaction
	Purchase *Transaction
}

// LineChanges lists what a line replacement did, so it can be persisted
type LineChanges struct {
	SellAdded       []*SellLine
	SellUpdated     []*SellLine
	SellRemoved     []SellLine
	PurchaseAdded   []*PurchaseLine
	PurchaseUpdated []*PurchaseLine
	PurchaseRemoved []PurchaseLine
}

// IsEmpty reports whether nothing changed
func (c LineChanges) IsEmpty() bool {
	return len(c.SellAdded)+len(c.SellUpdated)+len(c.SellRemoved)+
		len(c.PurchaseAdded)+len(c.PurchaseUpdated)+len(c.PurchaseRemoved) == 0
}

// NewPair builds both transactions of a new transfer. lots holds the purchase
// lines referenced by LotNoLineID so their lot metadata can be copied.
// A new transfer is never created as completed; completion moves stock and
// goes through ChangeStatus.
func NewPair(tenantID, actorID uuid.UUID, in PairInput, lots map[uuid.UUID]*PurchaseLine) (*Pair, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Status.IsCompleted() {
		return nil, NewValidationError("a transfer is created as %s or %s and completed through a status change",
			StatusPending, StatusInTransit)
	}

	sell := NewTransaction(tenantID, actorID, KindSellTransfer, in.OriginLocationID, in.Status, in.RefNo, in.TransactionDate)
	sell.ShippingCharges = in.ShippingCharges
	sell.AdditionalNotes = in.AdditionalNotes

	purchase := NewTransaction(tenantID, actorID, KindPurchaseTransfer, in.DestinationLocationID, in.Status, in.RefNo, in.TransactionDate)
	purchase.ShippingCharges = in.ShippingCharges
	purchase.AdditionalNotes = in.AdditionalNotes
	parentID := sell.ID
	purchase.TransferParentID = &parentID

	p := &Pair{Sell: sell, Purchase: purchase}
	p.ReplaceLines(in.Lines, lots)
	p.Sell.AddDomainEvent(newTransferEvent(EventTypeTransferCreated, p, "", actorID))
	return p, nil
}

// ID returns the transfer id, which is the sell_transfer id
func (p *Pair) ID() uuid.UUID {
	return p.Sell.ID
}

// Status returns the transfer status, read from the sell side
func (p *Pair) Status() Status {
	return p.Sell.TransferStatus()
}

// Validate checks that the two sides belong together
func (p *Pair) Validate() error {
	if p.Sell == nil || p.Purchase == nil {
		return shared.NewDomainError(shared.CodeInvalidState, "transfer is missing one of its transactions")
	}
	if p.Purchase.TransferParentID == nil || *p.Purchase.TransferParentID != p.Sell.ID {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("purchase transfer %s does not belong to %s", p.Purchase.ID, p.Sell.ID))
	}
	return nil
}

// HasDownstreamConsumption reports whether stock received by this transfer
// has itself been allocated to later sales
func (p *Pair) HasDownstreamConsumption() bool {
	for i := range p.Purchase.PurchaseLines {
		if p.Purchase.PurchaseLines[i].IsConsumed() {
			return true
		}
	}
	return false
}

// checkEditWindow fails once transaction_date + editDays has passed
func (p *Pair) checkEditWindow(now time.Time, editDays int) error {
	deadline, ok := p.Sell.EditDeadline(editDays)
	if ok && now.After(deadline) {
		return fmt.Errorf("%w: transfer %s could be edited until %s",
			ErrEditWindowExpired, p.Sell.RefNo, deadline.Format(time.DateOnly))
	}
	return nil
}

// EnsureEditable gates line and header edits
func (p *Pair) EnsureEditable(now time.Time, editDays int) error {
	if err := p.checkEditWindow(now, editDays); err != nil {
		return err
	}
	if p.HasDownstreamConsumption() {
		return NewTransferLockedError("transferred stock has already been consumed")
	}
	if p.Status().IsCompleted() {
		return NewTransferLockedError("completed transfers cannot be edited")
	}
	return nil
}

// EnsureDeletable gates deletion. Completed transfers may be deleted as
// long as none of the received stock has been consumed.
func (p *Pair) EnsureDeletable(now time.Time, editDays int) error {
	if err := p.checkEditWindow(now, editDays); err != nil {
		return err
	}
	if p.HasDownstreamConsumption() {
		return NewTransferLockedError("transferred stock has already been consumed")
	}
	return nil
}

// ApplyHeader updates the editable header fields on both sides
func (p *Pair) ApplyHeader(in PairInput) {
	p.Sell.LocationID = in.OriginLocationID
	p.Purchase.LocationID = in.DestinationLocationID
	for _, t := range []*Transaction{p.Sell, p.Purchase} {
		if in.RefNo != "" {
			t.RefNo = in.RefNo
		}
		t.TransactionDate = in.TransactionDate
		t.ShippingCharges = in.ShippingCharges
		t.AdditionalNotes = in.AdditionalNotes
		t.Touch()
	}
}

// ReplaceLines makes the lines of both sides match the input. Existing lines
// are matched by variation and updated in place so their ids, lot data and
// links survive. Unmatched existing lines are removed.
func (p *Pair) ReplaceLines(lines []LineInput, lots map[uuid.UUID]*PurchaseLine) LineChanges {
	var changes LineChanges

	sellByVariation := make(map[uuid.UUID]int, len(p.Sell.SellLines))
	for i := range p.Sell.SellLines {
		sellByVariation[p.Sell.SellLines[i].VariationID] = i
	}
	purchaseByVariation := make(map[uuid.UUID]int, len(p.Purchase.PurchaseLines))
	for i := range p.Purchase.PurchaseLines {
		purchaseByVariation[p.Purchase.PurchaseLines[i].VariationID] = i
	}

	keptSell := make(map[uuid.UUID]bool, len(lines))
	nextSell := make([]SellLine, 0, len(lines))
	nextPurchase := make([]PurchaseLine, 0, len(lines))

	for _, in := range lines {
		keptSell[in.VariationID] = true

		if idx, ok := sellByVariation[in.VariationID]; ok {
			line := p.Sell.SellLines[idx]
			line.Apply(in)
			nextSell = append(nextSell, line)
		} else {
			nextSell = append(nextSell, NewSellLine(p.Sell.TenantID, p.Sell.ID, in))
		}

		var lot *PurchaseLine
		if in.LotNoLineID != nil {
			lot = lots[*in.LotNoLineID]
		}
		if idx, ok := purchaseByVariation[in.VariationID]; ok {
			line := p.Purchase.PurchaseLines[idx]
			line.ApplyTransferLine(in, lot)
			nextPurchase = append(nextPurchase, line)
		} else {
			line := NewPurchaseLine(p.Purchase.TenantID, p.Purchase.ID)
			line.ApplyTransferLine(in, lot)
			nextPurchase = append(nextPurchase, line)
		}
	}

	for _, old := range p.Sell.SellLines {
		if !keptSell[old.VariationID] {
			changes.SellRemoved = append(changes.SellRemoved, old)
		}
	}
	for _, old := range p.Purchase.PurchaseLines {
		if !keptSell[old.VariationID] {
			changes.PurchaseRemoved = append(changes.PurchaseRemoved, old)
		}
	}

	p.Sell.SellLines = nextSell
	p.Purchase.PurchaseLines = nextPurchase

	for i := range p.Sell.SellLines {
		line := &p.Sell.SellLines[i]
		if _, existed := sellByVariation[line.VariationID]; existed {
			changes.SellUpdated = append(changes.SellUpdated, line)
		} else {
			changes.SellAdded = append(changes.SellAdded, line)
		}
	}
	for i := range p.Purchase.PurchaseLines {
		line := &p.Purchase.PurchaseLines[i]
		if _, existed := purchaseByVariation[line.VariationID]; existed {
			changes.PurchaseUpdated = append(changes.PurchaseUpdated, line)
		} else {
			changes.PurchaseAdded = append(changes.PurchaseAdded, line)
		}
	}

	p.Sell.RecalculateTotals()
	p.Purchase.RecalculateTotals()
	return changes
}

// StockLines returns the sell lines that move stock
func (p *Pair) StockLines() []*SellLine {
	out := make([]*SellLine, 0, len(p.Sell.SellLines))
	for i := range p.Sell.SellLines {
		if p.Sell.SellLines[i].EnableStock {
			out = append(out, &p.Sell.SellLines[i])
		}
	}
	return out
}

// ChangeStatus moves both sides to the target status and reports what the
// caller has to do about it. Stock movement for completion is the caller's job.
func (p *Pair) ChangeStatus(target Status, actorID uuid.UUID) (TransitionKind, error) {
	previous := p.Status()
	kind, err := PlanTransition(previous, target)
	if err != nil || kind == TransitionNoOp {
		return kind, err
	}

	p.Sell.SetTransferStatus(target)
	p.Purchase.SetTransferStatus(target)

	p.Sell.AddDomainEvent(newTransferEvent(EventTypeTransferStatusChanged, p, previous, actorID))
	if kind == TransitionComplete {
		p.Sell.AddDomainEvent(newTransferEvent(EventTypeTransferCompleted, p, previous, actorID))
	}
	return kind, nil
}

// RecordUpdated raises the updated event
func (p *Pair) RecordUpdated(actorID uuid.UUID) {
	p.Sell.AddDomainEvent(newTransferEvent(EventTypeTransferUpdated, p, p.Status(), actorID))
}

// RecordDeleted raises the deleted event
func (p *Pair) RecordDeleted(actorID uuid.UUID) {
	p.Sell.AddDomainEvent(newTransferEvent(EventTypeTransferDeleted, p, p.Status(), actorID))
}

// Snapshot is the before-state written to the activity log
type Snapshot struct {
	ID                    uuid.UUID      `json:"id"`
	RefNo                 string         `json:"ref_no"`
	Status                Status         `json:"status"`
	OriginLocationID      uuid.UUID      `json:"origin_location_id"`
	DestinationLocationID uuid.UUID      `json:"destination_location_id"`
	TransactionDate       time.Time      `json:"transaction_date"`
	FinalTotal            string         `json:"final_total"`
	Lines                 []SnapshotLine `json:"lines"`
}

// SnapshotLine is a line in a Snapshot
type SnapshotLine struct {
	VariationID uuid.UUID `json:"variation_id"`
	Quantity    string    `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
}

// Snapshot captures the current state of the pair
func (p *Pair) Snapshot() Snapshot {
	s := Snapshot{
		ID:                    p.Sell.ID,
		RefNo:                 p.Sell.RefNo,
		Status:                p.Status(),
		OriginLocationID:      p.Sell.LocationID,
		DestinationLocationID: p.Purchase.LocationID,
		TransactionDate:       p.Sell.TransactionDate,
		FinalTotal:            p.Sell.FinalTotal.String(),
		Lines:                 make([]SnapshotLine, 0, len(p.Sell.SellLines)),
	}
	for _, l := range p.Sell.SellLines {
		s.Lines = append(s.Lines, SnapshotLine{
			VariationID: l.VariationID,
			Quantity:    l.Quantity.String(),
			UnitPrice:   l.UnitPrice.String(),
		})
	}
	return s
}
