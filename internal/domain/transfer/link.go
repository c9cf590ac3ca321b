package transfer

import (
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellPurchaseLink records how much of a sell line was drawn from a purchase line
type SellPurchaseLink struct {
	shared.TenantEntity
	SellLineID     uuid.UUID
	PurchaseLineID uuid.UUID
	Quantity       decimal.Decimal
}

// NewSellPurchaseLink creates a link
func NewSellPurchaseLink(tenantID, sellLineID, purchaseLineID uuid.UUID, qty decimal.Decimal) *SellPurchaseLink {
	return &SellPurchaseLink{
		TenantEntity:   shared.NewTenantEntity(tenantID),
		SellLineID:     sellLineID,
		PurchaseLineID: purchaseLineID,
		Quantity:       qty,
	}
}

// LinkBook indexes existing links so allocations can extend a link
// instead of creating a duplicate for the same sell/purchase pair.
type LinkBook struct {
	tenantID uuid.UUID
	links    []*SellPurchaseLink
	bySell   map[uuid.UUID][]*SellPurchaseLink
	dirty    map[uuid.UUID]bool
	created  map[uuid.UUID]bool
}

// NewLinkBook builds a book from persisted links
func NewLinkBook(tenantID uuid.UUID, existing []SellPurchaseLink) *LinkBook {
	b := &LinkBook{
		tenantID: tenantID,
		bySell:   make(map[uuid.UUID][]*SellPurchaseLink),
		dirty:    make(map[uuid.UUID]bool),
		created:  make(map[uuid.UUID]bool),
	}
	for i := range existing {
		l := existing[i]
		b.add(&l)
	}
	return b
}

func (b *LinkBook) add(l *SellPurchaseLink) {
	b.links = append(b.links, l)
	b.bySell[l.SellLineID] = append(b.bySell[l.SellLineID], l)
}

// Linked returns the quantity already linked for a sell line
func (b *LinkBook) Linked(sellLineID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.bySell[sellLineID] {
		total = total.Add(l.Quantity)
	}
	return total
}

// Extend adds qty to the link between the sell and purchase line, creating it if needed
func (b *LinkBook) Extend(sellLineID, purchaseLineID uuid.UUID, qty decimal.Decimal) *SellPurchaseLink {
	for _, l := range b.bySell[sellLineID] {
		if l.PurchaseLineID == purchaseLineID {
			l.Quantity = l.Quantity.Add(qty)
			l.Touch()
			if !b.created[l.ID] {
				b.dirty[l.ID] = true
			}
			return l
		}
	}
	l := NewSellPurchaseLink(b.tenantID, sellLineID, purchaseLineID, qty)
	b.add(l)
	b.created[l.ID] = true
	return l
}

// Created returns links that did not exist when the book was built
func (b *LinkBook) Created() []*SellPurchaseLink {
	out := make([]*SellPurchaseLink, 0, len(b.created))
	for _, l := range b.links {
		if b.created[l.ID] {
			out = append(out, l)
		}
	}
	return out
}

// Updated returns pre-existing links whose quantity changed
func (b *LinkBook) Updated() []*SellPurchaseLink {
	out := make([]*SellPurchaseLink, 0, len(b.dirty))
	for _, l := range b.links {
		if b.dirty[l.ID] {
			out = append(out, l)
		}
	}
	return out
}

// All returns every link in the book
func (b *LinkBook) All() []*SellPurchaseLink {
	return b.links
}
