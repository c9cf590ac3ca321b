// Package lot holds the lot selection strategies used by the purchase-sell
// mapper. Each strategy differs only in the order it walks the lots.
package lot

import (
	"context"
	"slices"

	"github.com/erp/stocktransfer/internal/domain/shared/strategy"
)

// OrderedLotStrategy allocates from the matching lots in a fixed order. A
// preferred lot always goes first.
type OrderedLotStrategy struct {
	name     string
	byExpiry bool
	compare  func(a, b strategy.Lot) int
}

// NewFIFOLotStrategy consumes the earliest receipts first. The manufacture
// date only breaks ties between lots received at the same time.
func NewFIFOLotStrategy() *OrderedLotStrategy {
	return &OrderedLotStrategy{name: "fifo", compare: receiptOrder}
}

// NewLIFOLotStrategy consumes the latest receipts first
func NewLIFOLotStrategy() *OrderedLotStrategy {
	return &OrderedLotStrategy{name: "lifo", compare: func(a, b strategy.Lot) int {
		return receiptOrder(b, a)
	}}
}

// NewFEFOLotStrategy consumes lots by earliest expiry. Lots without an expiry
// go last in FIFO order. Expired lots are still on hand and are not skipped.
func NewFEFOLotStrategy() *OrderedLotStrategy {
	return &OrderedLotStrategy{name: "fefo", byExpiry: true, compare: func(a, b strategy.Lot) int {
		switch {
		case a.ExpDate.IsZero() && b.ExpDate.IsZero():
			return receiptOrder(a, b)
		case a.ExpDate.IsZero():
			return 1
		case b.ExpDate.IsZero():
			return -1
		}
		return a.ExpDate.Compare(b.ExpDate)
	}}
}

func (s *OrderedLotStrategy) Name() string { return s.name }

func (s *OrderedLotStrategy) Kind() strategy.Kind { return strategy.KindLot }

// ConsidersExpiry reports whether lots are ordered by expiry date
func (s *OrderedLotStrategy) ConsidersExpiry() bool { return s.byExpiry }

// SelectLots takes up to selCtx.Quantity from the lots of the requested
// variation and location. Equal lots keep their input order.
func (s *OrderedLotStrategy) SelectLots(
	_ context.Context,
	selCtx strategy.LotSelectionContext,
	lots []strategy.Lot,
) (strategy.LotSelectionResult, error) {
	preferred, rest := splitPreferredLot(
		filterAvailableLots(lots, selCtx.VariationID, selCtx.LocationID),
		selCtx.PreferLotID,
	)
	slices.SortStableFunc(rest, s.compare)
	return selectFromLots(preferred, rest, selCtx.Quantity), nil
}

var _ strategy.LotSelectionStrategy = (*OrderedLotStrategy)(nil)
