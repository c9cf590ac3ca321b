package lot

import (
	"github.com/erp/stocktransfer/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// filterAvailableLots keeps lots for the variation and location that still have stock
func filterAvailableLots(lots []strategy.Lot, variationID, locationID string) []strategy.Lot {
	filtered := make([]strategy.Lot, 0, len(lots))
	for _, l := range lots {
		if l.VariationID == variationID && l.LocationID == locationID && l.AvailableQty.IsPositive() {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// splitPreferredLot removes the preferred lot from the list and returns it separately
func splitPreferredLot(lots []strategy.Lot, preferredID string) (*strategy.Lot, []strategy.Lot) {
	if preferredID == "" {
		return nil, lots
	}
	rest := make([]strategy.Lot, 0, len(lots))
	var preferred *strategy.Lot
	for i := range lots {
		if lots[i].ID == preferredID {
			l := lots[i]
			preferred = &l
			continue
		}
		rest = append(rest, lots[i])
	}
	return preferred, rest
}

// receiptOrder compares lots by receipt date, then by manufacture date
func receiptOrder(a, b strategy.Lot) int {
	if c := a.ReceivedDate.Compare(b.ReceivedDate); c != 0 {
		return c
	}
	return a.MfgDate.Compare(b.MfgDate)
}

// selectFromLots takes quantity from lots in the given order
func selectFromLots(preferred *strategy.Lot, ordered []strategy.Lot, quantity decimal.Decimal) strategy.LotSelectionResult {
	if preferred != nil {
		ordered = append([]strategy.Lot{*preferred}, ordered...)
	}

	remaining := quantity
	selections := make([]strategy.LotSelection, 0)
	total := decimal.Zero

	for _, l := range ordered {
		if !remaining.IsPositive() {
			break
		}
		qty := decimal.Min(remaining, l.AvailableQty)
		selections = append(selections, strategy.LotSelection{
			LotID:     l.ID,
			LotNumber: l.LotNumber,
			Quantity:  qty,
			UnitCost:  l.UnitCost,
		})
		remaining = remaining.Sub(qty)
		total = total.Add(qty)
	}

	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return strategy.LotSelectionResult{
		Selections:   selections,
		TotalQty:     total,
		ShortfallQty: remaining,
	}
}
