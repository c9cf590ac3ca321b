package strategy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Lot is a supply line that sell-side quantities can be allocated against.
// One lot corresponds to one purchase-side line at a location.
type Lot struct {
	ID           string
	VariationID  string
	LocationID   string
	LotNumber    string
	AvailableQty decimal.Decimal
	UnitCost     decimal.Decimal
	MfgDate      time.Time
	ExpDate      time.Time
	ReceivedDate time.Time
}

// LotSelection is the quantity taken from one lot
type LotSelection struct {
	LotID     string
	LotNumber string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// LotSelectionContext describes what needs to be allocated
type LotSelectionContext struct {
	TenantID    string
	VariationID string
	LocationID  string
	Quantity    decimal.Decimal
	Date        time.Time
	// PreferLotID is consumed before any ordering rule applies
	PreferLotID string
}

// LotSelectionResult contains the outcome of a selection.
// A positive ShortfallQty is not an error.
type LotSelectionResult struct {
	Selections   []LotSelection
	TotalQty     decimal.Decimal
	ShortfallQty decimal.Decimal
}

// LotSelectionStrategy orders supply lots and picks quantities from them
type LotSelectionStrategy interface {
	Strategy
	SelectLots(ctx context.Context, selCtx LotSelectionContext, lots []Lot) (LotSelectionResult, error)
	// ConsidersExpiry returns true if the strategy orders by expiry date
	ConsidersExpiry() bool
}
