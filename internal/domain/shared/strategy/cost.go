package strategy

import (
	"context"

	"github.com/shopspring/decimal"
)

// StockEntry is one quantity layer with its cost
type StockEntry struct {
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// TotalCost returns quantity times unit cost
func (e StockEntry) TotalCost() decimal.Decimal {
	return e.Quantity.Mul(e.UnitCost)
}

// CostCalculationStrategy computes the unit cost of stock on hand
type CostCalculationStrategy interface {
	Strategy
	// CalculateAverageCost returns the unit cost over all entries
	CalculateAverageCost(ctx context.Context, entries []StockEntry) (decimal.Decimal, error)
}
