// Package cost holds the average cost strategies applied when stock lands at
// a location.
package cost

import (
	"context"
	"errors"

	"github.com/erp/stocktransfer/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// ErrNoStock is returned when no layer has a positive quantity
var ErrNoStock = errors.New("no positive stock to average")

// costPlaces is the precision of stored average costs
const costPlaces = 4

// MovingAverageCostStrategy weights each layer's unit cost by its quantity
type MovingAverageCostStrategy struct{}

func NewMovingAverageCostStrategy() *MovingAverageCostStrategy {
	return &MovingAverageCostStrategy{}
}

func (*MovingAverageCostStrategy) Name() string { return "moving_average" }

func (*MovingAverageCostStrategy) Kind() strategy.Kind { return strategy.KindCost }

// CalculateAverageCost skips layers that are empty or oversold, so a location
// that went negative restarts from the incoming cost.
func (*MovingAverageCostStrategy) CalculateAverageCost(_ context.Context, entries []strategy.StockEntry) (decimal.Decimal, error) {
	qty, value := decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.Quantity.IsPositive() {
			qty = qty.Add(e.Quantity)
			value = value.Add(e.TotalCost())
		}
	}
	if qty.IsZero() {
		return decimal.Zero, ErrNoStock
	}
	return value.Div(qty).Round(costPlaces), nil
}

var _ strategy.CostCalculationStrategy = (*MovingAverageCostStrategy)(nil)
