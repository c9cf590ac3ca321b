package strategy

import (
	"github.com/erp/stocktransfer/internal/domain/shared/strategy"
	"github.com/erp/stocktransfer/internal/infrastructure/strategy/cost"
	"github.com/erp/stocktransfer/internal/infrastructure/strategy/lot"
)

// NewRegistryWithDefaults creates a registry with the fifo, lifo and fefo lot
// strategies and the moving average cost strategy. fifo is the default lot
// strategy, used when a business has no accounting method configured.
func NewRegistryWithDefaults() (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	fifo := lot.NewFIFOLotStrategy()
	for _, s := range []strategy.LotSelectionStrategy{fifo, lot.NewLIFOLotStrategy(), lot.NewFEFOLotStrategy()} {
		if err := r.RegisterLotStrategy(s); err != nil {
			return nil, err
		}
	}

	movingAvg := cost.NewMovingAverageCostStrategy()
	if err := r.RegisterCostStrategy(movingAvg); err != nil {
		return nil, err
	}

	if err := r.SetDefault(strategy.KindLot, fifo.Name()); err != nil {
		return nil, err
	}
	if err := r.SetDefault(strategy.KindCost, movingAvg.Name()); err != nil {
		return nil, err
	}

	return r, nil
}
