// Package strategy registers the lot and cost strategies by name and
// resolves a business's accounting method to one of them.
package strategy

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/shared/strategy"
)

// catalog holds the strategies of one kind and the name used when none is given
type catalog[T strategy.Strategy] struct {
	kind     strategy.Kind
	byName   map[string]T
	fallback string
}

func newCatalog[T strategy.Strategy](kind strategy.Kind) catalog[T] {
	return catalog[T]{kind: kind, byName: make(map[string]T)}
}

func (c *catalog[T]) add(s T) error {
	if _, dup := c.byName[s.Name()]; dup {
		return fmt.Errorf("%w: %s strategy %q already registered", shared.ErrAlreadyExists, c.kind, s.Name())
	}
	c.byName[s.Name()] = s
	return nil
}

func (c *catalog[T]) get(name string) (T, error) {
	if name == "" {
		name = c.fallback
	}
	s, ok := c.byName[name]
	if !ok {
		var zero T
		if name == "" {
			return zero, fmt.Errorf("%w: no default %s strategy", shared.ErrNotFound, c.kind)
		}
		return zero, fmt.Errorf("%w: %s strategy %q", shared.ErrNotFound, c.kind, name)
	}
	return s, nil
}

func (c *catalog[T]) setDefault(name string) error {
	if _, ok := c.byName[name]; !ok {
		return fmt.Errorf("%w: %s strategy %q", shared.ErrNotFound, c.kind, name)
	}
	c.fallback = name
	return nil
}

// StrategyRegistry is safe for concurrent use
type StrategyRegistry struct {
	mu    sync.RWMutex
	lots  catalog[strategy.LotSelectionStrategy]
	costs catalog[strategy.CostCalculationStrategy]
}

func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		lots:  newCatalog[strategy.LotSelectionStrategy](strategy.KindLot),
		costs: newCatalog[strategy.CostCalculationStrategy](strategy.KindCost),
	}
}

func (r *StrategyRegistry) RegisterLotStrategy(s strategy.LotSelectionStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lots.add(s)
}

func (r *StrategyRegistry) RegisterCostStrategy(s strategy.CostCalculationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.costs.add(s)
}

// GetLotStrategy returns the named lot strategy. An empty name selects the default.
func (r *StrategyRegistry) GetLotStrategy(name string) (strategy.LotSelectionStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lots.get(name)
}

// GetLotStrategyOrDefault resolves an accounting method, falling back to the
// default lot strategy for names that are not registered. It returns nil only
// when no default is set.
func (r *StrategyRegistry) GetLotStrategyOrDefault(name string) strategy.LotSelectionStrategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, err := r.lots.get(name); err == nil {
		return s
	}
	s, _ := r.lots.get("")
	return s
}

// GetCostStrategy returns the named cost strategy. An empty name selects the default.
func (r *StrategyRegistry) GetCostStrategy(name string) (strategy.CostCalculationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.costs.get(name)
}

// ListLotStrategies returns the registered lot strategy names in order
func (r *StrategyRegistry) ListLotStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.lots.byName))
}

// SetDefault makes name the default strategy of kind
func (r *StrategyRegistry) SetDefault(kind strategy.Kind, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch kind {
	case strategy.KindLot:
		return r.lots.setDefault(name)
	case strategy.KindCost:
		return r.costs.setDefault(name)
	}
	return fmt.Errorf("%w: strategy kind %q", shared.ErrNotFound, kind)
}

// GetDefault returns the default strategy name of kind, or ""
func (r *StrategyRegistry) GetDefault(kind strategy.Kind) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch kind {
	case strategy.KindLot:
		return r.lots.fallback
	case strategy.KindCost:
		return r.costs.fallback
	}
	return ""
}
