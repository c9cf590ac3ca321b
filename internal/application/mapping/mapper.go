package mapping

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/shared/strategy"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Direction selects which side is drawn down. Only purchase is supported.
type Direction string

const DirectionPurchase Direction = "purchase"

// Repositories are the stores the mapper needs within a unit of work
type Repositories interface {
	PurchaseLineRepo() transfer.PurchaseLineRepository
	LinkRepo() transfer.LinkRepository
}

// LotStrategyProvider resolves the lot ordering for an accounting method
type LotStrategyProvider interface {
	GetLotStrategyOrDefault(name string) strategy.LotSelectionStrategy
}

// LineResult is the allocation outcome of one sell line
type LineResult struct {
	SellLineID    uuid.UUID
	Requested     decimal.Decimal
	AlreadyLinked decimal.Decimal
	Allocated     decimal.Decimal
	Shortfall     decimal.Decimal
}

// Result summarizes a mapping run. Shortfall is reported, never raised.
type Result struct {
	Lines     []LineResult
	Allocated decimal.Decimal
	Shortfall decimal.Decimal
}

// HasShortfall reports whether any line could not be fully allocated
func (r *Result) HasShortfall() bool {
	return r.Shortfall.IsPositive()
}

// Mapper links sell lines to the purchase lines they draw stock from
type Mapper struct {
	repos      Repositories
	strategies LotStrategyProvider
	log        *zap.Logger
	now        func() time.Time
}

// New creates a Mapper
func New(repos Repositories, strategies LotStrategyProvider, log *zap.Logger) *Mapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mapper{repos: repos, strategies: strategies, log: log.Named("mapping"), now: time.Now}
}

// MapPurchaseSell allocates every stock-moving sell line at locationID against
// available supply at the same location. Quantity already linked is
// subtracted first, so calling it again on the same lines allocates nothing new.
func (m *Mapper) MapPurchaseSell(
	ctx context.Context,
	biz shared.BusinessContext,
	locationID uuid.UUID,
	sellLines []*transfer.SellLine,
	direction Direction,
) (*Result, error) {
	if direction != DirectionPurchase {
		return nil, transfer.NewValidationError("unsupported mapping direction %q", direction)
	}

	result := &Result{Allocated: decimal.Zero, Shortfall: decimal.Zero}
	if len(sellLines) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(sellLines))
	for _, sl := range sellLines {
		ids = append(ids, sl.ID)
	}
	existing, err := m.repos.LinkRepo().FindBySellLineIDs(ctx, biz.TenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}
	book := transfer.NewLinkBook(biz.TenantID, existing)

	lotStrategy := m.strategies.GetLotStrategyOrDefault(biz.AccountingMethod)
	if lotStrategy == nil {
		return nil, fmt.Errorf("%w: no lot strategy for %q", shared.ErrNotFound, biz.AccountingMethod)
	}

	supply := make(map[uuid.UUID][]*transfer.PurchaseLine)
	receivedAt := make(map[uuid.UUID]time.Time)
	touched := make(map[uuid.UUID]bool)
	var dirty []*transfer.PurchaseLine

	for _, sl := range sellLines {
		if !sl.EnableStock {
			continue
		}
		requested := sl.BaseQuantity()
		linked := book.Linked(sl.ID)
		line := LineResult{
			SellLineID:    sl.ID,
			Requested:     requested,
			AlreadyLinked: linked,
			Allocated:     decimal.Zero,
			Shortfall:     decimal.Zero,
		}
		remaining := requested.Sub(linked)
		if !remaining.IsPositive() {
			result.Lines = append(result.Lines, line)
			continue
		}

		candidates, ok := supply[sl.VariationID]
		if !ok {
			rows, err := m.repos.PurchaseLineRepo().FindAvailable(ctx, biz.TenantID, locationID, sl.VariationID)
			if err != nil {
				return nil, fmt.Errorf("find supply for variation %s: %w", sl.VariationID, err)
			}
			candidates = make([]*transfer.PurchaseLine, 0, len(rows))
			for i := range rows {
				pl := rows[i].PurchaseLine
				candidates = append(candidates, &pl)
				receivedAt[pl.ID] = rows[i].ReceivedAt
			}
			supply[sl.VariationID] = candidates
		}

		selCtx := strategy.LotSelectionContext{
			TenantID:    biz.TenantID.String(),
			VariationID: sl.VariationID.String(),
			LocationID:  locationID.String(),
			Quantity:    remaining,
			Date:        m.now(),
		}
		if sl.LotNoLineID != nil {
			selCtx.PreferLotID = sl.LotNoLineID.String()
		}

		byID := make(map[string]*transfer.PurchaseLine, len(candidates))
		lots := make([]strategy.Lot, 0, len(candidates))
		for _, pl := range candidates {
			byID[pl.ID.String()] = pl
			lots = append(lots, toLot(pl, locationID, receivedAt[pl.ID]))
		}

		selection, err := lotStrategy.SelectLots(ctx, selCtx, lots)
		if err != nil {
			return nil, fmt.Errorf("select lots: %w", err)
		}

		for _, sel := range selection.Selections {
			pl := byID[sel.LotID]
			if pl == nil || !sel.Quantity.IsPositive() {
				continue
			}
			if err := pl.Allocate(sel.Quantity); err != nil {
				return nil, err
			}
			book.Extend(sl.ID, pl.ID, sel.Quantity)
			if !touched[pl.ID] {
				touched[pl.ID] = true
				dirty = append(dirty, pl)
			}
			line.Allocated = line.Allocated.Add(sel.Quantity)
		}
		line.Shortfall = selection.ShortfallQty

		result.Lines = append(result.Lines, line)
		result.Allocated = result.Allocated.Add(line.Allocated)
		result.Shortfall = result.Shortfall.Add(line.Shortfall)
	}

	for _, pl := range dirty {
		if err := m.repos.PurchaseLineRepo().SaveQuantitySold(ctx, pl); err != nil {
			return nil, err
		}
	}
	if created := book.Created(); len(created) > 0 {
		if err := m.repos.LinkRepo().Create(ctx, created...); err != nil {
			return nil, fmt.Errorf("create links: %w", err)
		}
	}
	if updated := book.Updated(); len(updated) > 0 {
		if err := m.repos.LinkRepo().UpdateQuantity(ctx, updated...); err != nil {
			return nil, fmt.Errorf("update links: %w", err)
		}
	}

	if result.HasShortfall() {
		m.log.Warn("sell lines mapped with shortfall",
			zap.String("tenant_id", biz.TenantID.String()),
			zap.String("location_id", locationID.String()),
			zap.String("allocated", result.Allocated.String()),
			zap.String("shortfall", result.Shortfall.String()),
		)
	}
	return result, nil
}

// Unmap removes every link of the given sell lines and gives the linked
// quantity back to the purchase lines it was drawn from. It returns the
// quantity released.
func (m *Mapper) Unmap(ctx context.Context, tenantID uuid.UUID, sellLineIDs []uuid.UUID) (decimal.Decimal, error) {
	released := decimal.Zero
	if len(sellLineIDs) == 0 {
		return released, nil
	}

	links, err := m.repos.LinkRepo().FindBySellLineIDs(ctx, tenantID, sellLineIDs)
	if err != nil {
		return released, fmt.Errorf("load links: %w", err)
	}
	if len(links) == 0 {
		return released, nil
	}

	perLine := make(map[uuid.UUID]decimal.Decimal)
	purchaseIDs := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		if _, ok := perLine[l.PurchaseLineID]; !ok {
			purchaseIDs = append(purchaseIDs, l.PurchaseLineID)
			perLine[l.PurchaseLineID] = decimal.Zero
		}
		perLine[l.PurchaseLineID] = perLine[l.PurchaseLineID].Add(l.Quantity)
	}

	lines, err := m.repos.PurchaseLineRepo().FindByIDs(ctx, tenantID, purchaseIDs)
	if err != nil {
		return released, fmt.Errorf("load linked purchase lines: %w", err)
	}
	for i := range lines {
		pl := &lines[i]
		qty := perLine[pl.ID]
		pl.Release(qty)
		if err := m.repos.PurchaseLineRepo().SaveQuantitySold(ctx, pl); err != nil {
			return released, err
		}
		released = released.Add(qty)
	}

	if err := m.repos.LinkRepo().DeleteBySellLineIDs(ctx, tenantID, sellLineIDs); err != nil {
		return released, fmt.Errorf("delete links: %w", err)
	}
	return released, nil
}

func toLot(pl *transfer.PurchaseLine, locationID uuid.UUID, receivedAt time.Time) strategy.Lot {
	lot := strategy.Lot{
		ID:           pl.ID.String(),
		VariationID:  pl.VariationID.String(),
		LocationID:   locationID.String(),
		LotNumber:    pl.LotNumber,
		AvailableQty: pl.Available(),
		UnitCost:     pl.PurchasePrice,
		ReceivedDate: receivedAt,
	}
	if pl.MfgDate != nil {
		lot.MfgDate = *pl.MfgDate
	}
	if pl.ExpDate != nil {
		lot.ExpDate = *pl.ExpDate
	}
	return lot
}
