package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/stocktransfer/internal/domain/ledger"
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/shared/strategy"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Repositories are the stores the ledger reads and writes. Callers pass
// repositories bound to the current database transaction.
type Repositories interface {
	QuantityRepo() ledger.QuantityRepository
	MovementRepo() ledger.MovementRepository
	SellLineRepo() transfer.SellLineRepository
	PurchaseLineRepo() transfer.PurchaseLineRepository
	LinkRepo() transfer.LinkRepository
}

// DecreaseOptions control a ledger decrease
type DecreaseOptions struct {
	AllowOverselling bool
	Reason           ledger.MovementReason
	SourceID         *uuid.UUID
	ActorID          *uuid.UUID
}

// IncreaseOptions control a ledger increase
type IncreaseOptions struct {
	RecalcAverageCost bool
	LandingCost       decimal.Decimal
	Reason            ledger.MovementReason
	SourceID          *uuid.UUID
	ActorID           *uuid.UUID
}

// Ledger adjusts on-hand quantities per (product, variation, location)
type Ledger struct {
	repos Repositories
	cost  strategy.CostCalculationStrategy
	log   *zap.Logger
}

// New creates a Ledger. cost may be nil when no average cost is ever recalculated.
func New(repos Repositories, cost strategy.CostCalculationStrategy, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{repos: repos, cost: cost, log: log.Named("ledger")}
}

// load returns the ledger row for key and whether it already exists
func (l *Ledger) load(ctx context.Context, key ledger.Key) (*ledger.VariationLocationQuantity, bool, error) {
	row, err := l.repos.QuantityRepo().FindByKey(ctx, key)
	if err == nil {
		return row, true, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return ledger.NewVariationLocationQuantity(key), false, nil
	}
	return nil, false, fmt.Errorf("load ledger row %s: %w", key, err)
}

func (l *Ledger) persist(ctx context.Context, row *ledger.VariationLocationQuantity, exists bool) error {
	if exists {
		return l.repos.QuantityRepo().SaveWithLock(ctx, row)
	}
	return l.repos.QuantityRepo().Create(ctx, row)
}

// Decrease removes qty at key. A missing row counts as zero on hand.
func (l *Ledger) Decrease(ctx context.Context, key ledger.Key, qty decimal.Decimal, opts DecreaseOptions) (*ledger.VariationLocationQuantity, error) {
	row, exists, err := l.load(ctx, key)
	if err != nil {
		return nil, err
	}

	before := row.Quantity
	if err := row.Decrease(qty, opts.AllowOverselling); err != nil {
		return nil, err
	}
	if err := l.persist(ctx, row, exists); err != nil {
		return nil, err
	}
	if err := l.record(ctx, row, before, opts.Reason, opts.SourceID, opts.ActorID); err != nil {
		return nil, err
	}
	return row, nil
}

// Increase adds qty at key, creating the row when needed. With
// RecalcAverageCost the weighted average unit cost is recomputed from the
// current balance and the landing cost.
func (l *Ledger) Increase(ctx context.Context, key ledger.Key, qty decimal.Decimal, opts IncreaseOptions) (*ledger.VariationLocationQuantity, error) {
	row, exists, err := l.load(ctx, key)
	if err != nil {
		return nil, err
	}

	if opts.RecalcAverageCost {
		avg, err := l.averageCost(ctx, row, qty, opts.LandingCost)
		if err != nil {
			return nil, err
		}
		row.AverageCost = avg
	}

	before := row.Quantity
	if err := row.Increase(qty); err != nil {
		return nil, err
	}
	if err := l.persist(ctx, row, exists); err != nil {
		return nil, err
	}
	if err := l.record(ctx, row, before, opts.Reason, opts.SourceID, opts.ActorID); err != nil {
		return nil, err
	}
	return row, nil
}

func (l *Ledger) averageCost(ctx context.Context, row *ledger.VariationLocationQuantity, qty, landing decimal.Decimal) (decimal.Decimal, error) {
	if l.cost == nil {
		return landing.Round(4), nil
	}
	avg, err := l.cost.CalculateAverageCost(ctx, []strategy.StockEntry{
		{Quantity: row.Quantity, UnitCost: row.AverageCost},
		{Quantity: qty, UnitCost: landing},
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("recalculate average cost for %s: %w", row.Key(), err)
	}
	return avg, nil
}

func (l *Ledger) record(ctx context.Context, row *ledger.VariationLocationQuantity, before decimal.Decimal, reason ledger.MovementReason, source, actor *uuid.UUID) error {
	m := ledger.NewStockMovement(row, before, reason, source, actor)
	if err := l.repos.MovementRepo().Create(ctx, m); err != nil {
		return fmt.Errorf("record stock movement: %w", err)
	}

	fields := []zap.Field{
		zap.String("tenant_id", row.TenantID.String()),
		zap.String("variation_id", row.VariationID.String()),
		zap.String("location_id", row.LocationID.String()),
		zap.String("delta", m.Delta.String()),
		zap.String("balance", row.Quantity.String()),
		zap.String("reason", string(reason)),
		zap.Time("at", m.CreatedAt),
	}
	if actor != nil {
		fields = append(fields, zap.String("actor_id", actor.String()))
	}
	if source != nil {
		fields = append(fields, zap.String("source_id", source.String()))
	}
	l.log.Info("stock adjusted", fields...)
	return nil
}

// AdjustStockOverSelling links sell lines at the purchase transaction's
// location that were completed without enough supply to the new purchase
// lines. On-hand quantities are not touched. Running it twice links nothing
// the second time. It returns the quantity linked.
func (l *Ledger) AdjustStockOverSelling(ctx context.Context, purchase *transfer.Transaction) (decimal.Decimal, error) {
	linked := decimal.Zero
	if !purchase.Kind.IsPurchaseSide() || !purchase.TransferStatus().IsCompleted() {
		return linked, nil
	}

	for i := range purchase.PurchaseLines {
		pl := &purchase.PurchaseLines[i]
		if !pl.Available().IsPositive() {
			continue
		}

		sellLines, err := l.repos.SellLineRepo().FindCompletedAt(ctx, purchase.TenantID, purchase.LocationID, pl.VariationID)
		if err != nil {
			return linked, fmt.Errorf("find oversold lines: %w", err)
		}
		if len(sellLines) == 0 {
			continue
		}

		ids := make([]uuid.UUID, 0, len(sellLines))
		for _, sl := range sellLines {
			ids = append(ids, sl.ID)
		}
		existing, err := l.repos.LinkRepo().FindBySellLineIDs(ctx, purchase.TenantID, ids)
		if err != nil {
			return linked, fmt.Errorf("load links: %w", err)
		}
		book := transfer.NewLinkBook(purchase.TenantID, existing)

		for j := range sellLines {
			if !pl.Available().IsPositive() {
				break
			}
			sl := &sellLines[j]
			remaining := sl.BaseQuantity().Sub(book.Linked(sl.ID))
			if !remaining.IsPositive() {
				continue
			}
			take := decimal.Min(remaining, pl.Available())
			if err := pl.Allocate(take); err != nil {
				return linked, err
			}
			book.Extend(sl.ID, pl.ID, take)
			linked = linked.Add(take)
		}

		if err := l.saveBook(ctx, book); err != nil {
			return linked, err
		}
		if len(book.Created())+len(book.Updated()) > 0 {
			if err := l.repos.PurchaseLineRepo().SaveQuantitySold(ctx, pl); err != nil {
				return linked, err
			}
		}
	}

	if linked.IsPositive() {
		l.log.Info("oversold lines linked to new supply",
			zap.String("tenant_id", purchase.TenantID.String()),
			zap.String("transaction_id", purchase.ID.String()),
			zap.String("location_id", purchase.LocationID.String()),
			zap.String("quantity", linked.String()),
		)
	}
	return linked, nil
}

func (l *Ledger) saveBook(ctx context.Context, book *transfer.LinkBook) error {
	if created := book.Created(); len(created) > 0 {
		if err := l.repos.LinkRepo().Create(ctx, created...); err != nil {
			return fmt.Errorf("create links: %w", err)
		}
	}
	if updated := book.Updated(); len(updated) > 0 {
		if err := l.repos.LinkRepo().UpdateQuantity(ctx, updated...); err != nil {
			return fmt.Errorf("update links: %w", err)
		}
	}
	return nil
}
