package transfer

import (
	"context"

	appledger "github.com/erp/stocktransfer/internal/application/ledger"
	"github.com/erp/stocktransfer/internal/application/mapping"
	"github.com/erp/stocktransfer/internal/domain/ledger"
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// complete moves every stock line from origin to destination, lets the new
// destination supply cover lines oversold there, then links the sell lines
// to the origin supply they drew from. Callers run it once per transfer,
// when PlanTransition reports TransitionComplete.
func (s *Service) complete(ctx context.Context, repos TransactionalRepositories, biz shared.BusinessContext, pair *transfer.Pair) (*mapping.Result, error) {
	led := s.ledgerFor(repos)
	sellID, purchaseID := pair.Sell.ID, pair.Purchase.ID

	landing := make(map[uuid.UUID]decimal.Decimal, len(pair.Purchase.PurchaseLines))
	for _, pl := range pair.Purchase.PurchaseLines {
		landing[pl.VariationID] = pl.PurchasePrice
	}

	lines := pair.StockLines()
	for _, line := range lines {
		qty := line.BaseQuantity()
		origin := ledger.Key{
			TenantID:    biz.TenantID,
			ProductID:   line.ProductID,
			VariationID: line.VariationID,
			LocationID:  pair.Sell.LocationID,
		}
		if _, err := led.Decrease(ctx, origin, qty, appledger.DecreaseOptions{
			AllowOverselling: biz.AllowOverselling,
			Reason:           ledger.ReasonTransferOut,
			SourceID:         &sellID,
			ActorID:          biz.Actor(),
		}); err != nil {
			return nil, err
		}

		destination := origin
		destination.LocationID = pair.Purchase.LocationID
		if _, err := led.Increase(ctx, destination, qty, appledger.IncreaseOptions{
			RecalcAverageCost: true,
			LandingCost:       landing[line.VariationID],
			Reason:            ledger.ReasonTransferIn,
			SourceID:          &purchaseID,
			ActorID:           biz.Actor(),
		}); err != nil {
			return nil, err
		}
	}

	if _, err := led.AdjustStockOverSelling(ctx, pair.Purchase); err != nil {
		return nil, err
	}

	mapper := mapping.New(repos, s.strategies, s.logger)
	return mapper.MapPurchaseSell(ctx, biz, pair.Sell.LocationID, lines, mapping.DirectionPurchase)
}

// reverse undoes the ledger effect of a completed transfer
func (s *Service) reverse(ctx context.Context, repos TransactionalRepositories, biz shared.BusinessContext, pair *transfer.Pair) error {
	led := s.ledgerFor(repos)
	sellID, purchaseID := pair.Sell.ID, pair.Purchase.ID

	for _, line := range pair.StockLines() {
		qty := line.BaseQuantity()
		destination := ledger.Key{
			TenantID:    biz.TenantID,
			ProductID:   line.ProductID,
			VariationID: line.VariationID,
			LocationID:  pair.Purchase.LocationID,
		}
		if _, err := led.Decrease(ctx, destination, qty, appledger.DecreaseOptions{
			AllowOverselling: biz.AllowOverselling,
			Reason:           ledger.ReasonTransferReversal,
			SourceID:         &purchaseID,
			ActorID:          biz.Actor(),
		}); err != nil {
			return err
		}

		origin := destination
		origin.LocationID = pair.Sell.LocationID
		if _, err := led.Increase(ctx, origin, qty, appledger.IncreaseOptions{
			Reason:   ledger.ReasonTransferReversal,
			SourceID: &sellID,
			ActorID:  biz.Actor(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// recordCompletion reports a committed completion
func (s *Service) recordCompletion(ctx context.Context, biz shared.BusinessContext, pair *transfer.Pair, result *mapping.Result) {
	fields := []zap.Field{
		zap.String("tenant_id", biz.TenantID.String()),
		zap.String("transfer_id", pair.ID().String()),
		zap.String("ref_no", pair.Sell.RefNo),
		zap.Int("lines", len(pair.StockLines())),
	}
	if result != nil {
		fields = append(fields,
			zap.String("allocated", result.Allocated.String()),
			zap.String("shortfall", result.Shortfall.String()),
		)
	}
	s.logger.Info("transfer completed", fields...)

	if s.metrics == nil {
		return
	}
	s.metrics.RecordCompletion(ctx, biz.TenantID, len(pair.StockLines()))
	if result != nil && result.HasShortfall() {
		s.metrics.RecordShortfall(ctx, biz.TenantID)
	}
}
