package transfer

import (
	"context"

	appledger "github.com/erp/stocktransfer/internal/application/ledger"
	"github.com/erp/stocktransfer/internal/domain/ledger"
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiveStock records supply arriving at a location. The ledger is
// increased at landing cost and the new lines first cover any sell lines
// that were completed there without enough supply.
func (s *Service) ReceiveStock(ctx context.Context, biz shared.BusinessContext, req ReceiveStockRequest) (*ReceiptResponse, error) {
	if err := s.authorize(biz, PermissionReceiveStock); err != nil {
		return nil, err
	}
	in := req.toInput(s.now())
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var (
		receipt *transfer.Transaction
		linked  decimal.Decimal
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		refNo := in.RefNo
		if refNo == "" {
			var err error
			if refNo, err = s.refNos.Next(ctx, repos.TransferRepo(), biz.TenantID, transfer.KindPurchase); err != nil {
				return err
			}
		}
		input := in
		input.RefNo = refNo

		var err error
		receipt, err = transfer.NewReceipt(biz.TenantID, actorOf(biz), input)
		if err != nil {
			return err
		}
		if err := repos.TransferRepo().Create(ctx, receipt); err != nil {
			return err
		}

		led := s.ledgerFor(repos)
		receiptID := receipt.ID
		for _, line := range receipt.PurchaseLines {
			key := ledger.Key{
				TenantID:    biz.TenantID,
				ProductID:   line.ProductID,
				VariationID: line.VariationID,
				LocationID:  receipt.LocationID,
			}
			if _, err := led.Increase(ctx, key, line.Quantity, appledger.IncreaseOptions{
				RecalcAverageCost: true,
				LandingCost:       line.PurchasePrice,
				Reason:            ledger.ReasonStockReceipt,
				SourceID:          &receiptID,
				ActorID:           biz.Actor(),
			}); err != nil {
				return err
			}
		}

		if linked, err = led.AdjustStockOverSelling(ctx, receipt); err != nil {
			return err
		}

		activity, err := transfer.NewActivity(biz.TenantID, receipt.ID, actorOf(biz), transfer.ActivityAdded, nil, "stock receipt")
		if err != nil {
			return err
		}
		activity.SubjectType = string(transfer.KindPurchase)
		return repos.ActivityRepo().Create(ctx, activity)
	})
	if err != nil {
		return nil, s.fail("receive_stock", uuid.Nil, err)
	}

	s.logger.Info("stock received",
		zap.String("tenant_id", biz.TenantID.String()),
		zap.String("transaction_id", receipt.ID.String()),
		zap.String("location_id", receipt.LocationID.String()),
		zap.Int("lines", len(receipt.PurchaseLines)),
		zap.String("linked_to_oversold", linked.String()),
	)
	return ToReceiptResponse(receipt, linked), nil
}

// ListStock returns on-hand quantities
func (s *Service) ListStock(ctx context.Context, biz shared.BusinessContext, f StockFilter) ([]StockResponse, int64, error) {
	if err := s.authorize(biz, PermissionStockRead); err != nil {
		return nil, 0, err
	}

	filter := ledger.QuantityFilter{
		Filter:      shared.Filter{Page: f.Page, PageSize: f.PageSize},
		LocationID:  f.LocationID,
		ProductID:   f.ProductID,
		VariationID: f.VariationID,
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 50
	}

	rows, total, err := s.reads.QuantityRepo().List(ctx, biz.TenantID, filter)
	if err != nil {
		return nil, 0, s.fail("list_stock", uuid.Nil, err)
	}
	out := make([]StockResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToStockResponse(&rows[i]))
	}
	return out, total, nil
}
