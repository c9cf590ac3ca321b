package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	appledger "github.com/erp/stocktransfer/internal/application/ledger"
	"github.com/erp/stocktransfer/internal/application/mapping"
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/shared/strategy"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CostMethod is the cost strategy used when average costs are recomputed
const CostMethod = "moving_average"

// Service manages invoiced stock transfers: the sell_transfer and
// purchase_transfer pair, their lines, and the ledger effects of completion.
type Service struct {
	scope      TransactionScope
	reads      TransactionalRepositories
	strategies StrategyProvider
	authorizer Authorizer
	refNos     RefNoGenerator
	publisher  shared.EventPublisher
	storage    ObjectStorageService
	metrics    Metrics
	logger     *zap.Logger
	now        func() time.Time

	documentURLExpiry time.Duration
}

// NewService creates a transfer Service. reads serves queries outside of a
// unit of work.
func NewService(
	scope TransactionScope,
	reads TransactionalRepositories,
	strategies StrategyProvider,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:             scope,
		reads:             reads,
		strategies:        strategies,
		authorizer:        ContextAuthorizer{},
		refNos:            NewDatedRefNoGenerator(),
		logger:            logger.Named("transfer"),
		now:               time.Now,
		documentURLExpiry: 15 * time.Minute,
	}
}

// SetEventPublisher sets the publisher that receives domain events after commit
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetAuthorizer replaces the default context-based authorizer
func (s *Service) SetAuthorizer(a Authorizer) {
	s.authorizer = a
}

// SetRefNoGenerator replaces the default reference number generator
func (s *Service) SetRefNoGenerator(g RefNoGenerator) {
	s.refNos = g
}

// SetObjectStorage sets the storage used for shipping documents
func (s *Service) SetObjectStorage(storage ObjectStorageService, urlExpiry time.Duration) {
	s.storage = storage
	if urlExpiry > 0 {
		s.documentURLExpiry = urlExpiry
	}
}

// SetMetrics sets the metrics recorder
func (s *Service) SetMetrics(m Metrics) {
	s.metrics = m
}

// SetClock overrides the clock used for edit windows and default dates
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateTransfer creates both transactions of a transfer. It never moves stock.
func (s *Service) CreateTransfer(ctx context.Context, biz shared.BusinessContext, req TransferRequest) (*TransferResponse, error) {
	if err := s.authorize(biz, PermissionCreate); err != nil {
		return nil, err
	}
	in, err := req.toInput(s.now())
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var (
		pair   *transfer.Pair
		events []shared.DomainEvent
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lots, err := s.loadLots(ctx, repos, biz.TenantID, in.OriginLocationID, in.Lines)
		if err != nil {
			return err
		}
		input := in
		if input.RefNo, err = s.resolveRefNo(ctx, repos, biz.TenantID, in.RefNo, ""); err != nil {
			return err
		}

		pair, err = transfer.NewPair(biz.TenantID, actorOf(biz), input, lots)
		if err != nil {
			return err
		}
		if err := repos.TransferRepo().Create(ctx, pair.Sell); err != nil {
			return err
		}
		if err := repos.TransferRepo().Create(ctx, pair.Purchase); err != nil {
			return err
		}
		if err := s.recordActivity(ctx, repos, biz, pair, transfer.ActivityAdded, nil); err != nil {
			return err
		}
		events = pair.Sell.GetDomainEvents()
		return nil
	})
	if err != nil {
		return nil, s.fail("create_transfer", uuid.Nil, err)
	}

	s.logger.Info("transfer created",
		zap.String("tenant_id", biz.TenantID.String()),
		zap.String("transfer_id", pair.ID().String()),
		zap.String("ref_no", pair.Sell.RefNo),
		zap.String("status", string(pair.Status())),
	)
	s.publish(ctx, events)
	return ToTransferResponse(pair), nil
}

// UpdateTransfer replaces the header and lines of a transfer that is not
// completed. Lines are matched by variation so they keep their ids. When the
// requested status is completed, stock moves as part of the same unit.
func (s *Service) UpdateTransfer(ctx context.Context, biz shared.BusinessContext, id uuid.UUID, req TransferRequest) (*TransferResponse, error) {
	if err := s.authorize(biz, PermissionUpdate); err != nil {
		return nil, err
	}
	in, err := req.toInput(s.now())
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var (
		pair       *transfer.Pair
		events     []shared.DomainEvent
		completion *mapping.Result
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		pair, err = repos.TransferRepo().FindPair(ctx, biz.TenantID, id)
		if err != nil {
			return err
		}
		if err := pair.EnsureEditable(s.now(), biz.EditDays); err != nil {
			return err
		}
		before := pair.Snapshot()

		lots, err := s.loadLots(ctx, repos, biz.TenantID, in.OriginLocationID, in.Lines)
		if err != nil {
			return err
		}
		if in.RefNo != "" && in.RefNo != pair.Sell.RefNo {
			if _, err := s.resolveRefNo(ctx, repos, biz.TenantID, in.RefNo, pair.Sell.RefNo); err != nil {
				return err
			}
		}

		pair.ApplyHeader(in)
		changes := pair.ReplaceLines(in.Lines, lots)
		if err := s.saveLineChanges(ctx, repos, biz.TenantID, changes); err != nil {
			return err
		}

		kind, err := pair.ChangeStatus(in.Status, actorOf(biz))
		if err != nil {
			return err
		}
		if err := s.saveHeaders(ctx, repos, pair); err != nil {
			return err
		}
		completion = nil
		if kind == transfer.TransitionComplete {
			if completion, err = s.complete(ctx, repos, biz, pair); err != nil {
				return err
			}
		}

		pair.RecordUpdated(actorOf(biz))
		if err := s.recordActivity(ctx, repos, biz, pair, transfer.ActivityEdited, &before); err != nil {
			return err
		}
		events = pair.Sell.GetDomainEvents()
		return nil
	})
	if err != nil {
		return nil, s.fail("update_transfer", id, err)
	}

	if completion != nil {
		s.recordCompletion(ctx, biz, pair, completion)
	}
	s.publish(ctx, events)
	return ToTransferResponse(pair), nil
}

// ChangeStatus moves a transfer between states. Moving to completed runs
// the completion sequence exactly once; completed to completed is a no-op.
func (s *Service) ChangeStatus(ctx context.Context, biz shared.BusinessContext, id uuid.UUID, req ChangeStatusRequest) (*TransferResponse, error) {
	if err := s.authorize(biz, PermissionUpdate); err != nil {
		return nil, err
	}
	target, err := transfer.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var (
		pair       *transfer.Pair
		events     []shared.DomainEvent
		completion *mapping.Result
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		pair, err = repos.TransferRepo().FindPair(ctx, biz.TenantID, id)
		if err != nil {
			return err
		}
		before := pair.Snapshot()

		kind, err := pair.ChangeStatus(target, actorOf(biz))
		if err != nil {
			return err
		}
		if kind == transfer.TransitionNoOp {
			events, completion = nil, nil
			return nil
		}
		if err := s.saveHeaders(ctx, repos, pair); err != nil {
			return err
		}
		completion = nil
		if kind == transfer.TransitionComplete {
			if completion, err = s.complete(ctx, repos, biz, pair); err != nil {
				return err
			}
		}
		if err := s.recordActivity(ctx, repos, biz, pair, transfer.ActivityStatusChanged, &before); err != nil {
			return err
		}
		events = pair.Sell.GetDomainEvents()
		return nil
	})
	if err != nil {
		return nil, s.fail("change_status", id, err)
	}

	if completion != nil {
		s.recordCompletion(ctx, biz, pair, completion)
	}
	s.publish(ctx, events)
	return ToTransferResponse(pair), nil
}

// DeleteTransfer removes a transfer whose received stock is unconsumed.
// Links are released and a completed transfer's ledger effect is reversed.
func (s *Service) DeleteTransfer(ctx context.Context, biz shared.BusinessContext, id uuid.UUID) error {
	if err := s.authorize(biz, PermissionDelete); err != nil {
		return err
	}

	var (
		events []shared.DomainEvent
		keys   []string
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		keys = nil
		pair, err := repos.TransferRepo().FindPair(ctx, biz.TenantID, id)
		if err != nil {
			return err
		}
		if err := pair.EnsureDeletable(s.now(), biz.EditDays); err != nil {
			return err
		}
		before := pair.Snapshot()

		mapper := mapping.New(repos, s.strategies, s.logger)
		if _, err := mapper.Unmap(ctx, biz.TenantID, pair.Sell.SellLineIDs()); err != nil {
			return err
		}
		if pair.Status().IsCompleted() {
			if err := s.reverse(ctx, repos, biz, pair); err != nil {
				return err
			}
		}

		for _, t := range []*transfer.Transaction{pair.Sell, pair.Purchase} {
			docs, err := repos.ShippingDocumentRepo().DeleteByTransaction(ctx, biz.TenantID, t.ID)
			if err != nil {
				return err
			}
			for _, d := range docs {
				keys = append(keys, d.StorageKey)
			}
		}
		if err := repos.TransferRepo().Delete(ctx, biz.TenantID, pair.Purchase.ID); err != nil {
			return err
		}
		if err := repos.TransferRepo().Delete(ctx, biz.TenantID, pair.Sell.ID); err != nil {
			return err
		}

		pair.RecordDeleted(actorOf(biz))
		if err := s.recordActivity(ctx, repos, biz, pair, transfer.ActivityDeleted, &before); err != nil {
			return err
		}
		events = pair.Sell.GetDomainEvents()
		return nil
	})
	if err != nil {
		return s.fail("delete_transfer", id, err)
	}

	s.removeObjects(ctx, keys)
	s.publish(ctx, events)
	return nil
}

// GetTransfer returns a transfer by its id
func (s *Service) GetTransfer(ctx context.Context, biz shared.BusinessContext, id uuid.UUID) (*TransferResponse, error) {
	if err := s.authorize(biz, PermissionRead); err != nil {
		return nil, err
	}
	pair, err := s.reads.TransferRepo().FindPair(ctx, biz.TenantID, id)
	if err != nil {
		return nil, s.fail("get_transfer", id, err)
	}
	return ToTransferResponse(pair), nil
}

// ListTransfers returns transfer headers and the total count
func (s *Service) ListTransfers(ctx context.Context, biz shared.BusinessContext, f TransferListFilter) ([]TransferListItemResponse, int64, error) {
	if err := s.authorize(biz, PermissionRead); err != nil {
		return nil, 0, err
	}

	filter := transfer.ListFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		},
		LocationID: f.LocationID,
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}
	if f.Status != "" {
		status, err := transfer.ParseStatus(f.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = &status
	}

	items, total, err := s.reads.TransferRepo().ListTransfers(ctx, biz.TenantID, filter)
	if err != nil {
		return nil, 0, s.fail("list_transfers", uuid.Nil, err)
	}
	out := make([]TransferListItemResponse, 0, len(items))
	for i := range items {
		out = append(out, ToTransferListItemResponse(&items[i]))
	}
	return out, total, nil
}

func (s *Service) authorize(biz shared.BusinessContext, permission string) error {
	if biz.TenantID == uuid.Nil {
		return shared.ErrUnauthorized
	}
	if s.authorizer != nil && !s.authorizer.Can(biz, permission) {
		return shared.NewDomainError(shared.CodeForbidden, fmt.Sprintf("missing permission %s", permission))
	}
	return nil
}

// loadLots fetches the origin purchase lines referenced by lot_no_line_id
func (s *Service) loadLots(ctx context.Context, repos TransactionalRepositories, tenantID, originID uuid.UUID, lines []transfer.LineInput) (map[uuid.UUID]*transfer.PurchaseLine, error) {
	var ids []uuid.UUID
	for _, l := range lines {
		if l.LotNoLineID != nil {
			ids = append(ids, *l.LotNoLineID)
		}
	}
	lots := make(map[uuid.UUID]*transfer.PurchaseLine, len(ids))
	if len(ids) == 0 {
		return lots, nil
	}

	found, err := repos.PurchaseLineRepo().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("load lots: %w", err)
	}
	for i := range found {
		lots[found[i].ID] = &found[i]
	}
	locations, err := repos.PurchaseLineRepo().FindLocations(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("load lot locations: %w", err)
	}
	for _, l := range lines {
		if l.LotNoLineID == nil {
			continue
		}
		lot, ok := lots[*l.LotNoLineID]
		if !ok {
			return nil, transfer.NewValidationError("lot %s does not exist", *l.LotNoLineID)
		}
		if lot.VariationID != l.VariationID {
			return nil, transfer.NewValidationError("lot %s belongs to another variation", lot.ID)
		}
		if locations[lot.ID] != originID {
			return nil, transfer.NewValidationError("lot %s is not held at the origin location", lot.ID)
		}
	}
	return lots, nil
}

// resolveRefNo generates a reference number when none is given and rejects
// one already used by another transfer
func (s *Service) resolveRefNo(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, refNo, current string) (string, error) {
	if refNo == "" {
		return s.refNos.Next(ctx, repos.TransferRepo(), tenantID, transfer.KindSellTransfer)
	}
	if refNo == current {
		return refNo, nil
	}
	exists, err := repos.TransferRepo().ExistsByRefNo(ctx, tenantID, transfer.KindSellTransfer, refNo)
	if err != nil {
		return "", err
	}
	if exists {
		return "", shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("reference number %s is already in use", refNo))
	}
	return refNo, nil
}

func (s *Service) saveHeaders(ctx context.Context, repos TransactionalRepositories, pair *transfer.Pair) error {
	pair.Sell.RecalculateTotals()
	pair.Purchase.RecalculateTotals()
	if err := repos.TransferRepo().SaveHeaderWithLock(ctx, pair.Sell); err != nil {
		return err
	}
	return repos.TransferRepo().SaveHeaderWithLock(ctx, pair.Purchase)
}

func (s *Service) saveLineChanges(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, c transfer.LineChanges) error {
	if len(c.SellRemoved) > 0 {
		ids := make([]uuid.UUID, 0, len(c.SellRemoved))
		for _, l := range c.SellRemoved {
			ids = append(ids, l.ID)
		}
		if err := repos.LinkRepo().DeleteBySellLineIDs(ctx, tenantID, ids); err != nil {
			return err
		}
		if err := repos.SellLineRepo().Delete(ctx, tenantID, ids); err != nil {
			return err
		}
	}
	if len(c.PurchaseRemoved) > 0 {
		ids := make([]uuid.UUID, 0, len(c.PurchaseRemoved))
		for _, l := range c.PurchaseRemoved {
			ids = append(ids, l.ID)
		}
		if err := repos.PurchaseLineRepo().Delete(ctx, tenantID, ids); err != nil {
			return err
		}
	}
	if len(c.SellUpdated) > 0 {
		if err := repos.SellLineRepo().Update(ctx, c.SellUpdated...); err != nil {
			return err
		}
	}
	if len(c.SellAdded) > 0 {
		if err := repos.SellLineRepo().Create(ctx, c.SellAdded...); err != nil {
			return err
		}
	}
	if len(c.PurchaseUpdated) > 0 {
		if err := repos.PurchaseLineRepo().Update(ctx, c.PurchaseUpdated...); err != nil {
			return err
		}
	}
	if len(c.PurchaseAdded) > 0 {
		if err := repos.PurchaseLineRepo().Create(ctx, c.PurchaseAdded...); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) recordActivity(ctx context.Context, repos TransactionalRepositories, biz shared.BusinessContext, pair *transfer.Pair, action transfer.ActivityAction, before *transfer.Snapshot) error {
	activity, err := transfer.NewActivity(biz.TenantID, pair.ID(), actorOf(biz), action, before, "")
	if err != nil {
		return err
	}
	return repos.ActivityRepo().Create(ctx, activity)
}

// publish hands events to the publisher. Publishing happens after commit,
// so a failure is logged and never undoes the operation.
func (s *Service) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish transfer events", zap.Int("count", len(events)), zap.Error(err))
	}
}

func (s *Service) removeObjects(ctx context.Context, keys []string) {
	if s.storage == nil {
		return
	}
	for _, key := range keys {
		if err := s.storage.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("failed to delete shipping document object", zap.String("storage_key", key), zap.Error(err))
		}
	}
}

// fail passes domain errors through and hides everything else behind
// ERR_INTERNAL after logging it
func (s *Service) fail(op string, id uuid.UUID, err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Error("transfer operation failed",
		zap.String("operation", op),
		zap.String("entity_id", id.String()),
		zap.Error(err),
	)
	return shared.ErrInternal
}

func actorOf(biz shared.BusinessContext) uuid.UUID {
	return biz.UserID
}

func (s *Service) costStrategy() strategy.CostCalculationStrategy {
	if s.strategies == nil {
		return nil
	}
	cost, err := s.strategies.GetCostStrategy(CostMethod)
	if err != nil {
		return nil
	}
	return cost
}

func (s *Service) ledgerFor(repos TransactionalRepositories) *appledger.Ledger {
	return appledger.New(repos, s.costStrategy(), s.logger)
}
