package transfer

import (
	"context"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/shared/strategy"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/google/uuid"
)

// Permissions checked by the transfer service
const (
	PermissionCreate       = "stock_transfer:create"
	PermissionRead         = "stock_transfer:read"
	PermissionUpdate       = "stock_transfer:update"
	PermissionDelete       = "stock_transfer:delete"
	PermissionReceiveStock = "stock_receipt:create"
	PermissionStockRead    = "stock:read"
)

// Authorizer decides whether the caller may perform an action
type Authorizer interface {
	Can(biz shared.BusinessContext, permission string) bool
}

// ContextAuthorizer authorizes from the permissions carried by the business context
type ContextAuthorizer struct{}

// Can reports whether biz holds permission
func (ContextAuthorizer) Can(biz shared.BusinessContext, permission string) bool {
	return biz.Can(permission)
}

// Notifier sends a transfer notification. It returns the delivery id when
// one was queued.
type Notifier interface {
	Notify(ctx context.Context, event *transfer.TransferEvent) (*string, error)
}

// StrategyProvider resolves lot and cost strategies by name
type StrategyProvider interface {
	GetLotStrategyOrDefault(name string) strategy.LotSelectionStrategy
	GetCostStrategy(name string) (strategy.CostCalculationStrategy, error)
}

// ObjectStorageService issues presigned URLs for shipping documents
type ObjectStorageService interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// RefNoGenerator produces reference numbers for new transactions
type RefNoGenerator interface {
	Next(ctx context.Context, repo transfer.TransactionRepository, tenantID uuid.UUID, kind transfer.Kind) (string, error)
}

// Metrics records transfer outcomes
type Metrics interface {
	RecordCompletion(ctx context.Context, tenantID uuid.UUID, lines int)
	RecordShortfall(ctx context.Context, tenantID uuid.UUID)
}
