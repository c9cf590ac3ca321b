package transfer

import (
	"context"

	appledger "github.com/erp/stocktransfer/internal/application/ledger"
	"github.com/erp/stocktransfer/internal/application/mapping"
	"github.com/erp/stocktransfer/internal/domain/transfer"
)

// TransactionScope runs a unit of work inside one database transaction.
// If fn returns an error, everything it wrote is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides every repository a transfer operation
// touches. All of them share the same underlying database transaction.
//
// Aggregate boundary notes:
//   - TransferRepo owns transaction headers and loads both sides of a pair.
//   - SellLineRepo and PurchaseLineRepo write line changes individually so a
//     matched line keeps its id, and quantity_sold is version checked.
//   - QuantityRepo and MovementRepo belong to the quantity ledger.
type TransactionalRepositories interface {
	appledger.Repositories
	mapping.Repositories
	TransferRepo() transfer.TransactionRepository
	ActivityRepo() transfer.ActivityRepository
	ShippingDocumentRepo() transfer.ShippingDocumentRepository
}

// NoOpTransactionScope runs fn against fixed repositories without a transaction.
type NoOpTransactionScope struct {
	repos TransactionalRepositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(repos TransactionalRepositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
