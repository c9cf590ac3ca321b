package persistence

import (
	"context"

	apptransfer "github.com/erp/stocktransfer/internal/application/transfer"
	"github.com/erp/stocktransfer/internal/domain/ledger"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"gorm.io/gorm"
)

// GormTransferScope implements the transfer TransactionScope using GORM transactions.
// Every repository handed to fn shares the same database transaction.
type GormTransferScope struct {
	db *gorm.DB
}

// NewGormTransferScope creates a new GormTransferScope
func NewGormTransferScope(db *gorm.DB) *GormTransferScope {
	return &GormTransferScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransferScope) Execute(ctx context.Context, fn func(repos apptransfer.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransferRepositories{tx: tx})
	})
}

// NewGormTransferRepositories returns repositories bound to db outside of any
// transaction, used for reads
func NewGormTransferRepositories(db *gorm.DB) apptransfer.TransactionalRepositories {
	return &gormTransferRepositories{tx: db}
}

// gormTransferRepositories provides access to all repositories within a transaction
type gormTransferRepositories struct {
	tx *gorm.DB
}

func (r *gormTransferRepositories) QuantityRepo() ledger.QuantityRepository {
	return NewGormQuantityRepository(r.tx)
}

func (r *gormTransferRepositories) MovementRepo() ledger.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormTransferRepositories) TransferRepo() transfer.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

func (r *gormTransferRepositories) SellLineRepo() transfer.SellLineRepository {
	return NewGormSellLineRepository(r.tx)
}

func (r *gormTransferRepositories) PurchaseLineRepo() transfer.PurchaseLineRepository {
	return NewGormPurchaseLineRepository(r.tx)
}

func (r *gormTransferRepositories) LinkRepo() transfer.LinkRepository {
	return NewGormLinkRepository(r.tx)
}

func (r *gormTransferRepositories) ActivityRepo() transfer.ActivityRepository {
	return NewGormActivityRepository(r.tx)
}

func (r *gormTransferRepositories) ShippingDocumentRepo() transfer.ShippingDocumentRepository {
	return NewGormShippingDocumentRepository(r.tx)
}

var (
	_ apptransfer.TransactionScope          = (*GormTransferScope)(nil)
	_ apptransfer.TransactionalRepositories = (*gormTransferRepositories)(nil)
)
