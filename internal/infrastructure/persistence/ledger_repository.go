package persistence

import (
	"context"
	"errors"

	"github.com/erp/stocktransfer/internal/domain/ledger"
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQuantityRepository implements ledger.QuantityRepository using GORM
type GormQuantityRepository struct {
	db *gorm.DB
}

// NewGormQuantityRepository creates a new GormQuantityRepository
func NewGormQuantityRepository(db *gorm.DB) *GormQuantityRepository {
	return &GormQuantityRepository{db: db}
}

// FindByKey finds the ledger row for a variation at a location
func (r *GormQuantityRepository) FindByKey(ctx context.Context, key ledger.Key) (*ledger.VariationLocationQuantity, error) {
	var model models.VariationLocationQuantityModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND variation_id = ? AND location_id = ?", key.TenantID, key.VariationID, key.LocationID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new ledger row
func (r *GormQuantityRepository) Create(ctx context.Context, q *ledger.VariationLocationQuantity) error {
	if err := r.db.WithContext(ctx).Create(models.VariationLocationQuantityModelFromDomain(q)).Error; err != nil {
		return conflictAsLockFailure(err, "Stock row was created by another transaction")
	}
	return nil
}

// SaveWithLock writes quantity and average cost if the stored version
// matches q.Version, then bumps q.Version
func (r *GormQuantityRepository) SaveWithLock(ctx context.Context, q *ledger.VariationLocationQuantity) error {
	result := r.db.WithContext(ctx).
		Model(&models.VariationLocationQuantityModel{}).
		Where("id = ? AND version = ?", q.ID, q.Version).
		Updates(map[string]interface{}{
			"quantity":     q.Quantity,
			"average_cost": q.AverageCost,
			"version":      q.Version + 1,
			"updated_at":   q.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeOptimisticLock, "Stock row was modified by another transaction")
	}
	q.Version++
	return nil
}

// List returns ledger rows matching the filter and the total count
func (r *GormQuantityRepository) List(ctx context.Context, tenantID uuid.UUID, filter ledger.QuantityFilter) ([]ledger.VariationLocationQuantity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.VariationLocationQuantityModel{}).
		Where("tenant_id = ?", tenantID)
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.VariationID != nil {
		query = query.Where("variation_id = ?", *filter.VariationID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Scopes(pageAndSort(filter.Filter, stockSortColumns, "updated_at", ""))

	var rows []models.VariationLocationQuantityModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]ledger.VariationLocationQuantity, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// GormMovementRepository implements ledger.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create appends a stock movement
func (r *GormMovementRepository) Create(ctx context.Context, m *ledger.StockMovement) error {
	return r.db.WithContext(ctx).Create(models.StockMovementModelFromDomain(m)).Error
}

// FindBySource returns the movements caused by a transaction
func (r *GormMovementRepository) FindBySource(ctx context.Context, tenantID, transactionID uuid.UUID) ([]ledger.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_transaction_id = ?", tenantID, transactionID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.StockMovement, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

var (
	_ ledger.QuantityRepository = (*GormQuantityRepository)(nil)
	_ ledger.MovementRepository = (*GormMovementRepository)(nil)
)
