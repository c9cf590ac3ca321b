package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/erp/stocktransfer/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTransactionRepository implements transfer.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindPair loads a transfer by its sell_transfer id together with the
// purchase_transfer sibling and all lines of both sides
func (r *GormTransactionRepository) FindPair(ctx context.Context, tenantID, sellID uuid.UUID) (*transfer.Pair, error) {
	var sell models.TransactionModel
	if err := r.db.WithContext(ctx).
		Preload("SellLines", orderLines).
		Where("tenant_id = ? AND id = ? AND kind = ?", tenantID, sellID, string(transfer.KindSellTransfer)).
		First(&sell).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	var purchase models.TransactionModel
	if err := r.db.WithContext(ctx).
		Preload("PurchaseLines", orderLines).
		Where("tenant_id = ? AND transfer_parent_id = ? AND kind = ?", tenantID, sellID, string(transfer.KindPurchaseTransfer)).
		First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Transfer is missing its receiving side")
		}
		return nil, err
	}

	return &transfer.Pair{Sell: sell.ToDomain(), Purchase: purchase.ToDomain()}, nil
}

// FindByIDForTenant loads a single transaction with its lines
func (r *GormTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*transfer.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Preload("SellLines", orderLines).
		Preload("PurchaseLines", orderLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListTransfers returns sell_transfer headers matching the filter.
// A location filter matches either end of the transfer.
func (r *GormTransactionRepository) ListTransfers(ctx context.Context, tenantID uuid.UUID, filter transfer.ListFilter) ([]transfer.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("tenant_id = ? AND kind = ?", tenantID, string(transfer.KindSellTransfer))

	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.StoredValue(transfer.KindSellTransfer))
	}
	if filter.LocationID != nil {
		destinations := r.db.Model(&models.TransactionModel{}).
			Select("transfer_parent_id").
			Where("tenant_id = ? AND kind = ? AND location_id = ?", tenantID, string(transfer.KindPurchaseTransfer), *filter.LocationID)
		query = query.Where("location_id = ? OR id IN (?)", *filter.LocationID, destinations)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(ref_no) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Scopes(pageAndSort(filter.Filter, transferSortColumns, "transaction_date", "created_at"))

	var rows []models.TransactionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]transfer.Transaction, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// ExistsByRefNo checks if a reference number is in use for the kind
func (r *GormTransactionRepository) ExistsByRefNo(ctx context.Context, tenantID uuid.UUID, kind transfer.Kind, refNo string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("tenant_id = ? AND kind = ? AND ref_no = ?", tenantID, string(kind), refNo).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a transaction and its lines
func (r *GormTransactionRepository) Create(ctx context.Context, t *transfer.Transaction) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(models.TransactionModelFromDomain(t)).Error; err != nil {
		return err
	}
	sellLines := make([]*transfer.SellLine, len(t.SellLines))
	for i := range t.SellLines {
		sellLines[i] = &t.SellLines[i]
	}
	if err := NewGormSellLineRepository(db).Create(ctx, sellLines...); err != nil {
		return err
	}
	purchaseLines := make([]*transfer.PurchaseLine, len(t.PurchaseLines))
	for i := range t.PurchaseLines {
		purchaseLines[i] = &t.PurchaseLines[i]
	}
	return NewGormPurchaseLineRepository(db).Create(ctx, purchaseLines...)
}

// SaveHeaderWithLock updates the header columns if the stored version
// matches t.Version, then bumps t.Version
func (r *GormTransactionRepository) SaveHeaderWithLock(ctx context.Context, t *transfer.Transaction) error {
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", t.TenantID, t.ID, t.Version).
		Updates(map[string]interface{}{
			"location_id":      t.LocationID,
			"status":           t.Status,
			"ref_no":           t.RefNo,
			"transaction_date": t.TransactionDate,
			"shipping_charges": t.ShippingCharges,
			"total_before_tax": t.TotalBeforeTax,
			"final_total":      t.FinalTotal,
			"additional_notes": t.AdditionalNotes,
			"version":          t.Version + 1,
			"updated_at":       t.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeOptimisticLock, "Transaction was modified by another transaction")
	}
	t.Version++
	return nil
}

// Delete removes a transaction and its lines
func (r *GormTransactionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("tenant_id = ? AND transaction_id = ?", tenantID, id).Delete(&models.SellLineModel{}).Error; err != nil {
		return err
	}
	if err := db.Where("tenant_id = ? AND transaction_id = ?", tenantID, id).Delete(&models.PurchaseLineModel{}).Error; err != nil {
		return err
	}
	result := db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.TransactionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormSellLineRepository implements transfer.SellLineRepository using GORM
type GormSellLineRepository struct {
	db *gorm.DB
}

// NewGormSellLineRepository creates a new GormSellLineRepository
func NewGormSellLineRepository(db *gorm.DB) *GormSellLineRepository {
	return &GormSellLineRepository{db: db}
}

// Create inserts sell lines
func (r *GormSellLineRepository) Create(ctx context.Context, lines ...*transfer.SellLine) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]*models.SellLineModel, len(lines))
	for i, l := range lines {
		rows[i] = models.SellLineModelFromDomain(l)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// Update writes the mutable columns of sell lines
func (r *GormSellLineRepository) Update(ctx context.Context, lines ...*transfer.SellLine) error {
	db := r.db.WithContext(ctx)
	for _, l := range lines {
		result := db.Model(&models.SellLineModel{}).
			Where("tenant_id = ? AND id = ?", l.TenantID, l.ID).
			Updates(map[string]interface{}{
				"product_id":           l.ProductID,
				"variation_id":         l.VariationID,
				"quantity":             l.Quantity,
				"unit_price":           l.UnitPrice,
				"lot_no_line_id":       l.LotNoLineID,
				"sub_unit_id":          l.SubUnitID,
				"base_unit_multiplier": l.Multiplier(),
				"enable_stock":         l.EnableStock,
				"updated_at":           l.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
	}
	return nil
}

// Delete removes sell lines by id
func (r *GormSellLineRepository) Delete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Delete(&models.SellLineModel{}).Error
}

// FindCompletedAt returns stock-moving sell lines of completed sell_transfer
// transactions at a location for a variation, oldest transaction first
func (r *GormSellLineRepository) FindCompletedAt(ctx context.Context, tenantID, locationID, variationID uuid.UUID) ([]transfer.SellLine, error) {
	var rows []models.SellLineModel
	if err := r.db.WithContext(ctx).
		Model(&models.SellLineModel{}).
		Select("transaction_sell_lines.*").
		Joins("JOIN transactions t ON t.id = transaction_sell_lines.transaction_id").
		Where("transaction_sell_lines.tenant_id = ? AND transaction_sell_lines.variation_id = ? AND transaction_sell_lines.enable_stock = ?",
			tenantID, variationID, true).
		Where("t.kind = ? AND t.status = ? AND t.location_id = ?",
			string(transfer.KindSellTransfer), transfer.SellStatusFinal, locationID).
		Order("t.transaction_date ASC, t.created_at ASC, transaction_sell_lines.created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]transfer.SellLine, len(rows))
	for i := range rows {
		lines[i] = *rows[i].ToDomain()
	}
	return lines, nil
}

// GormPurchaseLineRepository implements transfer.PurchaseLineRepository using GORM
type GormPurchaseLineRepository struct {
	db *gorm.DB
}

// NewGormPurchaseLineRepository creates a new GormPurchaseLineRepository
func NewGormPurchaseLineRepository(db *gorm.DB) *GormPurchaseLineRepository {
	return &GormPurchaseLineRepository{db: db}
}

// FindByIDs loads purchase lines by id
func (r *GormPurchaseLineRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]transfer.PurchaseLine, error) {
	if len(ids) == 0 {
		return []transfer.PurchaseLine{}, nil
	}
	var rows []models.PurchaseLineModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]transfer.PurchaseLine, len(rows))
	for i := range rows {
		lines[i] = *rows[i].ToDomain()
	}
	return lines, nil
}

// FindLocations maps purchase line ids to the location of their transaction
func (r *GormPurchaseLineRepository) FindLocations(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	locations := make(map[uuid.UUID]uuid.UUID, len(ids))
	if len(ids) == 0 {
		return locations, nil
	}
	var rows []struct {
		ID         uuid.UUID
		LocationID uuid.UUID
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseLineModel{}).
		Select("purchase_lines.id AS id, t.location_id AS location_id").
		Joins("JOIN transactions t ON t.id = purchase_lines.transaction_id").
		Where("purchase_lines.tenant_id = ? AND purchase_lines.id IN ?", tenantID, ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		locations[row.ID] = row.LocationID
	}
	return locations, nil
}

// FindAvailable returns purchase lines with unallocated quantity that belong
// to received supply transactions at the location
func (r *GormPurchaseLineRepository) FindAvailable(ctx context.Context, tenantID, locationID, variationID uuid.UUID) ([]transfer.SupplyLine, error) {
	kinds := make([]string, 0, len(transfer.SupplyKinds()))
	for _, k := range transfer.SupplyKinds() {
		kinds = append(kinds, string(k))
	}

	var rows []models.SupplyLineRow
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseLineModel{}).
		Select("purchase_lines.*, t.transaction_date AS received_at").
		Joins("JOIN transactions t ON t.id = purchase_lines.transaction_id").
		Where("purchase_lines.tenant_id = ? AND purchase_lines.variation_id = ? AND purchase_lines.quantity_sold < purchase_lines.quantity",
			tenantID, variationID).
		Where("t.kind IN ? AND t.status = ? AND t.location_id = ?", kinds, transfer.PurchaseStatusReceived, locationID).
		Order("t.transaction_date ASC, purchase_lines.created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]transfer.SupplyLine, len(rows))
	for i := range rows {
		lines[i] = rows[i].ToDomain()
	}
	return lines, nil
}

// Create inserts purchase lines
func (r *GormPurchaseLineRepository) Create(ctx context.Context, lines ...*transfer.PurchaseLine) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]*models.PurchaseLineModel, len(lines))
	for i, l := range lines {
		rows[i] = models.PurchaseLineModelFromDomain(l)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// Update writes the mutable columns of purchase lines. Each line must still
// carry the stored version; the in-memory version is bumped on success.
func (r *GormPurchaseLineRepository) Update(ctx context.Context, lines ...*transfer.PurchaseLine) error {
	db := r.db.WithContext(ctx)
	for _, l := range lines {
		result := db.Model(&models.PurchaseLineModel{}).
			Where("tenant_id = ? AND id = ? AND version = ?", l.TenantID, l.ID, l.Version).
			Updates(map[string]interface{}{
				"product_id":     l.ProductID,
				"variation_id":   l.VariationID,
				"quantity":       l.Quantity,
				"purchase_price": l.PurchasePrice,
				"lot_number":     l.LotNumber,
				"mfg_date":       l.MfgDate,
				"exp_date":       l.ExpDate,
				"sub_unit_id":    l.SubUnitID,
				"version":        l.Version + 1,
				"updated_at":     l.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeOptimisticLock, "Purchase line was modified by another transaction")
		}
		l.Version++
	}
	return nil
}

// SaveQuantitySold writes quantity_sold if the stored version matches
func (r *GormPurchaseLineRepository) SaveQuantitySold(ctx context.Context, line *transfer.PurchaseLine) error {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseLineModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", line.TenantID, line.ID, line.Version).
		Updates(map[string]interface{}{
			"quantity_sold": line.QuantitySold,
			"version":       line.Version + 1,
			"updated_at":    line.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeOptimisticLock, "Purchase line was allocated by another transaction")
	}
	line.Version++
	return nil
}

// Delete removes purchase lines by id
func (r *GormPurchaseLineRepository) Delete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Delete(&models.PurchaseLineModel{}).Error
}

// GormLinkRepository implements transfer.LinkRepository using GORM
type GormLinkRepository struct {
	db *gorm.DB
}

// NewGormLinkRepository creates a new GormLinkRepository
func NewGormLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// FindBySellLineIDs returns links for the given sell lines
func (r *GormLinkRepository) FindBySellLineIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]transfer.SellPurchaseLink, error) {
	if len(ids) == 0 {
		return []transfer.SellPurchaseLink{}, nil
	}
	var rows []models.SellPurchaseLinkModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sell_line_id IN ?", tenantID, ids).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	links := make([]transfer.SellPurchaseLink, len(rows))
	for i := range rows {
		links[i] = *rows[i].ToDomain()
	}
	return links, nil
}

// Create inserts links. A concurrent insert of the same sell/purchase pair
// is reported as an optimistic lock failure so the unit of work is retried.
func (r *GormLinkRepository) Create(ctx context.Context, links ...*transfer.SellPurchaseLink) error {
	if len(links) == 0 {
		return nil
	}
	rows := make([]*models.SellPurchaseLinkModel, len(links))
	for i, l := range links {
		rows[i] = models.SellPurchaseLinkModelFromDomain(l)
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return conflictAsLockFailure(err, "Sell line was linked by another transaction")
	}
	return nil
}

// UpdateQuantity writes the quantity of existing links
func (r *GormLinkRepository) UpdateQuantity(ctx context.Context, links ...*transfer.SellPurchaseLink) error {
	db := r.db.WithContext(ctx)
	for _, l := range links {
		result := db.Model(&models.SellPurchaseLinkModel{}).
			Where("tenant_id = ? AND id = ?", l.TenantID, l.ID).
			Updates(map[string]interface{}{
				"quantity":   l.Quantity,
				"updated_at": l.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeOptimisticLock, "Link was removed by another transaction")
		}
	}
	return nil
}

// DeleteBySellLineIDs removes all links for the given sell lines
func (r *GormLinkRepository) DeleteBySellLineIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND sell_line_id IN ?", tenantID, ids).
		Delete(&models.SellPurchaseLinkModel{}).Error
}

// GormActivityRepository implements transfer.ActivityRepository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Create appends an activity
func (r *GormActivityRepository) Create(ctx context.Context, a *transfer.Activity) error {
	return r.db.WithContext(ctx).Create(models.ActivityModelFromDomain(a)).Error
}

// FindBySubject returns the activity of a subject, oldest first
func (r *GormActivityRepository) FindBySubject(ctx context.Context, tenantID, subjectID uuid.UUID) ([]transfer.Activity, error) {
	var rows []models.ActivityModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND subject_id = ?", tenantID, subjectID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]transfer.Activity, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// GormShippingDocumentRepository implements transfer.ShippingDocumentRepository using GORM
type GormShippingDocumentRepository struct {
	db *gorm.DB
}

// NewGormShippingDocumentRepository creates a new GormShippingDocumentRepository
func NewGormShippingDocumentRepository(db *gorm.DB) *GormShippingDocumentRepository {
	return &GormShippingDocumentRepository{db: db}
}

// Create stores document metadata
func (r *GormShippingDocumentRepository) Create(ctx context.Context, doc *transfer.ShippingDocument) error {
	if err := r.db.WithContext(ctx).Create(models.ShippingDocumentModelFromDomain(doc)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByTransaction returns the documents of a transaction
func (r *GormShippingDocumentRepository) FindByTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) ([]transfer.ShippingDocument, error) {
	var rows []models.ShippingDocumentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND transaction_id = ?", tenantID, transactionID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]transfer.ShippingDocument, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, nil
}

// DeleteByTransaction removes the documents of a transaction and returns them
func (r *GormShippingDocumentRepository) DeleteByTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) ([]transfer.ShippingDocument, error) {
	docs, err := r.FindByTransaction(ctx, tenantID, transactionID)
	if err != nil || len(docs) == 0 {
		return docs, err
	}
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND transaction_id = ?", tenantID, transactionID).
		Delete(&models.ShippingDocumentModel{}).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func conflictAsLockFailure(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.CodeOptimisticLock, message)
	}
	return err
}

// Ensure the repositories implement the domain interfaces
var (
	_ transfer.TransactionRepository      = (*GormTransactionRepository)(nil)
	_ transfer.SellLineRepository         = (*GormSellLineRepository)(nil)
	_ transfer.PurchaseLineRepository     = (*GormPurchaseLineRepository)(nil)
	_ transfer.LinkRepository             = (*GormLinkRepository)(nil)
	_ transfer.ActivityRepository         = (*GormActivityRepository)(nil)
	_ transfer.ShippingDocumentRepository = (*GormShippingDocumentRepository)(nil)
)
