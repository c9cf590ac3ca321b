package transfer

import (
	"context"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
)

// ListFilter narrows a transfer listing
type ListFilter struct {
	shared.Filter
	Status     *Status
	LocationID *uuid.UUID
}

// TransactionRepository persists transactions together with their lines
type TransactionRepository interface {
	// FindPair loads a transfer by its sell_transfer id, both sides and all lines
	FindPair(ctx context.Context, tenantID, sellID uuid.UUID) (*Pair, error)

	// FindByIDForTenant loads a single transaction with its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)

	// ListTransfers returns sell_transfer headers matching the filter and the total count
	ListTransfers(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]Transaction, int64, error)

	// ExistsByRefNo checks if a reference number is in use for the kind
	ExistsByRefNo(ctx context.Context, tenantID uuid.UUID, kind Kind, refNo string) (bool, error)

	// Create inserts a transaction and its lines
	Create(ctx context.Context, t *Transaction) error

	// SaveHeaderWithLock updates header columns if the stored version matches
	// t.Version and bumps the version
	SaveHeaderWithLock(ctx context.Context, t *Transaction) error

	// Delete removes a transaction and its lines
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// SellLineRepository gives access to sell lines outside of their aggregate
type SellLineRepository interface {
	// Create inserts sell lines
	Create(ctx context.Context, lines ...*SellLine) error

	// Update writes the mutable columns of sell lines
	Update(ctx context.Context, lines ...*SellLine) error

	// Delete removes sell lines by id
	Delete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error

	// FindCompletedAt returns stock-moving sell lines of completed sell-side
	// transactions at a location for a variation, oldest transaction first
	FindCompletedAt(ctx context.Context, tenantID, locationID, variationID uuid.UUID) ([]SellLine, error)
}

// PurchaseLineRepository gives access to supply lines
type PurchaseLineRepository interface {
	// FindByIDs loads purchase lines by id
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]PurchaseLine, error)

	// FindLocations maps purchase line ids to the location of their transaction
	FindLocations(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)

	// FindAvailable returns purchase lines at a location for a variation that
	// belong to received supply transactions and still have unallocated quantity
	FindAvailable(ctx context.Context, tenantID, locationID, variationID uuid.UUID) ([]SupplyLine, error)

	// Create inserts purchase lines
	Create(ctx context.Context, lines ...*PurchaseLine) error

	// Update writes the mutable columns of purchase lines, checking versions
	Update(ctx context.Context, lines ...*PurchaseLine) error

	// SaveQuantitySold writes quantity_sold if the stored version matches
	SaveQuantitySold(ctx context.Context, line *PurchaseLine) error

	// Delete removes purchase lines by id
	Delete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error
}

// SupplyLine is a purchase line with the receipt date of its transaction
type SupplyLine struct {
	PurchaseLine
	ReceivedAt time.Time
}

// LinkRepository persists sell-purchase links
type LinkRepository interface {
	// FindBySellLineIDs returns links for the given sell lines
	FindBySellLineIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]SellPurchaseLink, error)

	// Create inserts links
	Create(ctx context.Context, links ...*SellPurchaseLink) error

	// UpdateQuantity writes the quantity of existing links
	UpdateQuantity(ctx context.Context, links ...*SellPurchaseLink) error

	// DeleteBySellLineIDs removes all links for the given sell lines
	DeleteBySellLineIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error
}

// ActivityRepository appends to the activity log
type ActivityRepository interface {
	Create(ctx context.Context, a *Activity) error
	FindBySubject(ctx context.Context, tenantID, subjectID uuid.UUID) ([]Activity, error)
}

// ShippingDocumentRepository stores shipping document metadata
type ShippingDocumentRepository interface {
	Create(ctx context.Context, doc *ShippingDocument) error
	FindByTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) ([]ShippingDocument, error)
	DeleteByTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) ([]ShippingDocument, error)
}
