package transfer

import (
	"time"

	"github.com/erp/stocktransfer/internal/domain/ledger"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferLineRequest is one line of a create or update request
type TransferLineRequest struct {
	ProductID          uuid.UUID       `json:"product_id" binding:"required"`
	VariationID        uuid.UUID       `json:"variation_id" binding:"required"`
	Quantity           decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	LotNoLineID        *uuid.UUID      `json:"lot_no_line_id"`
	SubUnitID          *uuid.UUID      `json:"sub_unit_id"`
	BaseUnitMultiplier decimal.Decimal `json:"base_unit_multiplier"`
	EnableStock        *bool           `json:"enable_stock"`
}

// TransferRequest creates or replaces a transfer
type TransferRequest struct {
	OriginLocationID      uuid.UUID             `json:"origin_location_id" binding:"required"`
	DestinationLocationID uuid.UUID             `json:"destination_location_id" binding:"required"`
	RefNo                 string                `json:"ref_no" binding:"max=64"`
	TransactionDate       *time.Time            `json:"transaction_date"`
	Status                string                `json:"status" binding:"required"`
	ShippingCharges       decimal.Decimal       `json:"shipping_charges"`
	AdditionalNotes       string                `json:"additional_notes" binding:"max=2000"`
	Lines                 []TransferLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ChangeStatusRequest moves a transfer to a new status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TransferListFilter represents filter options for the transfer list
type TransferListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=pending in_transit completed"`
	LocationID *uuid.UUID `form:"-"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TransferLineResponse is a transfer line with its destination counterpart
type TransferLineResponse struct {
	ID                 uuid.UUID       `json:"id"`
	PurchaseLineID     *uuid.UUID      `json:"purchase_line_id,omitempty"`
	ProductID          uuid.UUID       `json:"product_id"`
	VariationID        uuid.UUID       `json:"variation_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	BaseQuantity       decimal.Decimal `json:"base_quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	LineTotal          decimal.Decimal `json:"line_total"`
	LotNoLineID        *uuid.UUID      `json:"lot_no_line_id,omitempty"`
	LotNumber          string          `json:"lot_number,omitempty"`
	SubUnitID          *uuid.UUID      `json:"sub_unit_id,omitempty"`
	BaseUnitMultiplier decimal.Decimal `json:"base_unit_multiplier"`
	EnableStock        bool            `json:"enable_stock"`
	QuantitySold       decimal.Decimal `json:"quantity_sold"`
}

// TransferResponse represents a transfer in API responses
type TransferResponse struct {
	ID                    uuid.UUID              `json:"id"`
	PurchaseTransactionID uuid.UUID              `json:"purchase_transaction_id"`
	RefNo                 string                 `json:"ref_no"`
	Status                transfer.Status        `json:"status"`
	OriginLocationID      uuid.UUID              `json:"origin_location_id"`
	DestinationLocationID uuid.UUID              `json:"destination_location_id"`
	TransactionDate       time.Time              `json:"transaction_date"`
	ShippingCharges       decimal.Decimal        `json:"shipping_charges"`
	TotalBeforeTax        decimal.Decimal        `json:"total_before_tax"`
	FinalTotal            decimal.Decimal        `json:"final_total"`
	AdditionalNotes       string                 `json:"additional_notes,omitempty"`
	Lines                 []TransferLineResponse `json:"lines"`
	CreatedBy             *uuid.UUID             `json:"created_by,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
	Version               int                    `json:"version"`
}

// TransferListItemResponse is a transfer header in list responses
type TransferListItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	RefNo            string          `json:"ref_no"`
	Status           transfer.Status `json:"status"`
	OriginLocationID uuid.UUID       `json:"origin_location_id"`
	TransactionDate  time.Time       `json:"transaction_date"`
	FinalTotal       decimal.Decimal `json:"final_total"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ReceiptLineRequest is one received line
type ReceiptLineRequest struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	VariationID   uuid.UUID       `json:"variation_id" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	LotNumber     string          `json:"lot_number" binding:"max=64"`
	MfgDate       *time.Time      `json:"mfg_date"`
	ExpDate       *time.Time      `json:"exp_date"`
}

// ReceiveStockRequest records supply arriving at a location
type ReceiveStockRequest struct {
	LocationID      uuid.UUID            `json:"location_id" binding:"required"`
	RefNo           string               `json:"ref_no" binding:"max=64"`
	TransactionDate *time.Time           `json:"transaction_date"`
	AdditionalNotes string               `json:"additional_notes" binding:"max=2000"`
	Lines           []ReceiptLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReceiptLineResponse is a received purchase line
type ReceiptLineResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	VariationID   uuid.UUID       `json:"variation_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	QuantitySold  decimal.Decimal `json:"quantity_sold"`
	LotNumber     string          `json:"lot_number,omitempty"`
	MfgDate       *time.Time      `json:"mfg_date,omitempty"`
	ExpDate       *time.Time      `json:"exp_date,omitempty"`
}

// ReceiptResponse represents a stock receipt
type ReceiptResponse struct {
	ID              uuid.UUID             `json:"id"`
	RefNo           string                `json:"ref_no"`
	LocationID      uuid.UUID             `json:"location_id"`
	TransactionDate time.Time             `json:"transaction_date"`
	FinalTotal      decimal.Decimal       `json:"final_total"`
	Lines           []ReceiptLineResponse `json:"lines"`
	// LinkedToOversold is the quantity that covered earlier oversold lines
	LinkedToOversold decimal.Decimal `json:"linked_to_oversold"`
	CreatedAt        time.Time       `json:"created_at"`
}

// StockFilter narrows a quantity-at-location query
type StockFilter struct {
	LocationID  *uuid.UUID `form:"-"`
	ProductID   *uuid.UUID `form:"-"`
	VariationID *uuid.UUID `form:"-"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// StockResponse is the on-hand quantity of a variation at a location
type StockResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	VariationID uuid.UUID       `json:"variation_id"`
	LocationID  uuid.UUID       `json:"location_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ShippingDocumentRequest asks for an upload URL
type ShippingDocumentRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required,min=1"`
}

// ShippingDocumentResponse is a document with a presigned URL
type ShippingDocumentResponse struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	FileName      string    `json:"file_name"`
	ContentType   string    `json:"content_type"`
	FileSize      int64     `json:"file_size"`
	UploadURL     string    `json:"upload_url,omitempty"`
	DownloadURL   string    `json:"download_url,omitempty"`
	URLExpiresAt  time.Time `json:"url_expires_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r TransferRequest) toInput(now time.Time) (transfer.PairInput, error) {
	status, err := transfer.ParseStatus(r.Status)
	if err != nil {
		return transfer.PairInput{}, err
	}
	date := now
	if r.TransactionDate != nil {
		date = *r.TransactionDate
	}
	lines := make([]transfer.LineInput, 0, len(r.Lines))
	for _, l := range r.Lines {
		enable := true
		if l.EnableStock != nil {
			enable = *l.EnableStock
		}
		lines = append(lines, transfer.LineInput{
			ProductID:          l.ProductID,
			VariationID:        l.VariationID,
			Quantity:           l.Quantity,
			UnitPrice:          l.UnitPrice,
			LotNoLineID:        l.LotNoLineID,
			SubUnitID:          l.SubUnitID,
			BaseUnitMultiplier: l.BaseUnitMultiplier,
			EnableStock:        enable,
		})
	}
	return transfer.PairInput{
		OriginLocationID:      r.OriginLocationID,
		DestinationLocationID: r.DestinationLocationID,
		RefNo:                 r.RefNo,
		TransactionDate:       date,
		Status:                status,
		ShippingCharges:       r.ShippingCharges,
		AdditionalNotes:       r.AdditionalNotes,
		Lines:                 lines,
	}, nil
}

func (r ReceiveStockRequest) toInput(now time.Time) transfer.ReceiptInput {
	date := now
	if r.TransactionDate != nil {
		date = *r.TransactionDate
	}
	lines := make([]transfer.ReceiptLineInput, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, transfer.ReceiptLineInput{
			ProductID:     l.ProductID,
			VariationID:   l.VariationID,
			Quantity:      l.Quantity,
			PurchasePrice: l.PurchasePrice,
			LotNumber:     l.LotNumber,
			MfgDate:       l.MfgDate,
			ExpDate:       l.ExpDate,
		})
	}
	return transfer.ReceiptInput{
		LocationID:      r.LocationID,
		RefNo:           r.RefNo,
		TransactionDate: date,
		AdditionalNotes: r.AdditionalNotes,
		Lines:           lines,
	}
}

// ToTransferResponse converts a pair to its response
func ToTransferResponse(p *transfer.Pair) *TransferResponse {
	purchaseByVariation := make(map[uuid.UUID]*transfer.PurchaseLine, len(p.Purchase.PurchaseLines))
	for i := range p.Purchase.PurchaseLines {
		purchaseByVariation[p.Purchase.PurchaseLines[i].VariationID] = &p.Purchase.PurchaseLines[i]
	}

	lines := make([]TransferLineResponse, 0, len(p.Sell.SellLines))
	for i := range p.Sell.SellLines {
		sl := &p.Sell.SellLines[i]
		line := TransferLineResponse{
			ID:                 sl.ID,
			ProductID:          sl.ProductID,
			VariationID:        sl.VariationID,
			Quantity:           sl.Quantity,
			BaseQuantity:       sl.BaseQuantity(),
			UnitPrice:          sl.UnitPrice,
			LineTotal:          sl.LineTotal(),
			LotNoLineID:        sl.LotNoLineID,
			SubUnitID:          sl.SubUnitID,
			BaseUnitMultiplier: sl.Multiplier(),
			EnableStock:        sl.EnableStock,
			QuantitySold:       decimal.Zero,
		}
		if pl, ok := purchaseByVariation[sl.VariationID]; ok {
			id := pl.ID
			line.PurchaseLineID = &id
			line.LotNumber = pl.LotNumber
			line.QuantitySold = pl.QuantitySold
		}
		lines = append(lines, line)
	}

	return &TransferResponse{
		ID:                    p.Sell.ID,
		PurchaseTransactionID: p.Purchase.ID,
		RefNo:                 p.Sell.RefNo,
		Status:                p.Status(),
		OriginLocationID:      p.Sell.LocationID,
		DestinationLocationID: p.Purchase.LocationID,
		TransactionDate:       p.Sell.TransactionDate,
		ShippingCharges:       p.Sell.ShippingCharges,
		TotalBeforeTax:        p.Sell.TotalBeforeTax,
		FinalTotal:            p.Sell.FinalTotal,
		AdditionalNotes:       p.Sell.AdditionalNotes,
		Lines:                 lines,
		CreatedBy:             p.Sell.CreatedBy,
		CreatedAt:             p.Sell.CreatedAt,
		UpdatedAt:             p.Sell.UpdatedAt,
		Version:               p.Sell.Version,
	}
}

// ToTransferListItemResponse converts a sell_transfer header to a list item
func ToTransferListItemResponse(t *transfer.Transaction) TransferListItemResponse {
	return TransferListItemResponse{
		ID:               t.ID,
		RefNo:            t.RefNo,
		Status:           t.TransferStatus(),
		OriginLocationID: t.LocationID,
		TransactionDate:  t.TransactionDate,
		FinalTotal:       t.FinalTotal,
		UpdatedAt:        t.UpdatedAt,
	}
}

// ToReceiptResponse converts a purchase transaction to its response
func ToReceiptResponse(t *transfer.Transaction, linked decimal.Decimal) *ReceiptResponse {
	lines := make([]ReceiptLineResponse, 0, len(t.PurchaseLines))
	for _, l := range t.PurchaseLines {
		lines = append(lines, ReceiptLineResponse{
			ID:            l.ID,
			ProductID:     l.ProductID,
			VariationID:   l.VariationID,
			Quantity:      l.Quantity,
			PurchasePrice: l.PurchasePrice,
			QuantitySold:  l.QuantitySold,
			LotNumber:     l.LotNumber,
			MfgDate:       l.MfgDate,
			ExpDate:       l.ExpDate,
		})
	}
	return &ReceiptResponse{
		ID:               t.ID,
		RefNo:            t.RefNo,
		LocationID:       t.LocationID,
		TransactionDate:  t.TransactionDate,
		FinalTotal:       t.FinalTotal,
		Lines:            lines,
		LinkedToOversold: linked,
		CreatedAt:        t.CreatedAt,
	}
}

// ToStockResponse converts a ledger row
func ToStockResponse(q *ledger.VariationLocationQuantity) StockResponse {
	return StockResponse{
		ProductID:   q.ProductID,
		VariationID: q.VariationID,
		LocationID:  q.LocationID,
		Quantity:    q.Quantity,
		AverageCost: q.AverageCost,
		UpdatedAt:   q.UpdatedAt,
	}
}
