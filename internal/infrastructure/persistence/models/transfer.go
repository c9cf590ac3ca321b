package models

import (
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for transfer sides and receipts
type TransactionModel struct {
	TenantAggregateModel
	Kind             string          `gorm:"type:varchar(32);not null;index:idx_transactions_kind_location,priority:1"`
	LocationID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_kind_location,priority:2"`
	TransferParentID *uuid.UUID      `gorm:"type:uuid;index"`
	Status           string          `gorm:"type:varchar(20);not null"`
	RefNo            string          `gorm:"type:varchar(64);not null;index"`
	TransactionDate  time.Time       `gorm:"not null"`
	ShippingCharges  decimal.Decimal `gorm:"type:decimal(22,4);not null;default:0"`
	TotalBeforeTax   decimal.Decimal `gorm:"type:decimal(22,4);not null;default:0"`
	FinalTotal       decimal.Decimal `gorm:"type:decimal(22,4);not null;default:0"`
	AdditionalNotes  string          `gorm:"type:text"`
	// Associations
	SellLines     []SellLineModel     `gorm:"foreignKey:TransactionID;references:ID"`
	PurchaseLines []PurchaseLineModel `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *transfer.Transaction {
	t := &transfer.Transaction{
		Kind:             transfer.Kind(m.Kind),
		LocationID:       m.LocationID,
		TransferParentID: m.TransferParentID,
		Status:           m.Status,
		RefNo:            m.RefNo,
		TransactionDate:  m.TransactionDate,
		ShippingCharges:  m.ShippingCharges,
		TotalBeforeTax:   m.TotalBeforeTax,
		FinalTotal:       m.FinalTotal,
		AdditionalNotes:  m.AdditionalNotes,
		SellLines:        make([]transfer.SellLine, len(m.SellLines)),
		PurchaseLines:    make([]transfer.PurchaseLine, len(m.PurchaseLines)),
	}
	m.ApplyTo(&t.TenantAggregateRoot)
	for i := range m.SellLines {
		t.SellLines[i] = *m.SellLines[i].ToDomain()
	}
	for i := range m.PurchaseLines {
		t.PurchaseLines[i] = *m.PurchaseLines[i].ToDomain()
	}
	return t
}

// FromDomain populates the header columns from a domain Transaction.
// Lines are converted separately so header updates never touch them.
func (m *TransactionModel) FromDomain(t *transfer.Transaction) {
	m.SetAggregate(t.TenantAggregateRoot)
	m.Kind = string(t.Kind)
	m.LocationID = t.LocationID
	m.TransferParentID = t.TransferParentID
	m.Status = t.Status
	m.RefNo = t.RefNo
	m.TransactionDate = t.TransactionDate
	m.ShippingCharges = t.ShippingCharges
	m.TotalBeforeTax = t.TotalBeforeTax
	m.FinalTotal = t.FinalTotal
	m.AdditionalNotes = t.AdditionalNotes
}

// TransactionModelFromDomain creates a header model from a domain Transaction
func TransactionModelFromDomain(t *transfer.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

// SellLineModel is the persistence model for outbound lines
type SellLineModel struct {
	BaseModel
	TenantID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null"`
	VariationID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity           decimal.Decimal `gorm:"type:decimal(22,4);not null"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(22,4);not null;default:0"`
	LotNoLineID        *uuid.UUID      `gorm:"type:uuid"`
	SubUnitID          *uuid.UUID      `gorm:"type:uuid"`
	BaseUnitMultiplier decimal.Decimal `gorm:"type:decimal(22,4);not null;default:1"`
	EnableStock        bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SellLineModel) TableName() string {
	return "transaction_sell_lines"
}

// ToDomain converts the persistence model to a domain SellLine
func (m *SellLineModel) ToDomain() *transfer.SellLine {
	return &transfer.SellLine{
		TenantEntity:       shared.TenantEntity{BaseEntity: m.BaseModel.Entity(), TenantID: m.TenantID},
		TransactionID:      m.TransactionID,
		ProductID:          m.ProductID,
		VariationID:        m.VariationID,
		Quantity:           m.Quantity,
		UnitPrice:          m.UnitPrice,
		LotNoLineID:        m.LotNoLineID,
		SubUnitID:          m.SubUnitID,
		BaseUnitMultiplier: m.BaseUnitMultiplier,
		EnableStock:        m.EnableStock,
	}
}

// FromDomain populates the persistence model from a domain SellLine
func (m *SellLineModel) FromDomain(l *transfer.SellLine) {
	m.SetEntity(l.BaseEntity)
	m.TenantID = l.TenantID
	m.TransactionID = l.TransactionID
	m.ProductID = l.ProductID
	m.VariationID = l.VariationID
	m.Quantity = l.Quantity
	m.UnitPrice = l.UnitPrice
	m.LotNoLineID = l.LotNoLineID
	m.SubUnitID = l.SubUnitID
	m.BaseUnitMultiplier = l.Multiplier()
	m.EnableStock = l.EnableStock
}

// SellLineModelFromDomain creates a persistence model from a domain SellLine
func SellLineModelFromDomain(l *transfer.SellLine) *SellLineModel {
	m := &SellLineModel{}
	m.FromDomain(l)
	return m
}

// PurchaseLineModel is the persistence model for supply lines
type PurchaseLineModel struct {
	BaseModel
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	VariationID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(22,4);not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(22,4);not null;default:0"`
	QuantitySold  decimal.Decimal `gorm:"type:decimal(22,4);not null;default:0"`
	LotNumber     string          `gorm:"type:varchar(64)"`
	MfgDate       *time.Time      `gorm:"type:date"`
	ExpDate       *time.Time      `gorm:"type:date"`
	SubUnitID     *uuid.UUID      `gorm:"type:uuid"`
	Version       int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (PurchaseLineModel) TableName() string {
	return "purchase_lines"
}

// ToDomain converts the persistence model to a domain PurchaseLine
func (m *PurchaseLineModel) ToDomain() *transfer.PurchaseLine {
	return &transfer.PurchaseLine{
		TenantEntity:  shared.TenantEntity{BaseEntity: m.BaseModel.Entity(), TenantID: m.TenantID},
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		VariationID:   m.VariationID,
		Quantity:      m.Quantity,
		PurchasePrice: m.PurchasePrice,
		QuantitySold:  m.QuantitySold,
		LotNumber:     m.LotNumber,
		MfgDate:       m.MfgDate,
		ExpDate:       m.ExpDate,
		SubUnitID:     m.SubUnitID,
		Version:       m.Version,
	}
}

// FromDomain populates the persistence model from a domain PurchaseLine
func (m *PurchaseLineModel) FromDomain(l *transfer.PurchaseLine) {
	m.SetEntity(l.BaseEntity)
	m.TenantID = l.TenantID
	m.TransactionID = l.TransactionID
	m.ProductID = l.ProductID
	m.VariationID = l.VariationID
	m.Quantity = l.Quantity
	m.PurchasePrice = l.PurchasePrice
	m.QuantitySold = l.QuantitySold
	m.LotNumber = l.LotNumber
	m.MfgDate = l.MfgDate
	m.ExpDate = l.ExpDate
	m.SubUnitID = l.SubUnitID
	m.Version = l.Version
}

// PurchaseLineModelFromDomain creates a persistence model from a domain PurchaseLine
func PurchaseLineModelFromDomain(l *transfer.PurchaseLine) *PurchaseLineModel {
	m := &PurchaseLineModel{}
	m.FromDomain(l)
	return m
}

// SupplyLineRow is a purchase line joined with the date of its transaction
type SupplyLineRow struct {
	PurchaseLineModel
	ReceivedAt time.Time
}

// ToDomain converts the row to a domain SupplyLine
func (r *SupplyLineRow) ToDomain() transfer.SupplyLine {
	return transfer.SupplyLine{PurchaseLine: *r.PurchaseLineModel.ToDomain(), ReceivedAt: r.ReceivedAt}
}

// SellPurchaseLinkModel records how much of a sell line came from a purchase line
type SellPurchaseLinkModel struct {
	BaseModel
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellLineID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sell_purchase_link,priority:1"`
	PurchaseLineID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sell_purchase_link,priority:2;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(22,4);not null"`
}

// TableName returns the table name for GORM
func (SellPurchaseLinkModel) TableName() string {
	return "transaction_sell_lines_purchase_lines"
}

// ToDomain converts the persistence model to a domain SellPurchaseLink
func (m *SellPurchaseLinkModel) ToDomain() *transfer.SellPurchaseLink {
	return &transfer.SellPurchaseLink{
		TenantEntity:   shared.TenantEntity{BaseEntity: m.BaseModel.Entity(), TenantID: m.TenantID},
		SellLineID:     m.SellLineID,
		PurchaseLineID: m.PurchaseLineID,
		Quantity:       m.Quantity,
	}
}

// SellPurchaseLinkModelFromDomain creates a persistence model from a domain link
func SellPurchaseLinkModelFromDomain(l *transfer.SellPurchaseLink) *SellPurchaseLinkModel {
	m := &SellPurchaseLinkModel{
		TenantID:       l.TenantID,
		SellLineID:     l.SellLineID,
		PurchaseLineID: l.PurchaseLineID,
		Quantity:       l.Quantity,
	}
	m.SetEntity(l.BaseEntity)
	return m
}

// ActivityModel is an activity log row
type ActivityModel struct {
	BaseModel
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SubjectID   uuid.UUID `gorm:"type:uuid;not null;index"`
	SubjectType string    `gorm:"type:varchar(64);not null"`
	Action      string    `gorm:"type:varchar(32);not null"`
	ActorID     uuid.UUID `gorm:"type:uuid"`
	Before      *string   `gorm:"type:jsonb"`
	Note        string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ActivityModel) TableName() string {
	return "activity_log"
}

// ToDomain converts the persistence model to a domain Activity
func (m *ActivityModel) ToDomain() *transfer.Activity {
	a := &transfer.Activity{
		TenantEntity: shared.TenantEntity{BaseEntity: m.BaseModel.Entity(), TenantID: m.TenantID},
		SubjectID:    m.SubjectID,
		SubjectType:  m.SubjectType,
		Action:       transfer.ActivityAction(m.Action),
		ActorID:      m.ActorID,
		Note:         m.Note,
	}
	if m.Before != nil {
		a.Before = []byte(*m.Before)
	}
	return a
}

// ActivityModelFromDomain creates a persistence model from a domain Activity
func ActivityModelFromDomain(a *transfer.Activity) *ActivityModel {
	m := &ActivityModel{
		TenantID:    a.TenantID,
		SubjectID:   a.SubjectID,
		SubjectType: a.SubjectType,
		Action:      string(a.Action),
		ActorID:     a.ActorID,
		Note:        a.Note,
	}
	if len(a.Before) > 0 {
		before := string(a.Before)
		m.Before = &before
	}
	m.SetEntity(a.BaseEntity)
	return m
}

// ShippingDocumentModel is shipping document metadata
type ShippingDocumentModel struct {
	BaseModel
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName      string    `gorm:"type:varchar(255);not null"`
	ContentType   string    `gorm:"type:varchar(100);not null"`
	FileSize      int64     `gorm:"not null"`
	StorageKey    string    `gorm:"type:varchar(512);not null;uniqueIndex"`
	UploadedBy    uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ShippingDocumentModel) TableName() string {
	return "shipping_documents"
}

// ToDomain converts the persistence model to a domain ShippingDocument
func (m *ShippingDocumentModel) ToDomain() *transfer.ShippingDocument {
	return &transfer.ShippingDocument{
		TenantEntity:  shared.TenantEntity{BaseEntity: m.BaseModel.Entity(), TenantID: m.TenantID},
		TransactionID: m.TransactionID,
		FileName:      m.FileName,
		ContentType:   m.ContentType,
		FileSize:      m.FileSize,
		StorageKey:    m.StorageKey,
		UploadedBy:    m.UploadedBy,
	}
}

// ShippingDocumentModelFromDomain creates a persistence model from a domain ShippingDocument
func ShippingDocumentModelFromDomain(d *transfer.ShippingDocument) *ShippingDocumentModel {
	m := &ShippingDocumentModel{
		TenantID:      d.TenantID,
		TransactionID: d.TransactionID,
		FileName:      d.FileName,
		ContentType:   d.ContentType,
		FileSize:      d.FileSize,
		StorageKey:    d.StorageKey,
		UploadedBy:    d.UploadedBy,
	}
	m.SetEntity(d.BaseEntity)
	return m
}
