package models

import (
	"github.com/erp/stocktransfer/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariationLocationQuantityModel is the on-hand quantity of a variation at a location
type VariationLocationQuantityModel struct {
	BaseModel
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_vld_key,priority:1"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_vld_key,priority:2"`
	LocationID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_vld_key,priority:3"`
	Quantity    decimal.Decimal `gorm:"type:decimal(22,4);not null;default:0"`
	AverageCost decimal.Decimal `gorm:"type:decimal(22,4);not null;default:0"`
	Version     int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (VariationLocationQuantityModel) TableName() string {
	return "variation_location_details"
}

// ToDomain converts the persistence model to a domain ledger row
func (m *VariationLocationQuantityModel) ToDomain() *ledger.VariationLocationQuantity {
	return &ledger.VariationLocationQuantity{
		BaseEntity:  m.BaseModel.Entity(),
		TenantID:    m.TenantID,
		ProductID:   m.ProductID,
		VariationID: m.VariationID,
		LocationID:  m.LocationID,
		Quantity:    m.Quantity,
		AverageCost: m.AverageCost,
		Version:     m.Version,
	}
}

// VariationLocationQuantityModelFromDomain creates a persistence model from a ledger row
func VariationLocationQuantityModelFromDomain(q *ledger.VariationLocationQuantity) *VariationLocationQuantityModel {
	m := &VariationLocationQuantityModel{
		TenantID:    q.TenantID,
		ProductID:   q.ProductID,
		VariationID: q.VariationID,
		LocationID:  q.LocationID,
		Quantity:    q.Quantity,
		AverageCost: q.AverageCost,
		Version:     q.Version,
	}
	m.SetEntity(q.BaseEntity)
	return m
}

// StockMovementModel is an append-only ledger movement
type StockMovementModel struct {
	BaseModel
	TenantID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null"`
	VariationID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movements_variation_location,priority:1"`
	LocationID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movements_variation_location,priority:2"`
	Delta               decimal.Decimal `gorm:"type:decimal(22,4);not null"`
	BalanceBefore       decimal.Decimal `gorm:"type:decimal(22,4);not null"`
	BalanceAfter        decimal.Decimal `gorm:"type:decimal(22,4);not null"`
	UnitCost            decimal.Decimal `gorm:"type:decimal(22,4);not null;default:0"`
	Reason              string          `gorm:"type:varchar(32);not null"`
	SourceTransactionID *uuid.UUID      `gorm:"type:uuid;index"`
	ActorID             *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() *ledger.StockMovement {
	return &ledger.StockMovement{
		BaseEntity:          m.BaseModel.Entity(),
		TenantID:            m.TenantID,
		ProductID:           m.ProductID,
		VariationID:         m.VariationID,
		LocationID:          m.LocationID,
		Delta:               m.Delta,
		BalanceBefore:       m.BalanceBefore,
		BalanceAfter:        m.BalanceAfter,
		UnitCost:            m.UnitCost,
		Reason:              ledger.MovementReason(m.Reason),
		SourceTransactionID: m.SourceTransactionID,
		ActorID:             m.ActorID,
	}
}

// StockMovementModelFromDomain creates a persistence model from a domain StockMovement
func StockMovementModelFromDomain(mv *ledger.StockMovement) *StockMovementModel {
	m := &StockMovementModel{
		TenantID:            mv.TenantID,
		ProductID:           mv.ProductID,
		VariationID:         mv.VariationID,
		LocationID:          mv.LocationID,
		Delta:               mv.Delta,
		BalanceBefore:       mv.BalanceBefore,
		BalanceAfter:        mv.BalanceAfter,
		UnitCost:            mv.UnitCost,
		Reason:              string(mv.Reason),
		SourceTransactionID: mv.SourceTransactionID,
		ActorID:             mv.ActorID,
	}
	m.SetEntity(mv.BaseEntity)
	return m
}
