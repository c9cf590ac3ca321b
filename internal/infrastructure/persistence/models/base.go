package models

import (
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the id and timestamp columns every table carries
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Entity returns the columns as a domain BaseEntity
func (m *BaseModel) Entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// SetEntity copies a domain BaseEntity into the columns
func (m *BaseModel) SetEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// TenantAggregateModel adds the optimistic lock version, owning tenant and
// creator of an aggregate root row. The version column is compared on every
// header update.
type TenantAggregateModel struct {
	BaseModel
	Version   int        `gorm:"not null;default:1"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// SetAggregate copies a domain TenantAggregateRoot into the columns
func (m *TenantAggregateModel) SetAggregate(a shared.TenantAggregateRoot) {
	m.SetEntity(a.BaseEntity)
	m.Version = a.Version
	m.TenantID = a.TenantID
	m.CreatedBy = a.CreatedBy
}

// ApplyTo fills a domain TenantAggregateRoot from the columns. Pending domain
// events on a are left untouched.
func (m *TenantAggregateModel) ApplyTo(a *shared.TenantAggregateRoot) {
	a.BaseEntity = m.Entity()
	a.Version = m.Version
	a.TenantID = m.TenantID
	a.CreatedBy = m.CreatedBy
}
