package shared

import "github.com/google/uuid"

// TenantAggregateRoot is the root of a consistency boundary owned by one
// business. Version starts at 1 and is bumped by the repository on every
// successful header write; a write against a stale version is rejected.
// Events raised while mutating the aggregate stay pending until the
// application layer publishes them after commit.
type TenantAggregateRoot struct {
	BaseEntity
	Version   int
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID

	pending []DomainEvent
}

// NewTenantAggregateRoot starts a version 1 aggregate. A nil createdBy
// leaves the creator unset.
func NewTenantAggregateRoot(tenantID, createdBy uuid.UUID) TenantAggregateRoot {
	root := TenantAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1, TenantID: tenantID}
	if createdBy != uuid.Nil {
		root.CreatedBy = &createdBy
	}
	return root
}

func (a *TenantAggregateRoot) AddDomainEvent(e DomainEvent) { a.pending = append(a.pending, e) }

func (a *TenantAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *TenantAggregateRoot) ClearDomainEvents() { a.pending = nil }
