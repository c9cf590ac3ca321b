package shared

import (
	"github.com/google/uuid"
)

// BusinessContext carries the acting tenant, user and business settings
// through every core call
type BusinessContext struct {
	TenantID         uuid.UUID
	UserID           uuid.UUID
	AccountingMethod string
	AllowOverselling bool
	// EditDays limits how long after its transaction date a transfer may be
	// changed; zero means no limit
	EditDays    int
	Permissions []string
}

// Can reports whether the acting user holds the permission
func (b BusinessContext) Can(permission string) bool {
	for _, p := range b.Permissions {
		if p == permission || p == "*" {
			return true
		}
	}
	return false
}

// Actor returns a pointer to the user id, or nil for system calls
func (b BusinessContext) Actor() *uuid.UUID {
	if b.UserID == uuid.Nil {
		return nil
	}
	id := b.UserID
	return &id
}
