package transfer

import (
	"encoding/json"
	"fmt"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
)

// ActivityAction is what happened to the subject
type ActivityAction string

const (
	ActivityAdded         ActivityAction = "added"
	ActivityEdited        ActivityAction = "edited"
	ActivityStatusChanged ActivityAction = "status_changed"
	ActivityDeleted       ActivityAction = "deleted"
)

// Activity is an audit log entry for a transfer
type Activity struct {
	shared.TenantEntity
	SubjectID   uuid.UUID
	SubjectType string
	Action      ActivityAction
	ActorID     uuid.UUID
	Before      json.RawMessage
	Note        string
}

// NewActivity creates an activity entry; before may be nil
func NewActivity(tenantID, subjectID, actorID uuid.UUID, action ActivityAction, before *Snapshot, note string) (*Activity, error) {
	a := &Activity{
		TenantEntity: shared.NewTenantEntity(tenantID),
		SubjectID:    subjectID,
		SubjectType:  AggregateTypeTransfer,
		Action:       action,
		ActorID:      actorID,
		Note:         note,
	}
	if before != nil {
		raw, err := json.Marshal(before)
		if err != nil {
			return nil, fmt.Errorf("encode activity snapshot: %w", err)
		}
		a.Before = raw
	}
	return a, nil
}
