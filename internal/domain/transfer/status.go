package transfer

import (
	"fmt"
	"strings"

	"github.com/erp/stocktransfer/internal/domain/shared"
)

// Status is the transfer-level status shared by both sides of a pair.
// Once completed it is stored as "final" on the sell side and
// "received" on the purchase side.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInTransit Status = "in_transit"
	StatusCompleted Status = "completed"
)

// Stored status values for the two sides of a completed transfer
const (
	SellStatusFinal        = "final"
	PurchaseStatusReceived = "received"
)

// AllStatuses returns every transfer status
func AllStatuses() []Status {
	return []Status{StatusPending, StatusInTransit, StatusCompleted}
}

// IsValid checks if the status is a known transfer status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsCompleted reports whether the status is terminal
func (s Status) IsCompleted() bool {
	return s == StatusCompleted
}

// CanTransitionTo checks if the status can move to target.
// Completed only "moves" to itself, which is a no-op.
func (s Status) CanTransitionTo(target Status) bool {
	if !target.IsValid() {
		return false
	}
	if s == StatusCompleted {
		return target == StatusCompleted
	}
	return true
}

// StoredValue returns the persisted status for a transaction of the given kind
func (s Status) StoredValue(kind Kind) string {
	if s != StatusCompleted {
		return string(s)
	}
	if kind.IsPurchaseSide() {
		return PurchaseStatusReceived
	}
	return SellStatusFinal
}

// StatusFromStored maps a persisted status value back to a transfer status
func StatusFromStored(stored string) Status {
	switch stored {
	case SellStatusFinal, PurchaseStatusReceived, string(StatusCompleted):
		return StatusCompleted
	case string(StatusInTransit):
		return StatusInTransit
	default:
		return StatusPending
	}
}

// ParseStatus parses user input into a Status. The stored side values
// "final" and "received" are accepted as aliases of completed.
func ParseStatus(value string) (Status, error) {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case string(StatusPending), string(StatusInTransit):
		return Status(v), nil
	case string(StatusCompleted), SellStatusFinal, PurchaseStatusReceived:
		return StatusCompleted, nil
	}
	return "", shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("unknown transfer status %q", value))
}

// TransitionKind classifies what a status change has to do
type TransitionKind int

const (
	// TransitionNoOp leaves the pair untouched
	TransitionNoOp TransitionKind = iota
	// TransitionRelabel only rewrites the stored status on both sides
	TransitionRelabel
	// TransitionComplete runs the completion sequence
	TransitionComplete
)

// PlanTransition decides how to move from one status to another
func PlanTransition(from, to Status) (TransitionKind, error) {
	if !to.IsValid() {
		return TransitionNoOp, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("unknown transfer status %q", to))
	}
	if !from.CanTransitionTo(to) {
		return TransitionNoOp, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot change status of a completed transfer to %s", to))
	}
	switch {
	case from == to:
		return TransitionNoOp, nil
	case to == StatusCompleted:
		return TransitionComplete, nil
	default:
		return TransitionRelabel, nil
	}
}
