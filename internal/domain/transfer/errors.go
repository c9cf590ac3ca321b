package transfer

import (
	"fmt"

	"github.com/erp/stocktransfer/internal/domain/shared"
)

// Transfer specific error codes
const (
	CodeTransferLocked    = "TRANSFER_LOCKED"
	CodeEditWindowExpired = "EDIT_WINDOW_EXPIRED"
)

var (
	ErrTransferLocked    = shared.NewDomainError(CodeTransferLocked, "Transfer can no longer be modified")
	ErrEditWindowExpired = shared.NewDomainError(CodeEditWindowExpired, "Transfer is outside the edit window")
)

// NewTransferLockedError returns a TRANSFER_LOCKED error with a reason
func NewTransferLockedError(reason string) *shared.DomainError {
	return shared.NewDomainError(CodeTransferLocked, "Transfer can no longer be modified: "+reason)
}

// NewValidationError returns a VALIDATION_ERROR with a formatted message
func NewValidationError(format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf(format, args...))
}
