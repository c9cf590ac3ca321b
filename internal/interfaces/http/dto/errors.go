package dto

import (
	"net/http"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/transfer"
)

// Codes produced by the HTTP layer itself. Domain errors keep the code of
// the DomainError that caused them.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeTooLarge        = "REQUEST_TOO_LARGE"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "INVALID_TOKEN"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
	ErrCodeDuplicateReq    = "DUPLICATE_REQUEST"
	ErrCodeServiceDegraded = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited     = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to their HTTP status
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:   http.StatusBadRequest,
	shared.CodeInvalidInput: http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,

	shared.CodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeTokenRevoked:     http.StatusUnauthorized,
	shared.CodeForbidden:    http.StatusForbidden,

	shared.CodeNotFound: http.StatusNotFound,

	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeOptimisticLock:      http.StatusConflict,
	transfer.CodeTransferLocked:    http.StatusConflict,
	ErrCodeDuplicateReq:            http.StatusConflict,

	ErrCodeTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited: http.StatusTooManyRequests,

	shared.CodeInvalidState:        http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock:   http.StatusUnprocessableEntity,
	transfer.CodeEditWindowExpired: http.StatusUnprocessableEntity,

	shared.CodeInternal:    http.StatusInternalServerError,
	ErrCodeServiceDegraded: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
