package transfer

import (
	"fmt"
	"path"
	"strings"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
)

// Allowed shipping document content types
var allowedDocumentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

// MaxShippingDocumentSize is the largest document accepted, in bytes
const MaxShippingDocumentSize int64 = 10 << 20

// ShippingDocument is metadata for a file uploaded against a transfer
type ShippingDocument struct {
	shared.TenantEntity
	TransactionID uuid.UUID
	FileName      string
	ContentType   string
	FileSize      int64
	StorageKey    string
	UploadedBy    uuid.UUID
}

// NewShippingDocument validates the upload request and derives the storage key
func NewShippingDocument(tenantID, transactionID, uploadedBy uuid.UUID, fileName, contentType string, size int64) (*ShippingDocument, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, NewValidationError("file name is required")
	}
	ext, ok := allowedDocumentTypes[contentType]
	if !ok {
		return nil, NewValidationError("content type %q is not allowed", contentType)
	}
	if size <= 0 || size > MaxShippingDocumentSize {
		return nil, NewValidationError("file size must be between 1 and %d bytes", MaxShippingDocumentSize)
	}

	doc := &ShippingDocument{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		TransactionID: transactionID,
		FileName:      path.Base(fileName),
		ContentType:   contentType,
		FileSize:      size,
		UploadedBy:    uploadedBy,
	}
	doc.StorageKey = fmt.Sprintf("%s/transfers/%s/%s%s", tenantID, transactionID, doc.ID, ext)
	return doc, nil
}
