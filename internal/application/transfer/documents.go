package transfer

import (
	"context"
	"fmt"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestShippingDocumentUpload records a shipping document for a transfer
// and returns a presigned URL the client uploads the file to
func (s *Service) RequestShippingDocumentUpload(ctx context.Context, biz shared.BusinessContext, transferID uuid.UUID, req ShippingDocumentRequest) (*ShippingDocumentResponse, error) {
	if err := s.authorize(biz, PermissionUpdate); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "document storage is not configured")
	}

	var doc *transfer.ShippingDocument
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		pair, err := repos.TransferRepo().FindPair(ctx, biz.TenantID, transferID)
		if err != nil {
			return err
		}
		doc, err = transfer.NewShippingDocument(biz.TenantID, pair.ID(), actorOf(biz), req.FileName, req.ContentType, req.FileSize)
		if err != nil {
			return err
		}
		return repos.ShippingDocumentRepo().Create(ctx, doc)
	})
	if err != nil {
		return nil, s.fail("request_shipping_document", transferID, err)
	}

	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, doc.StorageKey, doc.ContentType, s.documentURLExpiry)
	if err != nil {
		s.logger.Error("failed to presign shipping document upload",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: upload url unavailable", shared.ErrInternal)
	}

	resp := toShippingDocumentResponse(doc)
	resp.UploadURL = url
	resp.URLExpiresAt = expiresAt
	return &resp, nil
}

// ListShippingDocuments returns the documents of a transfer with download URLs
func (s *Service) ListShippingDocuments(ctx context.Context, biz shared.BusinessContext, transferID uuid.UUID) ([]ShippingDocumentResponse, error) {
	if err := s.authorize(biz, PermissionRead); err != nil {
		return nil, err
	}
	if _, err := s.reads.TransferRepo().FindByIDForTenant(ctx, biz.TenantID, transferID); err != nil {
		return nil, s.fail("list_shipping_documents", transferID, err)
	}

	docs, err := s.reads.ShippingDocumentRepo().FindByTransaction(ctx, biz.TenantID, transferID)
	if err != nil {
		return nil, s.fail("list_shipping_documents", transferID, err)
	}

	out := make([]ShippingDocumentResponse, 0, len(docs))
	for i := range docs {
		resp := toShippingDocumentResponse(&docs[i])
		if s.storage != nil {
			url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, docs[i].StorageKey, s.documentURLExpiry)
			if err != nil {
				s.logger.Warn("failed to presign shipping document download",
					zap.String("document_id", docs[i].ID.String()),
					zap.Error(err),
				)
			} else {
				resp.DownloadURL = url
				resp.URLExpiresAt = expiresAt
			}
		}
		out = append(out, resp)
	}
	return out, nil
}

func toShippingDocumentResponse(d *transfer.ShippingDocument) ShippingDocumentResponse {
	return ShippingDocumentResponse{
		ID:            d.ID,
		TransactionID: d.TransactionID,
		FileName:      d.FileName,
		ContentType:   d.ContentType,
		FileSize:      d.FileSize,
		CreatedAt:     d.CreatedAt,
	}
}
